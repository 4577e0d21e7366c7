package infra

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	StorageBackend string
	StoragePath    string
	StorageBaseURL string

	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	CutoutBaseURL string
	CutoutAPIKey  string

	SceneBaseURL  string
	SceneAPIKey   string
	SceneFidelity float64

	StageTimeout      time.Duration
	TemplateVersion   string
	AllowFallbackCopy bool

	ImageSourceAllowlist []string

	GeoIPDBPath    string
	DefaultLocale  string
	AllowedOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		StorageBackend: getEnv("STORAGE_BACKEND", "filesystem"),
		StoragePath:    getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL: os.Getenv("STORAGE_BASE_URL"),

		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseBucket:     getEnv("SUPABASE_BUCKET", "generated-assets"),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		CutoutBaseURL: os.Getenv("CUTOUT_BASE_URL"),
		CutoutAPIKey:  os.Getenv("CUTOUT_API_KEY"),

		SceneBaseURL:  os.Getenv("SCENE_BASE_URL"),
		SceneAPIKey:   os.Getenv("SCENE_API_KEY"),
		SceneFidelity: getEnvFloat("SCENE_FIDELITY", 0.85),

		StageTimeout:      time.Second * time.Duration(getEnvInt("STAGE_TIMEOUT_SECONDS", 45)),
		TemplateVersion:   getEnv("TEMPLATE_VERSION", "v2"),
		AllowFallbackCopy: getEnvBool("LANDING_ALLOW_FALLBACK_COPY", false),

		GeoIPDBPath:   os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.StorageBaseURL == "" {
		cfg.StorageBaseURL = fmt.Sprintf("http://localhost:%s/static", cfg.Port)
	}
	if cfg.StorageBackend == "supabase" {
		if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
			return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required for the supabase storage backend")
		}
	}
	cfg.ImageSourceAllowlist = buildAllowlist(cfg.StorageBaseURL, os.Getenv("IMAGE_SOURCE_HOST_ALLOWLIST"))
	cfg.AllowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))

	return cfg, nil
}

// buildAllowlist stays empty (any source host allowed) unless an explicit
// allowlist is configured. Produced images live on provider-controlled hosts
// that are not known at deploy time, so a non-empty default would reject
// every upload. When the operator does pin hosts, the storage base host is
// merged in so the uploader can always fetch back what this service itself
// serves.
func buildAllowlist(storageBaseURL, explicit string) []string {
	extra := splitList(explicit)
	if len(extra) == 0 {
		return nil
	}
	seen := make(map[string]struct{})
	var hosts []string
	add := func(host string) {
		host = strings.ToLower(strings.TrimSpace(host))
		if host == "" {
			return
		}
		if _, ok := seen[host]; ok {
			return
		}
		seen[host] = struct{}{}
		hosts = append(hosts, host)
	}
	if parsed, err := url.Parse(storageBaseURL); err == nil {
		add(parsed.Hostname())
	}
	sort.Strings(extra)
	for _, host := range extra {
		add(host)
	}
	return hosts
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
