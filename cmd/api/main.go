package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"promogen/internal/adapter/repo"
	"promogen/internal/http/handlers"
	httpapi "promogen/internal/http/httpapi"
	"promogen/internal/infra"
	"promogen/internal/infra/geoip"
	"promogen/internal/middleware"
	"promogen/internal/pipeline"
	"promogen/internal/providers/copywrite"
	"promogen/internal/providers/cutout"
	"promogen/internal/providers/genai"
	"promogen/internal/providers/scene"
	"promogen/internal/providers/vision"
	"promogen/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()
	sqlRunner := infra.NewSQLRunner(dbpool, logger)

	var store storage.ObjectStore
	staticDir := ""
	switch cfg.StorageBackend {
	case "supabase":
		store, err = storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init supabase storage")
		}
	default:
		fileStore, err := storage.NewFileStore(cfg.StoragePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init filesystem storage")
		}
		store = fileStore
		staticDir = fileStore.BasePath()
	}

	stageClient := &http.Client{Timeout: cfg.StageTimeout}
	gemini := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		Model:      cfg.GeminiModel,
		BaseURL:    cfg.GeminiBaseURL,
		HTTPClient: stageClient,
	})

	pipe := pipeline.New(
		repo.NewCatalog(sqlRunner),
		repo.NewJobStore(sqlRunner),
		store,
		pipeline.Adapters{
			Vision: vision.NewGemini(gemini),
			Copy:   copywrite.NewGemini(gemini),
			Cutout: cutout.NewClient(cutout.Options{BaseURL: cfg.CutoutBaseURL, APIKey: cfg.CutoutAPIKey, Timeout: cfg.StageTimeout}),
			Scene:  scene.NewClient(scene.Options{BaseURL: cfg.SceneBaseURL, APIKey: cfg.SceneAPIKey, Timeout: cfg.StageTimeout}),
		},
		stageClient,
		logger,
		pipeline.Options{
			StageTimeout:         cfg.StageTimeout,
			AllowFallbackCopy:    cfg.AllowFallbackCopy,
			TemplateVersion:      cfg.TemplateVersion,
			SceneFidelity:        cfg.SceneFidelity,
			ImageSourceAllowlist: cfg.ImageSourceAllowlist,
		},
	)

	var countryLookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	app := handlers.NewApp(logger, pipe, repo.NewJobStore(sqlRunner), cfg.StorageBaseURL)
	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		Logger:          logger,
		AllowedOrigins:  cfg.AllowedOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   countryLookup,
		RateLimitPerMin: cfg.RateLimitPerMin,
		StaticDir:       staticDir,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
