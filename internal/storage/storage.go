package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectStore persists a binary asset under a key and returns the durable
// storage key.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// PublicURL resolves a storage key to its public URL. Keys map to URLs by
// plain concatenation against the configured base.
func PublicURL(base, key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// BuildKey composes a storage key namespaced by semantic label and owning
// seller, with a timestamp and random disambiguator so concurrent jobs never
// collide.
func BuildKey(label, sellerRef string, now time.Time, contentType string) string {
	label = slugify(label)
	if label == "" {
		label = "asset"
	}
	seller := slugify(sellerRef)
	if seller == "" {
		seller = "unknown"
	}
	entropy := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("generated/%s/%s/%d-%s%s", label, seller, now.Unix(), entropy, extensionForMIME(contentType))
}

func slugify(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	var sb strings.Builder
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteRune('-')
		}
	}
	return sb.String()
}

func extensionForMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
