package app

import (
	"context"
	"io"
	"testing"

	"github.com/titorm/shop-wise-sub000/internal/config"
	"github.com/titorm/shop-wise-sub000/internal/logger"
)

func TestNew_MemoryBackend(t *testing.T) {
	cfg, err := config.FromEnv(func(key string) string {
		switch key {
		case "STORE_BACKEND":
			return "memory"
		case "GEMINI_API_KEY":
			return "test-key"
		}
		return ""
	})
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	a, err := New(context.Background(), cfg, logger.NewWithWriter(io.Discard))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if a.Purchases == nil || a.Taxonomy == nil {
		t.Fatal("core services not wired")
	}
	if a.Extractor == nil || a.Importer == nil || a.Suggester == nil {
		t.Error("model-backed services not wired with an API key")
	}
	if a.Storage != nil {
		t.Error("storage must stay nil without a bucket")
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
