package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SOURCE_URL", "https://example.supabase.co")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}

	if cfg.Server.Port != 8084 {
		t.Errorf("Port = %d, want 8084", cfg.Server.Port)
	}
	if cfg.Source.PageSize != 1000 {
		t.Errorf("PageSize = %d, want 1000", cfg.Source.PageSize)
	}
	if cfg.Cache.DatasetTTL != 30*time.Minute {
		t.Errorf("DatasetTTL = %v, want 30m", cfg.Cache.DatasetTTL)
	}
	if cfg.Cache.FilterCacheSize != 50 {
		t.Errorf("FilterCacheSize = %d, want 50", cfg.Cache.FilterCacheSize)
	}
	if cfg.Cache.ResultCacheSize != 100 {
		t.Errorf("ResultCacheSize = %d, want 100", cfg.Cache.ResultCacheSize)
	}
	if cfg.Lookups.File != "lookups.yaml" {
		t.Errorf("Lookups.File = %q", cfg.Lookups.File)
	}
	if cfg.Logger.Level != "info" || cfg.Logger.Format != "json" {
		t.Errorf("logger defaults = %q/%q", cfg.Logger.Level, cfg.Logger.Format)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SOURCE_URL", "https://example.supabase.co")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CACHE_DATASET_TTL", "10m")
	t.Setenv("SOURCE_PAGE_SIZE", "500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Cache.DatasetTTL != 10*time.Minute {
		t.Errorf("DatasetTTL = %v, want 10m", cfg.Cache.DatasetTTL)
	}
	if cfg.Source.PageSize != 500 {
		t.Errorf("PageSize = %d, want 500", cfg.Source.PageSize)
	}
}

func TestLoad_RequiresSourceURL(t *testing.T) {
	t.Setenv("SOURCE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("Load() without a source URL should fail validation")
	}
}

func TestLoad_RejectsInvalidLogLevel(t *testing.T) {
	t.Setenv("SOURCE_URL", "https://example.supabase.co")
	t.Setenv("LOG_LEVEL", "verbose")

	if _, err := Load(); err == nil {
		t.Error("Load() with an unknown log level should fail validation")
	}
}

func TestAddress(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "localhost", Port: 8084}}
	if got := cfg.Address(); got != "localhost:8084" {
		t.Errorf("Address() = %q", got)
	}
}
