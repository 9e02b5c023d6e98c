package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.PageSize != 12 {
		t.Fatalf("expected default page size 12, got %d", cfg.PageSize)
	}
	if cfg.NotificationTTL != 3*time.Second {
		t.Fatalf("expected 3s notification ttl, got %s", cfg.NotificationTTL)
	}
	if cfg.SessionDriver != SessionBolt {
		t.Fatalf("expected bolt session driver, got %q", cfg.SessionDriver)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/")
	t.Setenv("SESSION_DRIVER", " Redis ")
	t.Setenv("PAGE_SIZE", "24")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.APIBaseURL != "https://api.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.APIBaseURL)
	}
	if cfg.SessionDriver != SessionRedis {
		t.Fatalf("expected redis driver, got %q", cfg.SessionDriver)
	}
	if cfg.PageSize != 24 {
		t.Fatalf("expected page size 24, got %d", cfg.PageSize)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 cors origins, got %v", cfg.CORSOrigins)
	}
}

func TestFromEnvInvalidDuration(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
