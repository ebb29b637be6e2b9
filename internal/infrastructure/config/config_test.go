package config

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_ACCESS_SECRET":  "a",
		"JWT_REFRESH_SECRET": "r",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.Mongo.Database != "marketplace" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.JWT.AccessTTL != 15*time.Minute || cfg.JWT.RefreshTTL != 240*time.Hour {
		t.Fatalf("unexpected ttls: %v %v", cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	}
	if !cfg.Cookie.HTTPOnly || !cfg.Cookie.Secure || cfg.Cookie.SameSiteMode() != http.SameSiteNoneMode {
		t.Fatalf("unexpected cookie defaults: %+v", cfg.Cookie)
	}
	if cfg.Backrefs.Workers != 4 || cfg.Backrefs.MaxAttempts != 5 {
		t.Fatalf("unexpected backref defaults: %+v", cfg.Backrefs)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development env by default")
	}
	if cfg.S3.Bucket != "" {
		t.Fatalf("attachments must be disabled by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_ACCESS_SECRET":  "a",
		"JWT_REFRESH_SECRET": "r",
		"COOKIE_SAME_SITE":   "Strict",
		"COOKIE_SECURE":      "false",
		"JWT_ACCESS_TTL":     "5m",
		"ENV":                "production",
		"S3_BUCKET":          "uploads",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cookie.SameSiteMode() != http.SameSiteStrictMode || cfg.Cookie.Secure {
		t.Fatalf("unexpected cookie config: %+v", cfg.Cookie)
	}
	if cfg.JWT.AccessTTL != 5*time.Minute {
		t.Fatalf("unexpected access ttl %v", cfg.JWT.AccessTTL)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("expected production env")
	}
	if cfg.S3.Bucket != "uploads" {
		t.Fatalf("unexpected bucket %q", cfg.S3.Bucket)
	}
}

func TestLoad_MissingSecrets(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err == nil {
		t.Fatalf("expected error without secrets")
	}
	if !strings.Contains(err.Error(), "JWT_ACCESS_SECRET") || !strings.Contains(err.Error(), "JWT_REFRESH_SECRET") {
		t.Fatalf("expected both secrets reported, got %v", err)
	}
}

func TestValidate_SameSecretAndBadSameSite(t *testing.T) {
	cfg := &Config{
		JWT:    JWTConfig{AccessSecret: "s", RefreshSecret: "s"},
		Cookie: CookieConfig{SameSite: "sideways"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "must differ") || !strings.Contains(err.Error(), "COOKIE_SAME_SITE") {
		t.Fatalf("unexpected error %v", err)
	}
}
