package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CONFIG_PATH", "PORT", "DB_DRIVER", "SELECTION_TTL", "CATALOG_DIR", "CATALOG_BUCKET_PREFIX", "CORS_ALLOWED_ORIGINS", "ADMIN_EMAILS", "TOUR_ASSETS_VIA_PROXY"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "8080" || cfg.Database.Driver != "postgres" || cfg.SelectionTTL != 7*24*time.Hour {
		t.Fatalf("defaults: %+v", cfg)
	}
}

func TestLoadConfigYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
port: "9000"
access_token_ttl: 30m
admin_emails: [ops@example.com]
database:
  driver: sqlite
  sqlite_path: /tmp/tour.db
storage:
  tour_bucket: tours
catalog:
  bucket_prefix: catalog/v2
allowed_origins:
  - https://tour.example.com
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	clearConfigEnv(t)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "9100")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("TOUR_ASSETS_VIA_PROXY", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "9100" {
		t.Fatalf("env should override yaml port: got=%q", cfg.Port)
	}
	if cfg.AccessTokenTTL != 30*time.Minute || cfg.Database.Driver != "sqlite" || cfg.Catalog.BucketPrefix != "catalog/v2" {
		t.Fatalf("yaml values: %+v", cfg)
	}
	if diff := cmp.Diff([]string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins); diff != "" {
		t.Fatalf("origins (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ops@example.com"}, cfg.AdminEmails); diff != "" {
		t.Fatalf("admins (-want +got):\n%s", diff)
	}
	if !cfg.TourAssetsViaProxy {
		t.Fatalf("TOUR_ASSETS_VIA_PROXY not applied")
	}
}

func TestLoadConfigRejects(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DB_DRIVER", "mysql")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("want error for unsupported driver")
	}

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CATALOG_BUCKET_PREFIX", "catalog")
	t.Setenv("TOUR_GCS_BUCKET_NAME", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("want error for bucket catalog without bucket")
	}

	t.Setenv("CATALOG_BUCKET_PREFIX", "")
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("want error for missing config file")
	}
}
