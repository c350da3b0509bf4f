package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoad_RequiresAPIKey(t *testing.T) {
	viper.Reset()
	t.Setenv("API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without API_KEY")
	}
}

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("API_KEY", "secret")
	t.Setenv("STORE", "")
	t.Setenv("PORT", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.APIKey != "secret" {
		t.Errorf("APIKey = %q", cfg.Auth.APIKey)
	}
	if cfg.Server.Port != "8080" || cfg.Store.Backend != StorePostgres || cfg.SMTP.Port != 587 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	viper.Reset()
	t.Setenv("API_KEY", "secret")
	t.Setenv("STORE", "Memory")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != StoreMemory || cfg.Server.Port != "9090" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("origins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_UnknownStore(t *testing.T) {
	viper.Reset()
	t.Setenv("API_KEY", "secret")
	t.Setenv("STORE", "mongo")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown store")
	}
}
