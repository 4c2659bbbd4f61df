package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.DB.Driver != "postgres" {
		t.Errorf("expected default driver postgres, got %s", cfg.DB.Driver)
	}
	if cfg.JWTExpirationDur != 15*time.Minute {
		t.Errorf("expected 15m token lifetime, got %s", cfg.JWTExpirationDur)
	}
	if cfg.Timezone != time.UTC {
		t.Errorf("expected UTC timezone, got %s", cfg.Timezone)
	}
	if cfg.AMQPURL != "" {
		t.Errorf("expected messaging disabled by default, got %q", cfg.AMQPURL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/test.db")
	t.Setenv("APP_TIMEZONE", "Europe/Rome")
	t.Setenv("JWT_EXPIRES_IN", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.DB.Driver != "sqlite" {
		t.Errorf("expected driver sqlite, got %s", cfg.DB.Driver)
	}
	if cfg.DB.SQLitePath != "/tmp/test.db" {
		t.Errorf("expected sqlite path override, got %s", cfg.DB.SQLitePath)
	}
	if cfg.Timezone.String() != "Europe/Rome" {
		t.Errorf("expected Europe/Rome, got %s", cfg.Timezone)
	}
	if cfg.JWTExpirationDur != time.Hour {
		t.Errorf("expected 1h, got %s", cfg.JWTExpirationDur)
	}
	if Get() != cfg {
		t.Error("Get should return the most recently loaded config")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad_driver", "DB_DRIVER", "mysql"},
		{"bad_duration", "JWT_EXPIRES_IN", "soon"},
		{"bad_timezone", "APP_TIMEZONE", "Mars/Olympus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestDatabaseConfig_Strings(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}

	if got := c.DSN(); got != "host=db port=5432 user=u password=p dbname=n sslmode=disable" {
		t.Errorf("unexpected DSN: %s", got)
	}
	if got := c.URL(); got != "postgres://u:p@db:5432/n?sslmode=disable" {
		t.Errorf("unexpected URL: %s", got)
	}
}
