package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	clear := func(t *testing.T) {
		t.Helper()
		for _, key := range []string{
			"TIMETABLE_HTTP_PORT",
			"TIMETABLE_SQLITE_DSN",
			"TIMETABLE_SESSION_TTL",
			"TIMETABLE_LOG_LEVEL",
			"TIMETABLE_BOOTSTRAP_ADMIN_EMAIL",
			"TIMETABLE_BOOTSTRAP_ADMIN_PASSWORD",
		} {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}
	}

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clear(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "timetable.db" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default session TTL 24h, got %s", cfg.SessionTTL)
		}
		if cfg.LogLevel != "info" {
			t.Fatalf("expected default log level info, got %q", cfg.LogLevel)
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		clear(t)
		t.Setenv("TIMETABLE_HTTP_PORT", "9090")
		t.Setenv("TIMETABLE_SQLITE_DSN", "file:/tmp/timetable.db")
		t.Setenv("TIMETABLE_SESSION_TTL", "90m")
		t.Setenv("TIMETABLE_LOG_LEVEL", "DEBUG")
		t.Setenv("TIMETABLE_BOOTSTRAP_ADMIN_EMAIL", "admin@example.com")
		t.Setenv("TIMETABLE_BOOTSTRAP_ADMIN_PASSWORD", "bootstrap-secret")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/timetable.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 90*time.Minute {
			t.Fatalf("expected session TTL 90m, got %s", cfg.SessionTTL)
		}
		if cfg.LogLevel != "debug" {
			t.Fatalf("expected log level debug, got %q", cfg.LogLevel)
		}
		if cfg.BootstrapAdminEmail != "admin@example.com" {
			t.Fatalf("unexpected bootstrap admin email: %q", cfg.BootstrapAdminEmail)
		}
		if cfg.BootstrapAdminPassword != "bootstrap-secret" {
			t.Fatalf("unexpected bootstrap admin password: %q", cfg.BootstrapAdminPassword)
		}
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		cases := []struct {
			name  string
			key   string
			value string
		}{
			{name: "port not a number", key: "TIMETABLE_HTTP_PORT", value: "http"},
			{name: "port out of range", key: "TIMETABLE_HTTP_PORT", value: "70000"},
			{name: "ttl malformed", key: "TIMETABLE_SESSION_TTL", value: "soon"},
			{name: "ttl negative", key: "TIMETABLE_SESSION_TTL", value: "-1h"},
			{name: "unknown log level", key: "TIMETABLE_LOG_LEVEL", value: "verbose"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				clear(t)
				t.Setenv(tc.key, tc.value)

				_, err := Load()
				if err == nil {
					t.Fatalf("expected error for %s=%q", tc.key, tc.value)
				}
				if !strings.Contains(err.Error(), tc.key) {
					t.Fatalf("error %q does not name %s", err.Error(), tc.key)
				}
			})
		}
	})

	t.Run("requires bootstrap email and password together", func(t *testing.T) {
		clear(t)
		t.Setenv("TIMETABLE_BOOTSTRAP_ADMIN_EMAIL", "admin@example.com")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error when bootstrap password is missing")
		}
	})
}
