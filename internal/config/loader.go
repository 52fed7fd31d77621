package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration for the timetable service.
type Config struct {
	HTTPPort   int
	SQLiteDSN  string
	SessionTTL time.Duration
	LogLevel   string
	// BootstrapAdminEmail and BootstrapAdminPassword seed an administrator
	// account on first start when both are set.
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

// Load reads configuration from a .env file (when present) and the process
// environment. Environment variables win over .env entries.
func Load() (Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:   8080,
		SQLiteDSN:  "timetable.db",
		SessionTTL: 24 * time.Hour,
		LogLevel:   "info",
	}

	var invalid []string

	if portValue := strings.TrimSpace(os.Getenv("TIMETABLE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "TIMETABLE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("TIMETABLE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("TIMETABLE_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "TIMETABLE_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if level := strings.ToLower(strings.TrimSpace(os.Getenv("TIMETABLE_LOG_LEVEL"))); level != "" {
		switch level {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = level
		default:
			invalid = append(invalid, "TIMETABLE_LOG_LEVEL")
		}
	}

	cfg.BootstrapAdminEmail = strings.TrimSpace(os.Getenv("TIMETABLE_BOOTSTRAP_ADMIN_EMAIL"))
	cfg.BootstrapAdminPassword = os.Getenv("TIMETABLE_BOOTSTRAP_ADMIN_PASSWORD")
	if (cfg.BootstrapAdminEmail == "") != (cfg.BootstrapAdminPassword == "") {
		invalid = append(invalid, "TIMETABLE_BOOTSTRAP_ADMIN_EMAIL/TIMETABLE_BOOTSTRAP_ADMIN_PASSWORD")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}
