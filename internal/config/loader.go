package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the cleanops
// service.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	SessionTTL      time.Duration
	ScanTokenSecret string
	ScanTokenTTL    time.Duration
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults; required values and unparsable
// entries are accumulated and reported together so operators see every
// problem in one pass.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:     8080,
		SQLiteDSN:    "file:cleanops.db?_foreign_keys=on",
		SessionTTL:   24 * time.Hour,
		ScanTokenTTL: 365 * 24 * time.Hour,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("CLEANOPS_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "CLEANOPS_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("CLEANOPS_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("CLEANOPS_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "CLEANOPS_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if secret := strings.TrimSpace(os.Getenv("CLEANOPS_SCAN_TOKEN_SECRET")); secret == "" {
		missing = append(missing, "CLEANOPS_SCAN_TOKEN_SECRET")
	} else {
		cfg.ScanTokenSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("CLEANOPS_SCAN_TOKEN_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "CLEANOPS_SCAN_TOKEN_TTL")
		} else {
			cfg.ScanTokenTTL = ttl
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables hold invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
