package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CLEANOPS_SCAN_TOKEN_SECRET", "scan-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.HTTPPort != 8080 {
		t.Errorf("HTTPPort = %d, want 8080", cfg.HTTPPort)
	}
	if cfg.SQLiteDSN != "file:cleanops.db?_foreign_keys=on" {
		t.Errorf("SQLiteDSN = %q", cfg.SQLiteDSN)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.SessionTTL)
	}
	if cfg.ScanTokenSecret != "scan-secret" {
		t.Errorf("secret not loaded: %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("CLEANOPS_HTTP_PORT", "9090")
	t.Setenv("CLEANOPS_SQLITE_DSN", "file::memory:?cache=shared")
	t.Setenv("CLEANOPS_SESSION_TTL", "2h")
	t.Setenv("CLEANOPS_SCAN_TOKEN_TTL", "48h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.HTTPPort != 9090 {
		t.Errorf("HTTPPort = %d, want 9090", cfg.HTTPPort)
	}
	if cfg.SQLiteDSN != "file::memory:?cache=shared" {
		t.Errorf("SQLiteDSN = %q", cfg.SQLiteDSN)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %v, want 2h", cfg.SessionTTL)
	}
	if cfg.ScanTokenTTL != 48*time.Hour {
		t.Errorf("ScanTokenTTL = %v, want 48h", cfg.ScanTokenTTL)
	}
}

func TestLoad_ReportsMissingSecret(t *testing.T) {
	t.Setenv("CLEANOPS_SCAN_TOKEN_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing secret")
	}
	if !strings.Contains(err.Error(), "CLEANOPS_SCAN_TOKEN_SECRET") {
		t.Errorf("error %q does not name CLEANOPS_SCAN_TOKEN_SECRET", err)
	}
}

func TestLoad_ReportsInvalidValues(t *testing.T) {
	setRequired(t)
	t.Setenv("CLEANOPS_HTTP_PORT", "-1")
	t.Setenv("CLEANOPS_SESSION_TTL", "soon")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid values")
	}
	for _, name := range []string{"CLEANOPS_HTTP_PORT", "CLEANOPS_SESSION_TTL"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %s", err, name)
		}
	}
}
