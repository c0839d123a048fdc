package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TAPRUSH_CONFIG", "PORT", "SSH_HOST", "SSH_PORT", "SSH_HOST_KEY", "DATABASE_URL", "SESSION_TTL_MINUTES", "METRICS_PORT"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.SSHPort != "2222" {
		t.Errorf("SSHPort = %q, want %q", cfg.SSHPort, "2222")
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, "")
	}
	if cfg.SessionTTL != 60 {
		t.Errorf("SessionTTL = %d, want %d", cfg.SessionTTL, 60)
	}
	if cfg.MetricsPort != "" {
		t.Errorf("MetricsPort = %q, want empty", cfg.MetricsPort)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("SSH_PORT", "2323")
	t.Setenv("DATABASE_URL", "postgres://localhost/taprush")
	t.Setenv("SESSION_TTL_MINUTES", "15")
	t.Setenv("METRICS_PORT", "9100")

	cfg := Load()

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "3000")
	}
	if cfg.SSHPort != "2323" {
		t.Errorf("SSHPort = %q, want %q", cfg.SSHPort, "2323")
	}
	if cfg.DatabaseURL != "postgres://localhost/taprush" {
		t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, "postgres://localhost/taprush")
	}
	if cfg.SessionTTL != 15 {
		t.Errorf("SessionTTL = %d, want %d", cfg.SessionTTL, 15)
	}
	if cfg.MetricsPort != "9100" {
		t.Errorf("MetricsPort = %q, want %q", cfg.MetricsPort, "9100")
	}
}

func TestLoad_InvalidSessionTTL(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_TTL_MINUTES", "abc")

	cfg := Load()

	if cfg.SessionTTL != 60 {
		t.Errorf("SessionTTL = %d, want %d (fallback)", cfg.SessionTTL, 60)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "taprush.yaml")
	content := "port: \"9090\"\nsshPort: \"2200\"\nsessionTtlMinutes: 5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TAPRUSH_CONFIG", path)
	t.Setenv("SSH_PORT", "2201")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want %q from file", cfg.Port, "9090")
	}
	if cfg.SSHPort != "2201" {
		t.Errorf("SSHPort = %q, want %q (env beats file)", cfg.SSHPort, "2201")
	}
	if cfg.SessionTTL != 5 {
		t.Errorf("SessionTTL = %d, want %d from file", cfg.SessionTTL, 5)
	}
	if cfg.SSHHostKey != ".ssh/taprush_ed25519" {
		t.Errorf("SSHHostKey = %q, want default kept", cfg.SSHHostKey)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg := Defaults()
	if err := cfg.LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFile() on missing file returned nil error")
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("port: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Defaults()
	if err := cfg.LoadFile(path); err == nil {
		t.Error("LoadFile() on invalid yaml returned nil error")
	}
}
