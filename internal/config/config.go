package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	SSHHost     string `yaml:"sshHost"`
	SSHPort     string `yaml:"sshPort"`
	SSHHostKey  string `yaml:"sshHostKey"`
	DatabaseURL string `yaml:"databaseUrl"`
	SessionTTL  int    `yaml:"sessionTtlMinutes"` // minutes
	// MetricsPort serves /metrics from the SSH server; empty disables it.
	MetricsPort string `yaml:"metricsPort"`
}

func Defaults() Config {
	return Config{
		Port:       "8080",
		SSHHost:    "0.0.0.0",
		SSHPort:    "2222",
		SSHHostKey: ".ssh/taprush_ed25519",
		SessionTTL: 60,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// TAPRUSH_CONFIG if set, then environment variables.
func Load() Config {
	cfg := Defaults()
	if path := os.Getenv("TAPRUSH_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			log.Printf("[Config] %v (using defaults)\n", err)
		}
	}
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.SSHHost = getEnv("SSH_HOST", cfg.SSHHost)
	cfg.SSHPort = getEnv("SSH_PORT", cfg.SSHPort)
	cfg.SSHHostKey = getEnv("SSH_HOST_KEY", cfg.SSHHostKey)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.SessionTTL = getEnvInt("SESSION_TTL_MINUTES", cfg.SessionTTL)
	cfg.MetricsPort = getEnv("METRICS_PORT", cfg.MetricsPort)
	return cfg
}

// LoadFile overlays the values present in a YAML file onto cfg.
func (cfg *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
