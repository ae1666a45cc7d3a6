package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Vault configuration
	VaultDir string // physical filesystem root the graph overlays
	DataDir  string // graph database location; defaults to <vault>/.vaultgraph

	// Storage
	SyncWrites bool

	// Logging
	LogLevel string

	// Feature flags
	EnableCORS bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	vaultDir := getEnv("VAULT_DIR", "")

	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		VaultDir:      vaultDir,
		DataDir:       getEnv("DATA_DIR", defaultDataDir(vaultDir)),
		SyncWrites:    getEnvBool("SYNC_WRITES", true),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.VaultDir == "" {
		return fmt.Errorf("VAULT_DIR is required")
	}
	info, err := os.Stat(c.VaultDir)
	if err != nil {
		return fmt.Errorf("VAULT_DIR %q is not accessible: %w", c.VaultDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("VAULT_DIR %q is not a directory", c.VaultDir)
	}
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func defaultDataDir(vaultDir string) string {
	if vaultDir == "" {
		return ""
	}
	return filepath.Join(vaultDir, ".vaultgraph")
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}
