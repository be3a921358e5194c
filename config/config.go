package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	APIBaseURL      string        // IdentityX API base URL
	Port            string        // Service port
	RequestTimeout  time.Duration // Outbound request timeout
	RefreshInterval time.Duration // Proactive token refresh interval
	RefreshLead     time.Duration // How long before token expiry to refresh
	SnapshotPath    string        // Path of the persisted identity snapshot
	ErrorTTL        time.Duration // How long store errors stay visible
	RetryOn401      bool          // Refresh-and-retry policy on 401 responses
	LoginRatePerSec float64       // Login attempts allowed per second per IP
	LoginRateBurst  int           // Login attempt burst size per IP
}

// Load reads configuration from environment variables (and an optional .env
// file) with sensible defaults
func Load() (*Config, error) {
	// Best-effort: a missing .env file is not an error
	_ = godotenv.Load()

	config := &Config{
		APIBaseURL:      getEnv("API_BASE_URL", "http://localhost:8080/api"),
		Port:            getEnv("PORT", "8090"),
		RequestTimeout:  10 * time.Second,
		RefreshInterval: 14 * time.Minute, // access token lives 15m server-side
		RefreshLead:     2 * time.Minute,
		SnapshotPath:    getEnv("SNAPSHOT_PATH", "session-snapshot.json"),
		ErrorTTL:        5 * time.Second,
		RetryOn401:      getEnv("GATEWAY_RETRY_ON_401", "false") == "true",
		LoginRatePerSec: 1,
		LoginRateBurst:  5,
	}

	durations := map[string]*time.Duration{
		"REQUEST_TIMEOUT":  &config.RequestTimeout,
		"REFRESH_INTERVAL": &config.RefreshInterval,
		"REFRESH_LEAD":     &config.RefreshLead,
		"ERROR_TTL":        &config.ErrorTTL,
	}
	for key, dst := range durations {
		if raw := os.Getenv(key); raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid %s format: %w", key, err)
			}
			*dst = d
		}
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL cannot be empty")
	}

	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive")
	}

	if c.RefreshLead <= 0 || c.RefreshLead >= c.RefreshInterval {
		return fmt.Errorf("REFRESH_LEAD must be positive and shorter than REFRESH_INTERVAL")
	}

	if c.SnapshotPath == "" {
		return fmt.Errorf("SNAPSHOT_PATH cannot be empty")
	}

	return nil
}

// getEnv retrieves an environment variable or returns a fallback value
func getEnv(key, fallback string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
