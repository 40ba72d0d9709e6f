package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Lightspeed LightspeedConfig
	Files      FilesConfig
	Pacing     PacingConfig
}

// LightspeedConfig holds Lightspeed Retail API configuration
type LightspeedConfig struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	APIBase      string
	TokenURL     string
	TokenFile    string
	ShopID       int
	HTTPTimeout  time.Duration
}

// FilesConfig holds local file locations
type FilesConfig struct {
	InvoiceDir  string
	CacheFile   string
	QueueFile   string
	HistoryDB   string
	VendorsFile string
}

// PacingConfig holds remote-call pacing and retry configuration
type PacingConfig struct {
	PageSize            int
	PageDelay           time.Duration
	LineDelay           time.Duration
	RateLimitBackoff    time.Duration
	MaxRateLimitRetries int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Lightspeed: LightspeedConfig{
			AccountID:    getEnv("LS_ACCOUNT_ID", ""),
			ClientID:     getEnv("LS_CLIENT_ID", ""),
			ClientSecret: getEnv("LS_CLIENT_SECRET", ""),
			APIBase:      getEnv("LS_API_BASE", "https://api.lightspeedapp.com/API/V3"),
			TokenURL:     getEnv("LS_TOKEN_URL", "https://cloud.lightspeedapp.com/oauth/access_token.php"),
			TokenFile:    getEnv("LS_TOKEN_FILE", "lightspeed_tokens.json"),
			ShopID:       getEnvAsInt("LS_SHOP_ID", 1),
			HTTPTimeout:  getEnvAsDuration("LS_HTTP_TIMEOUT", 30*time.Second),
		},
		Files: FilesConfig{
			InvoiceDir:  getEnv("INVOICE_DIR", "invoices"),
			CacheFile:   getEnv("CATALOG_CACHE_FILE", "upc_itemid_map.json"),
			QueueFile:   getEnv("UNMATCHED_QUEUE_FILE", "missing_items.tsv"),
			HistoryDB:   getEnv("HISTORY_DB", "scanner_history.db"),
			VendorsFile: getEnv("VENDORS_FILE", "vendors.yaml"),
		},
		Pacing: PacingConfig{
			PageSize:            getEnvAsInt("LS_PAGE_SIZE", 100),
			PageDelay:           getEnvAsDuration("LS_PAGE_DELAY", 200*time.Millisecond),
			LineDelay:           getEnvAsDuration("LS_LINE_DELAY", 500*time.Millisecond),
			RateLimitBackoff:    getEnvAsDuration("LS_RATE_LIMIT_BACKOFF", 2*time.Second),
			MaxRateLimitRetries: getEnvAsInt("LS_RATE_LIMIT_RETRIES", 3),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Lightspeed.AccountID == "" {
		return NewAppError("CONFIG_ERROR", "LS_ACCOUNT_ID is required", ErrInvalidInput)
	}
	if c.Lightspeed.ClientID == "" {
		return NewAppError("CONFIG_ERROR", "LS_CLIENT_ID is required", ErrInvalidInput)
	}
	if c.Lightspeed.ClientSecret == "" {
		return NewAppError("CONFIG_ERROR", "LS_CLIENT_SECRET is required", ErrInvalidInput)
	}
	return nil
}
