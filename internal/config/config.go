package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultRecommendEndpoints lists the recommendation routes in preference order.
var DefaultRecommendEndpoints = []string{"/article/recommend", "/recommend", "/rec/recommend"}

// Config holds all configuration for the application
type Config struct {
	// Backend API
	APIBaseURL     string        `json:"api_base_url"`
	HTTPTimeout    time.Duration `json:"http_timeout"`
	HTTPRetryCount int           `json:"http_retry_count"`
	HTTPRateLimit  float64       `json:"http_rate_limit"`
	HTTPRateBurst  int           `json:"http_rate_burst"`

	// Authentication token storage
	TokenFile string `json:"token_file"`

	// Recommendation query
	RecoHoursWindow int      `json:"reco_hours_window"`
	RecoTopK        int      `json:"reco_topk"`
	RecoThreshold   float64  `json:"reco_threshold"`
	RecoEndpoints   []string `json:"reco_endpoints"`

	// Summary cache
	RedisURL        string        `json:"redis_url"`
	RedisPrefix     string        `json:"redis_prefix"`
	SummaryCacheTTL time.Duration `json:"summary_cache_ttl"`

	// Companion server
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	LocalAPIKey     string        `json:"local_api_key"`
	SyncSchedule    string        `json:"sync_schedule"`

	// Bookmark export
	ExportPath  string `json:"export_path"`
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`
	R2Region    string `json:"r2_region"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() *Config {
	return &Config{
		APIBaseURL:     strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000/api"), "/"),
		HTTPTimeout:    getEnvAsDuration("HTTP_TIMEOUT", 10*time.Second),
		HTTPRetryCount: getEnvAsInt("HTTP_RETRY_COUNT", 2),
		HTTPRateLimit:  getEnvAsFloat("HTTP_RATE_LIMIT", 20),
		HTTPRateBurst:  getEnvAsInt("HTTP_RATE_BURST", 10),

		TokenFile: getEnv("TOKEN_FILE", defaultTokenFile()),

		RecoHoursWindow: getEnvAsInt("RECO_HOURS_WINDOW", 48),
		RecoTopK:        getEnvAsInt("RECO_TOPK", 8),
		RecoThreshold:   getEnvAsFloat("RECO_THRESHOLD", 0.1),
		RecoEndpoints:   getEnvAsList("RECO_ENDPOINTS", DefaultRecommendEndpoints),

		RedisURL:        getEnv("REDIS_URL", ""),
		RedisPrefix:     getEnv("REDIS_PREFIX", "veritas:summary:"),
		SummaryCacheTTL: getEnvAsDuration("SUMMARY_CACHE_TTL", 6*time.Hour),

		Port:            getEnv("PORT", "8090"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LocalAPIKey:     getEnv("LOCAL_API_KEY", ""),
		SyncSchedule:    getEnv("SYNC_SCHEDULE", "@every 5m"),

		ExportPath:  getEnv("EXPORT_PATH", "./data/exports"),
		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", ""),
		R2Region:    getEnv("R2_REGION", "auto"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL)
	}
	if c.TokenFile == "" {
		return fmt.Errorf("TOKEN_FILE must not be empty")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	// Bounds mirror what the recommendation service accepts.
	if c.RecoHoursWindow < 6 || c.RecoHoursWindow > 168 {
		return fmt.Errorf("RECO_HOURS_WINDOW must be within 6..168, got %d", c.RecoHoursWindow)
	}
	if c.RecoTopK < 1 || c.RecoTopK > 20 {
		return fmt.Errorf("RECO_TOPK must be within 1..20, got %d", c.RecoTopK)
	}
	if c.RecoThreshold < 0 || c.RecoThreshold > 1 {
		return fmt.Errorf("RECO_THRESHOLD must be within 0..1, got %v", c.RecoThreshold)
	}
	if len(c.RecoEndpoints) == 0 {
		return fmt.Errorf("RECO_ENDPOINTS must list at least one path")
	}
	return nil
}

// S3Enabled reports whether bookmark exports should go to the R2/S3 bucket.
func (c *Config) S3Enabled() bool {
	return c.R2Bucket != "" && c.R2AccessKey != "" && c.R2SecretKey != ""
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".veritas", "access_token")
	}
	return filepath.Join(home, ".veritas", "access_token")
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsFloat(name string, defaultVal float64) float64 {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsList(name string, defaultVal []string) []string {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return append([]string(nil), defaultVal...)
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
