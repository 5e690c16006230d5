// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ReportSourceLive   = "live"
	ReportSourceSample = "sample"
)

// Keys the top-N stock chart can rank by.
const (
	TopKeyName              = "name"
	TopKeyID                = "id"
	TopKeyManufacturer      = "manufacturer"
	TopKeyColor             = "color"
	TopKeyManufacturerColor = "manufacturer_color"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Remote      RemoteConfig
	Report      ReportConfig
	Log         LogConfig
	I18n        I18nConfig
	CORS        CORSConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
	RateLimit    float64 // requests per second per client IP
	RateBurst    int
}

// RemoteConfig describes the product backend. Paths and multipart part names
// are part of the backend contract, so they are configurable rather than
// hard-coded in the client.
type RemoteConfig struct {
	BaseURL         string
	SearchPath      string
	SearchParam     string
	ImportPath      string
	ImagePath       string
	ProductPart     string
	CreateImagePart string
	UpdateImagePart string
	Timeout         time.Duration
	RateLimit       float64 // 0 disables outbound pacing
	RateBurst       int
}

type ReportConfig struct {
	Source string
	TopN   int
	TopKey string
}

type LogConfig struct {
	Level  string
	Format string
}

type I18nConfig struct {
	DefaultLocale    string
	CurrencySymbol   string
	PlaceholderImage string
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8090"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			RateLimit:    getEnvAsFloat("SERVER_RATE_LIMIT", 10),
			RateBurst:    getEnvAsInt("SERVER_RATE_BURST", 20),
		},
		Remote: RemoteConfig{
			BaseURL:         strings.TrimRight(getEnv("CATALOG_BASE_URL", "http://localhost:8080/api/produtos"), "/"),
			SearchPath:      getEnv("CATALOG_SEARCH_PATH", "/search"),
			SearchParam:     getEnv("CATALOG_SEARCH_PARAM", "nome"),
			ImportPath:      getEnv("CATALOG_IMPORT_PATH", "/importar"),
			ImagePath:       getEnv("CATALOG_IMAGE_PATH", "/imagens"),
			ProductPart:     getEnv("CATALOG_PRODUCT_PART", "produto"),
			CreateImagePart: getEnv("CATALOG_CREATE_IMAGE_PART", "imagens"),
			UpdateImagePart: getEnv("CATALOG_UPDATE_IMAGE_PART", "novasImagens"),
			Timeout:         time.Duration(getEnvAsInt("REMOTE_TIMEOUT_SECONDS", 10)) * time.Second,
			RateLimit:       getEnvAsFloat("REMOTE_RATE_LIMIT", 0),
			RateBurst:       getEnvAsInt("REMOTE_RATE_BURST", 5),
		},
		Report: ReportConfig{
			Source: strings.ToLower(getEnv("REPORT_SOURCE", ReportSourceLive)),
			TopN:   getEnvAsInt("REPORT_TOP_N", 5),
			TopKey: strings.ToLower(getEnv("REPORT_TOP_KEY", TopKeyName)),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		I18n: I18nConfig{
			DefaultLocale:    getEnv("DEFAULT_LOCALE", "pt_BR"),
			CurrencySymbol:   getEnv("CURRENCY_SYMBOL", "R$"),
			PlaceholderImage: getEnv("PLACEHOLDER_IMAGE", "images/placeholder.png"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://127.0.0.1:5500", "http://localhost:5500"}),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Remote.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("CATALOG_BASE_URL must be an absolute URL, got %q", c.Remote.BaseURL)
	}

	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT_SECONDS must be positive")
	}

	if c.Report.Source != ReportSourceLive && c.Report.Source != ReportSourceSample {
		return fmt.Errorf("REPORT_SOURCE must be %q or %q, got %q", ReportSourceLive, ReportSourceSample, c.Report.Source)
	}

	if c.Report.TopN <= 0 {
		return fmt.Errorf("REPORT_TOP_N must be positive")
	}

	switch c.Report.TopKey {
	case TopKeyName, TopKeyID, TopKeyManufacturer, TopKeyColor, TopKeyManufacturerColor:
	default:
		return fmt.Errorf("REPORT_TOP_KEY %q is not supported", c.Report.TopKey)
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
