package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	LOG_LEVEL=info
//	OUTPUT_DIR=./out
//	SESSION_TTL=30m
//	MAX_UPLOAD_MB=10
//	CHROME_PATH=/usr/bin/chromium
//	CONVERSION_LOG_ENABLED=false
//	POSTGRES_HOST=localhost
type Config struct {
	Server        ServerConfig
	Log           LogConfig
	Output        OutputConfig
	Session       SessionConfig
	Upload        UploadConfig
	RateLimit     RateLimitConfig
	PDF           PDFConfig
	ConversionLog ConversionLogConfig
	Postgres      PostgresConfig
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string
}

// LogConfig mirrors the LOG_* variables read by internal/logger.
type LogConfig struct {
	Level  string
	Pretty bool
}

// OutputConfig is where the CLI writes generated artifacts by default.
type OutputConfig struct {
	Dir string
}

// SessionConfig controls how long an uploaded conversion stays downloadable.
type SessionConfig struct {
	TTL     time.Duration
	Cleanup time.Duration
}

// UploadConfig limits the accepted upload size.
type UploadConfig struct {
	MaxBytes int64
}

// RateLimitConfig is the per-client request budget per minute.
type RateLimitConfig struct {
	PerMinute int
}

// PDFConfig configures the headless Chrome renderer.
//
// Fields:
//   - ChromePath: explicit browser executable; empty means search PATH.
//   - Timeout: upper bound for rendering a single document.
type PDFConfig struct {
	ChromePath string
	Timeout    time.Duration
}

// ConversionLogConfig toggles the Postgres audit log of conversions.
type ConversionLogConfig struct {
	Enabled bool
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Only used when ConversionLog.Enabled is true.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing, validateConfig() will terminate the app
//     with a descriptive log message.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_PRETTY", false)
	viper.SetDefault("OUTPUT_DIR", ".")
	viper.SetDefault("SESSION_TTL", "30m")
	viper.SetDefault("SESSION_CLEANUP", "10m")
	viper.SetDefault("MAX_UPLOAD_MB", 10)
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	viper.SetDefault("CHROME_PATH", "")
	viper.SetDefault("PDF_TIMEOUT", "30s")
	viper.SetDefault("CONVERSION_LOG_ENABLED", false)

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "k4bridge")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Pretty: viper.GetBool("LOG_PRETTY"),
		},
		Output: OutputConfig{
			Dir: viper.GetString("OUTPUT_DIR"),
		},
		Session: SessionConfig{
			TTL:     viper.GetDuration("SESSION_TTL"),
			Cleanup: viper.GetDuration("SESSION_CLEANUP"),
		},
		Upload: UploadConfig{
			MaxBytes: viper.GetInt64("MAX_UPLOAD_MB") * 1024 * 1024,
		},
		RateLimit: RateLimitConfig{
			PerMinute: viper.GetInt("RATE_LIMIT_PER_MINUTE"),
		},
		PDF: PDFConfig{
			ChromePath: viper.GetString("CHROME_PATH"),
			Timeout:    viper.GetDuration("PDF_TIMEOUT"),
		},
		ConversionLog: ConversionLogConfig{
			Enabled: viper.GetBool("CONVERSION_LOG_ENABLED"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
	}

	AppConfig.Postgres.URL = AppConfig.Postgres.DSN()

	validateConfig()
}

// DSN builds the database/sql connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
//
// Postgres settings are only required when the conversion log is enabled.
func validateConfig() {
	if missing := missingKeys(AppConfig); len(missing) > 0 {
		log.Fatalf("missing or invalid configuration: %v\n", missing)
	}
}

func missingKeys(c Config) []string {
	var missing []string

	if c.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if c.Session.TTL <= 0 {
		missing = append(missing, "SESSION_TTL")
	}
	if c.Upload.MaxBytes <= 0 {
		missing = append(missing, "MAX_UPLOAD_MB")
	}
	if c.PDF.Timeout <= 0 {
		missing = append(missing, "PDF_TIMEOUT")
	}

	if !c.ConversionLog.Enabled {
		return missing
	}
	if c.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if c.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if c.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if c.Postgres.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if c.Postgres.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	return missing
}
