package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type Config struct {
	Environment string `json:"environment"`
	ServerPort  string `json:"server_port"`
	LogLevel    string `json:"log_level"`

	// Outbound mail
	SMTPHost     string        `json:"smtp_host"`
	SMTPPort     int           `json:"smtp_port"`
	SMTPUsername string        `json:"smtp_username"`
	SMTPPassword string        `json:"-"`
	EmailFrom    string        `json:"email_from"`
	SMTPUseTLS   bool          `json:"smtp_use_tls"`
	SMTPUseSSL   bool          `json:"smtp_use_ssl"`
	SMTPTimeout  time.Duration `json:"smtp_timeout"`

	// Email generation API
	EmailAPIKey string `json:"-"`
	EmailAPIURL string `json:"email_api_url"`

	// Database
	DBDriver       string `json:"db_driver"` // sqlite or postgres
	DBPath         string `json:"db_path"`   // sqlite only
	DBHost         string `json:"db_host"`
	DBPort         string `json:"db_port"`
	DBUser         string `json:"db_user"`
	DBPassword     string `json:"-"`
	DBName         string `json:"db_name"`
	DBSSLMode      string `json:"db_ssl_mode"`
	DBMaxIdleConns int    `json:"db_max_idle_conns"`
	DBMaxOpenConns int    `json:"db_max_open_conns"`

	RateLimitGenerate int         `json:"rate_limit_generate"`
	Redis             RedisConfig `json:"redis"`
	SentryDSN         string      `json:"-"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", "8000"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		EmailFrom:    getEnv("EMAIL_FROM", ""),
		SMTPUseTLS:   getEnvAsBool("SMTP_USE_TLS", true),
		SMTPUseSSL:   getEnvAsBool("SMTP_USE_SSL", false),
		SMTPTimeout:  time.Duration(getEnvAsInt("SMTP_TIMEOUT", 30)) * time.Second,

		EmailAPIKey: getEnv("EMAIL_API_KEY", ""),
		EmailAPIURL: getEnv("EMAIL_API_URL",
			"https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"),

		DBDriver:       getEnv("DB_DRIVER", "sqlite"),
		DBPath:         getEnv("DB_PATH", "database.db"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "maildraft"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),

		RateLimitGenerate: getEnvAsInt("RATE_LIMIT_GENERATE", 10),
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		SentryDSN: getEnv("SENTRY_DSN", ""),
	}

	switch cfg.SMTPPort {
	case 25, 465, 587:
	default:
		return nil, fmt.Errorf("SMTP_PORT must be 25, 465, or 587, got %d", cfg.SMTPPort)
	}

	switch cfg.DBDriver {
	case "sqlite":
	case "postgres":
		if cfg.DBPassword == "" {
			return nil, fmt.Errorf("DB_PASSWORD is required when DB_DRIVER is postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	logConfig(cfg)
	return cfg, nil
}

// SMTPConfigured reports whether every field required for a send is present.
// Callers must check this before attempting a send.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" &&
		c.SMTPUsername != "" &&
		c.SMTPPassword != "" &&
		c.EmailFrom != ""
}

func (c *Config) EmailAPIConfigured() bool {
	return c.EmailAPIKey != "" && c.EmailAPIURL != ""
}

// ValidateSMTPSettings returns one message per missing mail setting.
func (c *Config) ValidateSMTPSettings() []string {
	var errors []string
	if c.SMTPHost == "" {
		errors = append(errors, "SMTP host is required")
	}
	if c.SMTPUsername == "" {
		errors = append(errors, "SMTP username is required")
	}
	if c.SMTPPassword == "" {
		errors = append(errors, "SMTP password is required")
	}
	if c.EmailFrom == "" {
		errors = append(errors, "Email from address is required")
	}
	return errors
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(strings.ToLower(valueStr))
	if err != nil {
		return fallback
	}
	return value
}

func logConfig(cfg *Config) {
	log.Println("🔧 Loaded configuration:")
	log.Printf("Environment: %s", cfg.Environment)
	log.Printf("Server Port: %s", cfg.ServerPort)
	log.Printf("Database: %s", cfg.DBDriver)
	log.Printf("SMTP configured: %t, Email API configured: %t",
		cfg.SMTPConfigured(), cfg.EmailAPIConfigured())
}
