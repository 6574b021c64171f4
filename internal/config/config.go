package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string

	// Server
	Port            string
	ShutdownTimeout time.Duration

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Events. An empty AMQPURL disables publishing.
	AMQPURL      string
	AMQPExchange string

	// CheckEmailHost enables MX lookups for registration emails.
	CheckEmailHost bool
}

var appConfig *Config

var defaults = map[string]any{
	"ENV":              "development",
	"LOG_LEVEL":        "info",
	"PORT":             "8080",
	"SHUTDOWN_TIMEOUT": "10s",
	"DB_HOST":          "localhost",
	"DB_PORT":          "5432",
	"DB_USER":          "spendwise",
	"DB_PASSWORD":      "spendwise",
	"DB_NAME":          "spendwise",
	"DB_SSLMODE":       "disable",
	"JWT_SECRET":       "fallback-secret-key-for-dev-only",
	"JWT_ACCESS_TTL":   "15m",
	"JWT_REFRESH_TTL":  "168h",
	"AMQP_URL":         "",
	"AMQP_EXCHANGE":    "spendwise.events",
	"CHECK_EMAIL_HOST": false,
}

// Load loads configuration from the environment, after applying any .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := FromViper(newViper())
	if err != nil {
		return nil, err
	}

	appConfig = cfg
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:      v.GetString("ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),

		Port: v.GetString("PORT"),

		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),

		JWTSecret: v.GetString("JWT_SECRET"),

		AMQPURL:      v.GetString("AMQP_URL"),
		AMQPExchange: v.GetString("AMQP_EXCHANGE"),

		CheckEmailHost: v.GetBool("CHECK_EMAIL_HOST"),
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout},
		{"JWT_ACCESS_TTL", &cfg.AccessTokenTTL},
		{"JWT_REFRESH_TTL", &cfg.RefreshTokenTTL},
	}
	for _, d := range durations {
		raw := v.GetString(d.key)
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid %s value %q", d.key, raw)
		}
		*d.dst = parsed
	}

	if cfg.Env == "production" && cfg.JWTSecret == defaults["JWT_SECRET"] {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// DatabaseURL returns the postgres:// URL used by golang-migrate.
// Credentials are escaped, so passwords may contain URL delimiters.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}

// DSN returns the key/value PostgreSQL connection string used by GORM.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}
