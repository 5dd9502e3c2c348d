package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// Auth Configuration
	Auth AuthConfig `json:"auth"`

	// Store selects and configures the persistence backend
	Store StoreConfig `json:"store"`

	// MongoDB Configuration
	MongoDB MongoDBConfig `json:"mongodb"`

	// Database Configuration (MySQL)
	Database DatabaseConfig `json:"database"`

	Poller    PollerConfig    `json:"poller"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Health    HealthConfig    `json:"health"`

	// Logging Configuration
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port          string `json:"port"`
	Host          string `json:"host"`
	ReadTimeout   int    `json:"read_timeout"`
	WriteTimeout  int    `json:"write_timeout"`
	AllowedOrigin string `json:"allowed_origin"`
	Environment   string `json:"environment"` // development, staging, production
}

type AuthConfig struct {
	JWTSecret  string        `json:"-"`
	TokenTTL   time.Duration `json:"token_ttl"`
	BcryptCost int           `json:"bcrypt_cost"`
}

// StoreConfig picks the backend: mongo, mysql or memory
type StoreConfig struct {
	Driver string `json:"driver"`
}

type MongoDBConfig struct {
	URI          string `json:"-"`
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	Database     string `json:"database"`
	Transactions bool   `json:"transactions"` // needs a replica set
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

// PollerConfig drives the client-side sync poller
type PollerConfig struct {
	Interval time.Duration `json:"interval"`
}

// RateLimitConfig bounds unauthenticated auth attempts per client IP
type RateLimitConfig struct {
	AuthPerMinute int `json:"auth_per_minute"`
	AuthBurst     int `json:"auth_burst"`
}

// HealthConfig configures the gRPC health endpoint; empty port disables it
type HealthConfig struct {
	GRPCPort      string        `json:"grpc_port"`
	CheckInterval time.Duration `json:"check_interval"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level"`       // debug, info, warn, error
	Format     string `json:"format"`      // json, console
	OutputPath string `json:"output_path"` // stdout, stderr, or file path
}

// LoadConfig builds the configuration from environment variables.
// Callers load .env files beforehand.
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          getEnvOrDefault("PORT", "5000"),
			Host:          getEnvOrDefault("HOST", ""),
			ReadTimeout:   getEnvInt("READ_TIMEOUT", 15),
			WriteTimeout:  getEnvInt("WRITE_TIMEOUT", 15),
			AllowedOrigin: getEnvOrDefault("CORS_ORIGIN", "http://localhost:5173"),
			Environment:   getEnvOrDefault("APP_ENV", "development"),
		},
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("JWT_SECRET"),
			TokenTTL:   getEnvDuration("TOKEN_TTL", time.Hour),
			BcryptCost: getEnvInt("BCRYPT_COST", 10),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnvOrDefault("STORE_DRIVER", "mongo")),
		},
		MongoDB: MongoDBConfig{
			URI:          os.Getenv("MONGO_URI"),
			Host:         getEnvOrDefault("MONGO_HOST", "localhost"),
			Port:         getEnvOrDefault("MONGO_PORT", "27017"),
			Username:     getEnvOrDefault("MONGO_USERNAME", ""),
			Password:     getEnvOrDefault("MONGO_PASSWORD", ""),
			Database:     getEnvOrDefault("MONGO_DATABASE", "gochat"),
			Transactions: getEnvBool("MONGO_TRANSACTIONS", false),
		},
		Database: DatabaseConfig{
			Host:         getEnvOrDefault("MYSQL_HOST", "localhost"),
			Port:         getEnvOrDefault("MYSQL_PORT", "3306"),
			Username:     getEnvOrDefault("MYSQL_USERNAME", "gochat"),
			Password:     getEnvOrDefault("MYSQL_PASSWORD", ""),
			DatabaseName: getEnvOrDefault("MYSQL_DATABASE", "gochat"),
			MaxOpenConns: getEnvInt("MYSQL_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("MYSQL_MAX_IDLE_CONNS", 5),
		},
		Poller: PollerConfig{
			Interval: getEnvDuration("POLL_INTERVAL", 5*time.Second),
		},
		RateLimit: RateLimitConfig{
			AuthPerMinute: getEnvInt("AUTH_RATE_PER_MIN", 20),
			AuthBurst:     getEnvInt("AUTH_RATE_BURST", 10),
		},
		Health: HealthConfig{
			GRPCPort:      getEnvOrDefault("HEALTH_GRPC_PORT", ""),
			CheckInterval: getEnvDuration("HEALTH_CHECK_INTERVAL", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:      getEnvOrDefault("LOG_LEVEL", "info"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
		},
	}
}

// Validate reports configuration that would make the server unusable.
func (cfg *Config) Validate() error {
	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	switch cfg.Store.Driver {
	case "mongo", "mysql", "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}
	return nil
}

// Addr is the HTTP listen address.
func (cfg *Config) Addr() string {
	return fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
}

// GetMongoURI prefers MONGO_URI and otherwise assembles one from the parts.
func (cfg *Config) GetMongoURI() string {
	if cfg.MongoDB.URI != "" {
		return cfg.MongoDB.URI
	}
	if cfg.MongoDB.Username != "" && cfg.MongoDB.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin",
			url.QueryEscape(cfg.MongoDB.Username),
			url.QueryEscape(cfg.MongoDB.Password),
			cfg.MongoDB.Host,
			cfg.MongoDB.Port,
			cfg.MongoDB.Database,
		)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s", cfg.MongoDB.Host, cfg.MongoDB.Port, cfg.MongoDB.Database)
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("5s") or bare seconds ("5").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
