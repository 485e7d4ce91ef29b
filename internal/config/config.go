package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	DialogStoreMemory = "memory"
	DialogStoreRedis  = "redis"

	GateOpen       = "open"
	GateAdmin      = "admin"
	GateSuperAdmin = "super_admin"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Telegram  TelegramConfig
	Dialog    DialogConfig
	RateLimit RateLimitConfig
	Directory DirectoryConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type DatabaseConfig struct {
	Driver        string
	Host          string
	Port          string
	User          string
	Password      string
	Database      string
	Schema        string
	MigrationsDir string
	MaxOpenConns  int
	MaxIdleConns  int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host was configured
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type TelegramConfig struct {
	Token       string
	PollTimeout time.Duration
}

type DialogConfig struct {
	Store string
	TTL   time.Duration
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// DirectoryConfig selects the role required for user record commands
type DirectoryConfig struct {
	Gate string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("DB_DRIVER", DriverPostgres)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 10)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("MIGRATIONS_DIR", "migrations")
	viper.SetDefault("REDIS_HOST", "")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("TELEGRAM_POLL_TIMEOUT", 30*time.Second)
	viper.SetDefault("DIALOG_STORE", DialogStoreMemory)
	viper.SetDefault("DIALOG_TTL", 24*time.Hour)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW", time.Minute)
	viper.SetDefault("DIRECTORY_GATE", GateOpen)

	return &Config{
		Server: ServerConfig{
			Port:     viper.GetString("SERVER_PORT"),
			Env:      viper.GetString("SERVER_ENV"),
			LogLevel: viper.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Driver:        viper.GetString("DB_DRIVER"),
			Host:          viper.GetString("DB_HOST"),
			Port:          viper.GetString("DB_PORT"),
			User:          viper.GetString("DB_USER"),
			Password:      viper.GetString("DB_PASSWORD"),
			Database:      viper.GetString("DB_DATABASE"),
			Schema:        viper.GetString("DB_SCHEMA"),
			MigrationsDir: viper.GetString("MIGRATIONS_DIR"),
			MaxOpenConns:  viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:  viper.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Telegram: TelegramConfig{
			Token:       viper.GetString("TELEGRAM_TOKEN"),
			PollTimeout: viper.GetDuration("TELEGRAM_POLL_TIMEOUT"),
		},
		Dialog: DialogConfig{
			Store: viper.GetString("DIALOG_STORE"),
			TTL:   viper.GetDuration("DIALOG_TTL"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Directory: DirectoryConfig{
			Gate: viper.GetString("DIRECTORY_GATE"),
		},
	}
}

// Validate rejects enumerated settings no component understands
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Dialog.Store {
	case DialogStoreMemory, DialogStoreRedis:
	default:
		return fmt.Errorf("unknown DIALOG_STORE %q", c.Dialog.Store)
	}

	switch c.Directory.Gate {
	case GateOpen, GateAdmin, GateSuperAdmin:
	default:
		return fmt.Errorf("unknown DIRECTORY_GATE %q: want %s, %s or %s",
			c.Directory.Gate, GateOpen, GateAdmin, GateSuperAdmin)
	}

	return nil
}
