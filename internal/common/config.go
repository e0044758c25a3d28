package common

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	PDF      PDFConfig
	Schema   SchemaConfig
	Queue    QueueConfig
	Log      LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	InMemory         bool
	SQLitePath       string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr   string
	HTTPAddr   string
	StorageDir string
}

// PDFConfig holds the external text converter configuration
type PDFConfig struct {
	Pdftotext string
	Timeout   time.Duration
}

// SchemaConfig points at an optional externally owned order schema.
type SchemaConfig struct {
	Path string
}

// QueueConfig holds worker queue sizing
type QueueConfig struct {
	Workers        int
	Size           int
	ProcessTimeout time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// LoadDotEnv loads a .env file into the environment if one exists.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			InMemory:         getEnvAsBool("DB_INMEM", false),
			SQLitePath:       getEnv("SQLITE_PATH", "data/orders.db"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr:   getEnv("GRPC_ADDR", ":8080"),
			HTTPAddr:   getEnv("HTTP_ADDR", ":8081"),
			StorageDir: getEnv("STORAGE_DIR", "storage/pdf_client_test"),
		},
		PDF: PDFConfig{
			Pdftotext: getEnv("PDFTOTEXT_PATH", "pdftotext"),
			Timeout:   getEnvAsDuration("PDFTOTEXT_TIMEOUT", 30*time.Second),
		},
		Schema: SchemaConfig{
			Path: getEnv("ORDER_SCHEMA_PATH", ""),
		},
		Queue: QueueConfig{
			Workers:        getEnvAsInt("QUEUE_WORKERS", 4),
			Size:           getEnvAsInt("QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("QUEUE_PROCESS_TIMEOUT", time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" && !c.Database.InMemory && c.Database.SQLitePath == "" {
		return NewAppError("CONFIG_ERROR", "one of DB_URL, DB_INMEM or SQLITE_PATH is required", ErrInvalidInput)
	}
	if c.PDF.Pdftotext == "" {
		return NewAppError("CONFIG_ERROR", "PDFTOTEXT_PATH is required", ErrInvalidInput)
	}
	if c.Queue.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "QUEUE_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}
