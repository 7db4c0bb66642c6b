package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config holds all runtime settings, read from the environment
type Config struct {
	APIBaseURL      string
	HTTPPort        string
	LogLevel        string
	MaxUploadMB     float64
	SessionStore    string
	SessionTTL      time.Duration
	RenderCacheSize int

	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int
	RedisPoolSize int
}

// Load reads an optional .env file and then the environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only
func FromEnv() *Config {
	cfg := &Config{
		APIBaseURL:      getEnv("QA_API_BASE_URL", "http://localhost:8000"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		LogLevel:        strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		MaxUploadMB:     getEnvAsFloat("MAX_UPLOAD_MB", 5),
		SessionStore:    strings.ToLower(getEnv("SESSION_STORE", SessionStoreMemory)),
		SessionTTL:      getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		RenderCacheSize: getEnvAsInt("RENDER_CACHE_SIZE", 256),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnvAsInt("REDIS_PORT", 6379),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		RedisPoolSize: getEnvAsInt("REDIS_POOL_SIZE", 10),
	}

	if cfg.SessionStore != SessionStoreMemory && cfg.SessionStore != SessionStoreRedis {
		log.Printf("Unknown SESSION_STORE %q, using %s", cfg.SessionStore, SessionStoreMemory)
		cfg.SessionStore = SessionStoreMemory
	}
	if cfg.MaxUploadMB < 0 {
		cfg.MaxUploadMB = 0
	}

	return cfg
}

// Debug reports whether debug logging is enabled
func (c *Config) Debug() bool {
	return c.LogLevel == "DEBUG"
}

// MaxUploadBytes is the upload size limit in bytes, 0 when disabled
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB * 1024 * 1024)
}

func getEnv(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
