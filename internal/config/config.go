package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	HTTPAddr string

	StorageBackend string
	DataFile       string
	PostgresDSN    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisPrefix    string

	AuthToken string
	JWTSecret string

	AIBaseURL   string
	AIFoodModel string
	AIPlanModel string
	AITimeout   time.Duration
}

var (
	cfg  *Config
	once sync.Once
)

// Load reads .env (when present) and the environment once and panics on an
// invalid configuration.
func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		c, err := Parse()
		if err != nil {
			panic("Invalid config: " + err.Error())
		}
		cfg = c
	})
	return cfg
}

// Parse builds a Config from the current environment without caching it.
func Parse() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	timeout, err := time.ParseDuration(getEnv("AI_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("AI_TIMEOUT: %w", err)
	}
	c := &Config{
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8088"),
		StorageBackend: getEnv("STORAGE_BACKEND", "file"),
		DataFile:       getEnv("DATA_FILE", "data/store.json"),
		PostgresDSN:    getEnv("POSTGRES_DSN", ""),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        redisDB,
		RedisPrefix:    getEnv("REDIS_PREFIX", "nutritracker:"),
		AuthToken:      getEnv("AUTH_TOKEN", "MOCK-TOKEN"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AIBaseURL:      getEnv("AI_BASE_URL", "https://api.openai.com/v1"),
		AIFoodModel:    getEnv("AI_FOOD_MODEL", "gpt-4o-mini"),
		AIPlanModel:    getEnv("AI_PLAN_MODEL", "gpt-3.5-turbo"),
		AITimeout:      timeout,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "file":
		if c.DataFile == "" {
			return errors.New("File storage requires DATA_FILE to be set")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	case "redis":
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when STORAGE_BACKEND=redis")
		}
	case "memory":
	default:
		return errors.New("STORAGE_BACKEND must be one of: file, postgres, redis, memory")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.Env != "development" && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required outside development")
	}
	if c.AIBaseURL == "" {
		return errors.New("AI_BASE_URL must not be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
