package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds runtime configuration sourced from env vars (and an optional .env file).
type Config struct {
	Port          string
	StoreBackend  string
	MongoURI      string
	MongoDatabase string
	JWTSecret     string
	JWTTTL        time.Duration

	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	Realtime        RealtimeConfig
}

// RealtimeConfig tunes the live WebSocket channel.
type RealtimeConfig struct {
	MaxMessageSize    int64
	RateLimitBurst    int
	RateLimitInterval time.Duration
	AllowedOrigins    []string
}

// Load reads .env when present, then the environment, and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	origins := parseCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"))

	cfg := Config{
		Port:            getEnv("API_PORT", "4000"),
		StoreBackend:    strings.ToLower(getEnv("STORE_BACKEND", StoreMongo)),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDatabase:   getEnv("MONGO_DATABASE", "clinic_chat"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTTTL:          time.Duration(getEnvAsInt("JWT_TTL_HOURS", 24)) * time.Hour,
		AllowedOrigins:  origins,
		ShutdownTimeout: time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT", 15)) * time.Second,
		Realtime: RealtimeConfig{
			MaxMessageSize:    int64(getEnvAsInt("WS_MAX_MESSAGE_SIZE", 4096)),
			RateLimitBurst:    getEnvAsInt("WS_RATE_LIMIT_BURST", 5),
			RateLimitInterval: time.Duration(getEnvAsInt("WS_RATE_LIMIT_INTERVAL", 1)) * time.Second,
			AllowedOrigins:    origins,
		},
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	switch cfg.StoreBackend {
	case StoreMongo:
		if cfg.MongoURI == "" {
			return Config{}, errors.New("MONGO_URI is required when STORE_BACKEND=mongo")
		}
	case StoreMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// getEnvAsInt ignores non-positive and malformed values.
func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil && value > 0 {
		return value
	}
	return fallback
}

func parseCSV(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
