package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Empty DatabaseURL selects the seeded in-memory store, allowed only
	// when Env is "development".
	DatabaseURL string
	Env         string
	DBMaxConns  int32
	DBMinConns  int32

	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	GeminiTimeout  time.Duration
	GeminiProxyURL string
	AIMaxAttempts  int

	// Circuit-breaker settings around the AI client.
	CBMaxRequests      uint32
	CBInterval         time.Duration
	CBTimeout          time.Duration
	CBFailureThreshold uint32

	RedisURL          string
	RecommendCacheTTL time.Duration
	NATSURL           string

	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() (Config, error) {
	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "development"
	}
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" && env != "development" {
		return Config{}, errors.New("DATABASE_URL is required outside development")
	}

	cfg := Config{
		DatabaseURL: dbURL,
		Env:         env,
		DBMaxConns:  int32(envInt("DB_MAX_CONNS", 10)),
		DBMinConns:  int32(envInt("DB_MIN_CONNS", 0)),

		GeminiAPIKey:   strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:    strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		GeminiBaseURL:  strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")),
		GeminiTimeout:  envDuration("GEMINI_TIMEOUT", 30*time.Second),
		GeminiProxyURL: strings.TrimSpace(os.Getenv("GEMINI_PROXY_URL")),
		AIMaxAttempts:  envInt("AI_MAX_ATTEMPTS", 3),

		CBMaxRequests:      uint32(envInt("CB_MAX_REQUESTS", 1)),
		CBInterval:         envDuration("CB_INTERVAL", 60*time.Second),
		CBTimeout:          envDuration("CB_TIMEOUT", 30*time.Second),
		CBFailureThreshold: uint32(envInt("CB_FAILURE_THRESHOLD", 5)),

		RedisURL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
		RecommendCacheTTL: envDuration("RECOMMEND_CACHE_TTL", 30*time.Minute),
		NATSURL:           strings.TrimSpace(os.Getenv("NATS_URL")),

		RateLimitRPS:   envFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 5),
	}
	if cfg.AIMaxAttempts <= 0 {
		return Config{}, errors.New("AI_MAX_ATTEMPTS must be positive")
	}
	return cfg, nil
}

// AIEnabled reports whether a Gemini key is configured.
func (c Config) AIEnabled() bool { return c.GeminiAPIKey != "" }

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
