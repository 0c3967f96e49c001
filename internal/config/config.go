package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DatabaseURL  string
	MaxOpenConns int

	// Redis
	RedisURL string

	// JWT
	JWTSecret     string
	JWTExpiration time.Duration

	// CORS
	CORSAllowedOrigins []string

	// Judge Service
	JudgeURL     string
	JudgeTimeout time.Duration

	// Duel
	DuelMaxDuration   time.Duration // 이 시간 이상 In Progress면 스위퍼가 무승부 처리
	DuelSweepInterval time.Duration

	// Rate limit (제출)
	SubmitRateLimit  int
	SubmitRateWindow time.Duration
}

func Load() (*Config, error) {
	// .env 파일 로드 (있는 경우)
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiration:      parseDuration(getEnv("JWT_EXPIRATION", "24h"), 24*time.Hour),
		JudgeURL:           getEnv("JUDGE_URL", "http://localhost:8081"),
		JudgeTimeout:       parseDuration(getEnv("JUDGE_TIMEOUT", "60s"), 60*time.Second),
		DuelMaxDuration:    parseDuration(getEnv("DUEL_MAX_DURATION", "1h"), time.Hour),
		DuelSweepInterval:  parseDuration(getEnv("DUEL_SWEEP_INTERVAL", "1m"), time.Minute),
		SubmitRateLimit:    getEnvInt("SUBMIT_RATE_LIMIT", 10),
		SubmitRateWindow:   parseDuration(getEnv("SUBMIT_RATE_WINDOW", "1m"), time.Minute),
		CORSAllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}
