package config

import (
	"os"
)

type Config struct {
	DatabaseURL   string
	Port          string
	JWTSecret     string
	AdminPassword string
	Environment   string

	// Client / engine settings
	APIBaseURL string // base URL the dashboard client and engine talk to
	RatesURL   string // candle endpoint the strength engine samples
}

func Load() *Config {
	defaultDSN := "tracker:tracker@tcp(127.0.0.1:3306)/strength_tracker?charset=utf8mb4&parseTime=True&loc=Local"

	return &Config{
		DatabaseURL:   getEnv("DATABASE_URL", defaultDSN),
		Port:          getEnv("PORT", "8080"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-only-secret"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		Environment:   getEnv("ENVIRONMENT", "development"),

		APIBaseURL: getEnv("API_URL", "http://127.0.0.1:8080"),
		RatesURL:   getEnv("RATES_URL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
