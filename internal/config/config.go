package config

import (
	"os"
	"strconv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort           string
	PostgresDSN          string
	RedisAddr            string
	RedisDB              int
	RedisPass            string
	JWTSecret            string
	GoogleClientID       string
	GoogleClientSecret   string
	GoogleRedirectURI    string
	FirefliesAPIKey      string
	AutomationWebhookURL string
	BackendURL           string
	DashboardURL         string
	SwaggerHost          string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	backendURL := getEnv("BACKEND_URL", "http://localhost:3001")
	return &Config{
		ServerPort:           getEnv("SERVER_PORT", "3001"),
		PostgresDSN:          getEnv("POSTGRES_DSN", "host=localhost port=5432 user=postgres password=postgres dbname=esecretary sslmode=disable"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisPass:            os.Getenv("REDIS_PASSWORD"),
		JWTSecret:            getEnv("JWT_SECRET", "change-me"),
		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:   os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:    getEnv("GOOGLE_REDIRECT_URI", backendURL+"/api/auth/google/callback"),
		FirefliesAPIKey:      os.Getenv("FIREFLIES_API_KEY"),
		AutomationWebhookURL: getEnv("AUTOMATION_WEBHOOK_URL", "http://localhost:5678/webhook/fireflies-transcript"),
		BackendURL:           backendURL,
		DashboardURL:         getEnv("DASHBOARD_URL", "/dashboard.html"),
		SwaggerHost:          os.Getenv("SWAGGER_HOST"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
