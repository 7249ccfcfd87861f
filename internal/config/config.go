package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	DatabaseURL     string
	MigrationsPath  string
	JWTSecret       string
	HTTPPort        string
	TokenExpiration time.Duration
	LogLevel        string

	// Medical QA upstream
	QAAPIURL  string
	QAUseMock bool

	// Xunfei speech recognition
	XunfeiAPIKey    string
	XunfeiAPISecret string
	XunfeiHost      string

	// File uploads
	UploadDir string
	BaseURL   string
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Could not load .env file. Using environment variables only.")
		// Not fatal; production sets real env vars.
	}

	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		logrus.Fatal("DATABASE_URL environment variable is not set.")
	}

	tokenExpStr := getEnv("JWT_EXPIRATION_HOURS", "24")
	tokenExpHours, err := strconv.Atoi(tokenExpStr)
	if err != nil {
		logrus.Warnf("Invalid JWT_EXPIRATION_HOURS %q, using default 24h", tokenExpStr)
		tokenExpHours = 24
	}

	cfg := &Config{
		DatabaseURL:     dbURL,
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "file://migrations"),
		JWTSecret:       getEnv("JWT_SECRET", "nomad-health-jwt-secret-key-123456"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		TokenExpiration: time.Hour * time.Duration(tokenExpHours),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		QAAPIURL:        getEnv("QWEN_API_URL", "http://localhost:8000"),
		QAUseMock:       getBoolEnv("USE_MOCK_MEDICAL_MODEL", false),
		XunfeiAPIKey:    getEnv("XUNFEI_API_KEY", ""),
		XunfeiAPISecret: getEnv("XUNFEI_API_SECRET", ""),
		XunfeiHost:      getEnv("XUNFEI_HOST", "iat.cn-huabei-1.xf-yun.com"),
		UploadDir:       getEnv("UPLOAD_DIR", "static/uploads"),
		BaseURL:         getEnv("BASE_URL", "http://127.0.0.1:8080"),
	}

	logrus.Infof("Loaded config: Port=%s, DB_URL=***, TokenExp=%s, QAMock=%v",
		cfg.HTTPPort, cfg.TokenExpiration, cfg.QAUseMock)

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getBoolEnv parses a boolean environment variable, accepting true/1/yes.
func getBoolEnv(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	switch value {
	case "true", "1", "yes", "TRUE", "Yes", "True":
		return true
	default:
		return false
	}
}
