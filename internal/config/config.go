package config

import (
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Backend (taskapi)
	DBDriver    string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPath      string
	GinMode     string
	APIPort     string
	JWTSecret   string
	TokenExpiry time.Duration

	// Web client (taskweb)
	WebPort          string
	WebSessionSecret string
	WebSessionStore  string
	RedisHost        string
	RedisPort        string

	// Shared by the clients
	APIBaseURL  string
	SessionFile string
	LogLevel    slog.Level
}

// Load reads configuration from the environment, after loading an optional .env file.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to read .env file: %v", err)
	}

	return &Config{
		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "taskuser"),
		DBPassword:  getEnv("DB_PASSWORD", "taskpassword"),
		DBName:      getEnv("DB_NAME", "task_manager"),
		DBPath:      getEnv("DB_PATH", "taskmanager.db"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		APIPort:     getEnv("API_PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "default-secret-key-change-me"),
		TokenExpiry: time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,

		WebPort:          getEnv("WEB_PORT", "3000"),
		WebSessionSecret: getEnv("WEB_SESSION_SECRET", "default-session-key-change-me"),
		WebSessionStore:  getEnv("WEB_SESSION_STORE", "cookie"),
		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),

		APIBaseURL:  getEnv("API_BASE_URL", "http://localhost:8080/api"),
		SessionFile: getEnv("TASKCTL_SESSION_FILE", defaultSessionFile()),
		LogLevel:    parseLevel(getEnv("LOG_LEVEL", "info")),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskctl-session.yaml"
	}
	return filepath.Join(home, ".taskctl", "session.yaml")
}
