package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	ServerPort string

	JWTSecret string
	JWTExpiry time.Duration

	// MoveLockTimeout bounds how long a move waits for a contended card
	// row before giving up with a conflict.
	MoveLockTimeout time.Duration

	MigrationsPath string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "taskboard_user"),
		DBPassword:      getEnv("DB_PASSWORD", "taskboard_pass"),
		DBName:          getEnv("DB_NAME", "taskboard_db"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		JWTSecret:       getEnv("JWT_SECRET", "supersecretkey"),
		JWTExpiry:       time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		MoveLockTimeout: time.Duration(getEnvInt("MOVE_LOCK_TIMEOUT_MS", 750)) * time.Millisecond,
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "migrations"),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠️  Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return n
}
