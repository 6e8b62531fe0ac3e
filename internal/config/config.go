package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort  string // Application port
	DBDriver string // "mysql" or "sqlite"

	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	SQLitePath string // Database file when DBDriver is sqlite

	JWTSecret string        // JWT secret key
	TokenTTL  time.Duration // Session token lifetime

	RedisAddr string        // Redis server address, empty disables the cache
	RedisPass string        // Redis password
	RedisDB   int           // Redis database number
	CacheTTL  time.Duration // Read cache TTL

	StorageDir     string // Root directory of the object store
	StorageBaseURL string // Public URL prefix stored objects are served under

	BudgetWriteAttempts int  // Attempts per budget write before giving up on conflicts
	IsProd              bool // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:             getEnv("APP_PORT", "8080"),
		DBDriver:            getEnv("DB_DRIVER", "mysql"),
		DBUser:              os.Getenv("DB_USER"),
		DBPassword:          os.Getenv("DB_PASSWORD"),
		DBHost:              getEnv("DB_HOST", "127.0.0.1"),
		DBPort:              getEnv("DB_PORT", "3306"),
		DBName:              getEnv("DB_NAME", "eventflow"),
		SQLitePath:          getEnv("SQLITE_PATH", "./data/eventflow.db"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		TokenTTL:            time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPass:           os.Getenv("REDIS_PASS"),
		RedisDB:             getEnvInt("REDIS_DB", 0),
		CacheTTL:            time.Duration(getEnvInt("CACHE_TTL_SECONDS", 60)) * time.Second,
		StorageDir:          getEnv("STORAGE_DIR", "./data/objects"),
		StorageBaseURL:      getEnv("STORAGE_BASE_URL", "http://localhost:8080/files"),
		BudgetWriteAttempts: getEnvInt("BUDGET_WRITE_ATTEMPTS", 5),
		IsProd:              os.Getenv("IS_PROD") == "true",
	}
}

// MySQLDSN builds the Data Source Name for the MySQL driver
func (c *Config) MySQLDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
