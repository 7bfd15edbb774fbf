package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Qdrant    QdrantConfig
	Gemini    GeminiConfig
	Embedding EmbeddingConfig
	Antivirus AntivirusConfig
	OCR       OCRConfig
	Storage   StorageConfig
	Worker    WorkerConfig
	Matching  MatchingConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogJSON  bool
	LogDebug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	MaxRetries int
}

type EmbeddingConfig struct {
	Provider string // "gemini" or "voyage"
	APIKey   string
	Model    string
}

type AntivirusConfig struct {
	Enabled bool
	Host    string
	Port    string
}

type OCRConfig struct {
	Enabled     bool
	Timeout     time.Duration
	DockerImage string
	UseDocker   bool
	ParserPath  string
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency       int
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
}

type MatchingConfig struct {
	BatchConcurrency int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "3000"),
			Env:      getEnv("ENV", "development"),
			LogJSON:  getEnvAsBool("LOG_JSON", false),
			LogDebug: getEnvAsBool("LOG_DEBUG", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "jobsphere"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "jobsphere_resumes"),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			Model:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			MaxRetries: getEnvAsInt("GEMINI_MAX_RETRIES", 3),
		},
		Embedding: EmbeddingConfig{
			Provider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			APIKey:   getEnv("EMBEDDING_API_KEY", getEnv("GEMINI_API_KEY", "")),
			Model:    getEnv("EMBEDDING_MODEL", ""),
		},
		Antivirus: AntivirusConfig{
			Enabled: getEnvAsBool("ENABLE_ANTIVIRUS", true),
			Host:    getEnv("CLAMAV_HOST", "localhost"),
			Port:    getEnv("CLAMAV_PORT", "3310"),
		},
		OCR: OCRConfig{
			Enabled:     getEnvAsBool("ENABLE_OCR", true),
			Timeout:     getEnvAsDuration("OCR_TIMEOUT", "30s"),
			DockerImage: getEnv("OCR_PARSER_IMAGE", "jobsphere-ocr-parser"),
			UseDocker:   getEnvAsBool("OCR_USE_DOCKER", true),
			ParserPath:  getEnv("OCR_PARSER_PATH", "./docker/ocr-parser/parser.py"),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency:       getEnvAsInt("WORKER_CONCURRENCY", 3),
			RetryMaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			RetryInitialDelay: getEnvAsDuration("RETRY_INITIAL_DELAY", "2s"),
		},
		Matching: MatchingConfig{
			BatchConcurrency: getEnvAsInt("MATCH_BATCH_CONCURRENCY", 10),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
