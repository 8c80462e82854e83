package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Storage  StorageConfig
	SMTP     SMTPConfig
	Crypto   CryptoConfig
	Ai       AIConfig
	Ingest   IngestConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	FeedbackTopic      string
	FeedbackEmail      string
}

type DatabaseConfig struct {
	ConnectionString string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type CryptoConfig struct {
	MasterKey string
}

type AIConfig struct {
	EmbeddingProvider  string
	EmbeddingModel     string
	EmbeddingDimension int
	OllamaBaseURL      string
	GeminiApiKey       string
	LLMProvider        string
	LLMModel           string
	HuggingFaceKey     string
	OcrURL             string
}

type IngestConfig struct {
	ChunkSize     int
	ChunkOverlap  int
	MaxFileSizeMB int
	RetrievalTopK int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("APP_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			FeedbackTopic:      getEnv("FEEDBACK_TOPIC", "feedback.email"),
			FeedbackEmail:      getEnv("FEEDBACK_NOTIFY_EMAIL", ""),
		},
		Database: DatabaseConfig{
			ConnectionString: getEnv("DB_CONNECTION_STRING", ""),
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey: getEnv("STORAGE_SECRET_KEY", ""),
			Bucket:    getEnv("STORAGE_BUCKET", "documents"),
			UseSSL:    getEnvAsBool("STORAGE_USE_SSL", false),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			Sender:   getEnv("SMTP_SENDER", ""),
		},
		Crypto: CryptoConfig{
			MasterKey: getEnv("CRYPTO_MASTER_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "gemini"),
			EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-004"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 768),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			GeminiApiKey:       getEnv("GEMINI_API_KEY", ""),
			LLMProvider:        getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:           getEnv("LLM_MODEL", "llama3.1"),
			HuggingFaceKey:     getEnv("HUGGINGFACE_API_KEY", ""),
			OcrURL:             getEnv("OCR_SERVICE_URL", ""),
		},
		Ingest: IngestConfig{
			ChunkSize:     getEnvAsInt("INGEST_CHUNK_SIZE", 1500),
			ChunkOverlap:  getEnvAsInt("INGEST_CHUNK_OVERLAP", 200),
			MaxFileSizeMB: getEnvAsInt("INGEST_MAX_FILE_SIZE_MB", 25),
			RetrievalTopK: getEnvAsInt("RETRIEVAL_TOP_K", 5),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
