package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultGeminiModel     = "gemini-1.5-flash"
	defaultOpenRouterModel = "google/gemini-flash-1.5"
	defaultOpenRouterURL   = "https://openrouter.ai/api/v1"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	MinIO           MinIOConfig
	AI              AIConfig
	DatabaseURL     string
	Env             string
	JWTSecret       string
	RateLimitRPS    float64
	RateLimitBurst  int
	FunctionURL     string
	FunctionAnonKey string
	RedisURL        string
}

// MinIOConfig holds settings for an S3-compatible object store reached through minio-go.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AIConfig lists the configured AI providers in precedence order.
type AIConfig struct {
	Providers      []ProviderConfig
	TimeoutSeconds int
}

// ProviderConfig describes one upstream LLM provider.
type ProviderConfig struct {
	Name    string
	APIKey  string
	Model   string
	BaseURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience. Existing env wins.
	for _, path := range []string{".env", "cmd/.env"} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		AI:              loadAIConfig(),
		DatabaseURL:     dbURL,
		Env:             env,
		JWTSecret:       getEnv("JWT_SECRET", ""),
		RateLimitRPS:    getEnvFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 20),
		FunctionURL:     getEnv("FUNCTION_URL", ""),
		FunctionAnonKey: getEnv("FUNCTION_ANON_KEY", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
	}
}

// loadAIConfig enumerates providers by precedence: Gemini first, OpenRouter as fallback.
// A provider without an API key is left out.
func loadAIConfig() AIConfig {
	var providers []ProviderConfig
	if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
		providers = append(providers, ProviderConfig{
			Name:   "gemini",
			APIKey: key,
			Model:  getEnv("GEMINI_MODEL", defaultGeminiModel),
		})
	}
	if key := strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")); key != "" {
		providers = append(providers, ProviderConfig{
			Name:    "openrouter",
			APIKey:  key,
			Model:   getEnv("OPENROUTER_MODEL", defaultOpenRouterModel),
			BaseURL: getEnv("OPENROUTER_BASE_URL", defaultOpenRouterURL),
		})
	}
	return AIConfig{
		Providers:      providers,
		TimeoutSeconds: getEnvInt("AI_TIMEOUT_SECONDS", 0),
	}
}

// IsDevLike reports whether env is a local development environment.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("config %s invalid int, using default %d", key, def)
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("config %s invalid float, using default %v", key, def)
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "minio":
		return "minio"
	default:
		return "local"
	}
}
