package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string
	DatabaseURL     string
	AutoMigrate     bool

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	JWTSecret    string
	JWTExpiresIn time.Duration

	LLMProvider    string
	LLMModel       string
	LLMBaseURL     string
	LLMAPIKey      string
	LLMTimeout     time.Duration
	LLMMaxTokens   int
	LLMTemperature float32

	PdftoppmPath      string
	TessdataPrefix    string
	ExtractionTimeout time.Duration
	ChatRatePerMinute int

	Pipeline Pipeline
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	pipeline := DefaultPipeline()
	if path := strings.TrimSpace(os.Getenv("PIPELINE_CONFIG")); path != "" {
		loaded, err := LoadPipelineFile(path, pipeline)
		if err != nil {
			log.Printf("pipeline config %s ignored: %v", path, err)
		} else {
			pipeline = loaded
		}
	}
	pipeline = pipelineFromEnv(pipeline)

	provider := normalizeProvider(getEnv("LLM_PROVIDER", "huggingface"))

	return Config{
		Port:              getEnv("PORT", "8080"),
		CORSAllowOrigin:   splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		Env:               env,
		DatabaseURL:       dbURL,
		AutoMigrate:       getEnvBool("DB_AUTO_MIGRATE", env != "production"),
		ObjectStoreType:   normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:     getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:         getEnv("AWS_REGION", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Prefix:          getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:       getEnv("SSE_KMS_KEY_ID", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTExpiresIn:      getEnvDuration("JWT_EXPIRES_IN", 7*24*time.Hour),
		LLMProvider:       provider,
		LLMModel:          getEnv("LLM_MODEL", defaultModel(provider)),
		LLMBaseURL:        getEnv("LLM_BASE_URL", defaultBaseURL(provider)),
		LLMAPIKey:         apiKeyFor(provider),
		LLMTimeout:        time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		LLMMaxTokens:      getEnvInt("LLM_MAX_TOKENS", 500),
		LLMTemperature:    getEnvFloat("LLM_TEMPERATURE", 0.1),
		PdftoppmPath:      getEnv("PDFTOPPM_PATH", "pdftoppm"),
		TessdataPrefix:    getEnv("TESSDATA_PREFIX", ""),
		ExtractionTimeout: getEnvDuration("EXTRACTION_TIMEOUT", 2*time.Minute),
		ChatRatePerMinute: getEnvInt("CHAT_RATE_PER_MIN", 20),
		Pipeline:          pipeline,
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config %s invalid bool %q, using %t", key, raw, def)
		return def
	}
	return val
}

func getEnvFloat(key string, def float32) float32 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		log.Printf("config %s invalid float %q, using %v", key, raw, def)
		return def
	}
	return float32(val)
}

// getEnvDuration accepts Go durations ("90s") and day suffixes ("7d").
func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := parseDuration(raw)
	if err != nil {
		log.Printf("config %s invalid duration %q, using %s", key, raw, def)
		return def
	}
	return d
}

func parseDuration(raw string) (time.Duration, error) {
	if strings.HasSuffix(raw, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(raw)
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
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "gemini", "google":
		return "gemini"
	case "none", "off", "disabled":
		return "none"
	default:
		return "huggingface"
	}
}

func defaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "gemini":
		return "gemini-1.5-flash"
	default:
		return "meta-llama/Llama-3.2-3B-Instruct"
	}
}

func defaultBaseURL(provider string) string {
	switch provider {
	case "openai":
		return "https://api.openai.com/v1"
	case "huggingface":
		return "https://router.huggingface.co/v1"
	default:
		return ""
	}
}

func apiKeyFor(provider string) string {
	if key := getEnv("LLM_API_KEY", ""); key != "" {
		return key
	}
	switch provider {
	case "openai":
		return getEnv("OPENAI_API_KEY", "")
	case "gemini":
		return getEnv("GEMINI_API_KEY", "")
	default:
		return getEnv("HF_TOKEN", "")
	}
}
