package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Chat model providers. The first configured provider becomes the
	// primary LLM client; the next configured one becomes its fallback.
	// With none configured the chat endpoint runs in demo mode.
	GeminiAPIKey         string
	GeminiModelID        string
	GeminiEmbeddingModel string
	OpenAIAPIKey         string
	OpenAIModelID        string
	OpenAIEmbeddingModel string
	BedrockModelID       string

	// Pinecone vector index. Both values are required for retrieval mode;
	// absence of either forces plain chat even when an LLM key is present.
	PineconeAPIKey    string
	PineconeIndexHost string
	PineconeNamespace string

	// Lead notification sink.
	ContactEmail      string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string

	// Session transcripts. Empty RedisAddr selects the in-memory store.
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	SessionTTL    time.Duration

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:        getEnv("GEMINI_MODEL_ID", "gemini-2.0-flash"),
		GeminiEmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIModelID:        getEnv("OPENAI_MODEL_ID", "gpt-4o"),
		OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		BedrockModelID:       getEnv("BEDROCK_MODEL_ID", ""),

		PineconeAPIKey:    getEnv("PINECONE_API_KEY", ""),
		PineconeIndexHost: getEnv("PINECONE_INDEX_HOST", ""),
		PineconeNamespace: getEnv("PINECONE_NAMESPACE", ""),

		ContactEmail:      getEnv("CONTACT_EMAIL", "hello@maruonline.com"),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "chatbot@maruonline.com"),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Maru Chatbot"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "Maru Chatbot"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 24*time.Hour),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// HasLLMProvider reports whether any chat model credential is configured.
func (c *Config) HasLLMProvider() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != "" ||
		strings.TrimSpace(c.OpenAIAPIKey) != "" ||
		strings.TrimSpace(c.BedrockModelID) != ""
}

// HasRetrieval reports whether the vector index is fully configured.
func (c *Config) HasRetrieval() bool {
	return strings.TrimSpace(c.PineconeAPIKey) != "" &&
		strings.TrimSpace(c.PineconeIndexHost) != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
