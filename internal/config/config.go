package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultModelCandidates is the priority order used when MODEL_CANDIDATES is unset.
var DefaultModelCandidates = []string{
	"gemini-3-flash-preview",
	"gemini-1.5-flash-latest",
	"gemini-1.5",
	"gemini-1.0",
	"gemini-1.5-pro",
	"chat-bison",
	"text-bison",
}

const defaultSystemPrompt = "You are Sean Gaedke, owner of Gaedke Construction in MN."

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Model gateway
	GeminiAPIKey    string
	LLMProvider     string
	ModelCandidates []string
	SystemPrompt    string
	LeadSource      string
	BusinessPhone   string

	// Lead delivery
	LeadEmailTo   string
	EmailProvider string
	EmailFromName string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string

	// SendGrid Email Configuration
	SendGridAPIKey    string
	SendGridFromEmail string

	// AWS (SES, Bedrock, S3)
	SESFromEmail        string
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	LeadArchiveBucket   string

	// Journals and storage
	LeadLogPath          string
	AnalyticsLogPath     string
	DatabaseURL          string
	AnalyticsDatabaseURL string
	RedisAddr            string
	RedisPassword        string
	RedisTLS             bool
	LeadRetention        time.Duration

	// HTTP surface
	AdminJWTSecret     string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	ShutdownTimeout    time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		GeminiAPIKey:    firstEnv("GEMINI_API_KEY", "GOOGLE_GENERATIVE_AI_API_KEY", "GOOGLE_API_KEY"),
		LLMProvider:     strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "genai"))),
		ModelCandidates: getEnvAsList("MODEL_CANDIDATES", DefaultModelCandidates),
		SystemPrompt:    getEnv("SYSTEM_PROMPT", defaultSystemPrompt),
		LeadSource:      getEnv("LEAD_SOURCE", "chat-api"),
		BusinessPhone:   getEnv("BUSINESS_PHONE", ""),

		LeadEmailTo:   getEnv("LEAD_EMAIL_TO", ""),
		EmailProvider: strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "smtp"))),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "Gaedke Construction"),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPass:      getEnv("SMTP_PASS", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),

		SESFromEmail:        getEnv("SES_FROM_EMAIL", ""),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		LeadArchiveBucket:   getEnv("LEAD_ARCHIVE_BUCKET", ""),

		LeadLogPath:          getEnv("LEAD_LOG_PATH", "data/quote-log.jsonl"),
		AnalyticsLogPath:     getEnv("ANALYTICS_LOG_PATH", "data/analytics.jsonl"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		AnalyticsDatabaseURL: getEnv("ANALYTICS_DATABASE_URL", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisTLS:             getEnvAsBool("REDIS_TLS", false),
		LeadRetention:        getEnvAsDuration("LEAD_RETENTION", 0),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),
		ShutdownTimeout:    getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// HasGeminiKey reports whether any of the accepted API key variables was set.
func (c *Config) HasGeminiKey() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
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

// getEnvAsList splits a comma-separated variable, dropping blank entries.
// The default slice is copied so callers never share it.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultValue...)
	}
	return out
}
