package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	EmailSender   string
	EmailPassword string // SMTP password
	SMTPHost      string
	SMTPPort      string
	SendGridKey   string
	MailProvider  string // "smtp" or "sendgrid"
	MailTimeout   int    // seconds

	RenderServiceURL string
	RenderTimeout    int // seconds

	NotifyMaxRetries     int
	NotifyBackoffMinutes int
	NotifyRetryBatchSize int
	RetryCronSpec        string
	BounceCronSpec       string
	SweepCronSpec        string
	SweepStaleMinutes    int

	BounceWindowHours  int
	BounceMinSample    int
	BounceRateHigh     float64
	BounceRateCritical float64
	AlertDedupHours    int
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults.
// The workflow and notification engines do not read AppConfig directly; main.go
// translates these values into per-engine settings structs.
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		EmailSender:   getEnv("EMAIL_SENDER", "certificates@assuredresponse.example"),
		EmailPassword: getEnv("EMAIL_PASSWORD", ""),
		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SendGridKey:   getEnv("SENDGRID_API_KEY", ""),
		MailProvider:  getEnv("MAIL_PROVIDER", "smtp"),
		MailTimeout:   getEnvInt("MAIL_TIMEOUT_SECONDS", 15),

		RenderServiceURL: getEnv("RENDER_SERVICE_URL", "http://localhost:8090"),
		RenderTimeout:    getEnvInt("RENDER_TIMEOUT_SECONDS", 30),

		NotifyMaxRetries:     getEnvInt("NOTIFY_MAX_RETRIES", 3),
		NotifyBackoffMinutes: getEnvInt("NOTIFY_BACKOFF_MINUTES", 30),
		NotifyRetryBatchSize: getEnvInt("NOTIFY_RETRY_BATCH_SIZE", 50),
		RetryCronSpec:        getEnv("RETRY_CRON_SPEC", "@every 1m"),
		BounceCronSpec:       getEnv("BOUNCE_CRON_SPEC", "@every 1h"),
		SweepCronSpec:        getEnv("SWEEP_CRON_SPEC", "@every 5m"),
		SweepStaleMinutes:    getEnvInt("SWEEP_STALE_MINUTES", 10),

		BounceWindowHours:  getEnvInt("BOUNCE_WINDOW_HOURS", 24),
		BounceMinSample:    getEnvInt("BOUNCE_MIN_SAMPLE", 10),
		BounceRateHigh:     getEnvFloat("BOUNCE_RATE_HIGH", 0.10),
		BounceRateCritical: getEnvFloat("BOUNCE_RATE_CRITICAL", 0.20),
		AlertDedupHours:    getEnvInt("ALERT_DEDUP_HOURS", 24),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.MailProvider == "sendgrid" && AppConfig.SendGridKey == "" {
		log.Println("Warning: MAIL_PROVIDER is sendgrid but SENDGRID_API_KEY is empty.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvFloat retrieves an environment variable as a float or returns the default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Error converting environment variable %s to float: %v", key, err)
		return defaultValue
	}
	return floatValue
}
