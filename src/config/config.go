package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	DatabasePath         string
	LogLevel             string
	ActivityPatternsPath string
	ImportBatchSize      int
	HoldingsCacheTTL     time.Duration
	MetricsAddr          string

	JWTSecret        string
	ActorTokenExpiry time.Duration

	EmailServiceProvider string

	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	MailgunDomain        string
	MailgunPrivateAPIKey string

	SenderEmail string
	SenderName  string

	DispatchRatePerSecond float64
}

// ActivityPatterns is the on-disk shape of the activity label table.
type ActivityPatterns struct {
	Buy  []string `yaml:"buy"`
	Sell []string `yaml:"sell"`
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	jwtSecret := getEnv("JWT_SECRET", "change-me-claimfolio-actor-token-secret-32b")
	if jwtSecret == "change-me-claimfolio-actor-token-secret-32b" {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET environment variable for production.")
	}

	Cfg = &AppConfig{
		DatabasePath:         getEnv("DATABASE_PATH", "./claimfolio.db"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		ActivityPatternsPath: getEnv("ACTIVITY_PATTERNS_PATH", ""),
		ImportBatchSize:      getEnvAsInt("IMPORT_BATCH_SIZE", 1000),
		HoldingsCacheTTL:     getEnvAsDuration("HOLDINGS_CACHE_TTL", 15*time.Minute),
		MetricsAddr:          getEnv("METRICS_ADDR", ""),

		JWTSecret:        jwtSecret,
		ActorTokenExpiry: getEnvAsDuration("ACTOR_TOKEN_EXPIRY", 60*time.Minute),

		EmailServiceProvider: getEnv("EMAIL_SERVICE_PROVIDER", "mock"),

		SMTPServer:   getEnv("SMTP_SERVER", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		MailgunDomain:        getEnv("MAILGUN_DOMAIN", ""),
		MailgunPrivateAPIKey: getEnv("MAILGUN_PRIVATE_API_KEY", ""),

		SenderEmail: getEnv("SENDER_EMAIL", "noreply@example.com"),
		SenderName:  getEnv("SENDER_NAME", "Claimfolio"),

		DispatchRatePerSecond: getEnvAsFloat("DISPATCH_RATE_PER_SECOND", 5),
	}

	if Cfg.ImportBatchSize <= 0 {
		log.Printf("WARNING: IMPORT_BATCH_SIZE must be positive, got %d. Using default 1000.", Cfg.ImportBatchSize)
		Cfg.ImportBatchSize = 1000
	}
	if Cfg.DispatchRatePerSecond <= 0 {
		log.Printf("WARNING: DISPATCH_RATE_PER_SECOND must be positive, got %v. Using default 5.", Cfg.DispatchRatePerSecond)
		Cfg.DispatchRatePerSecond = 5
	}

	log.Printf("Configuration loaded: LogLevel=%s, DBPath=%s, EmailProvider=%s, BatchSize=%d",
		Cfg.LogLevel, Cfg.DatabasePath, Cfg.EmailServiceProvider, Cfg.ImportBatchSize)
}

// LoadActivityPatterns reads the buy/sell label table from a YAML file.
// An empty path yields nil, meaning "use the built-in table".
func LoadActivityPatterns(path string) (*ActivityPatterns, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read activity patterns file %s: %w", path, err)
	}
	var patterns ActivityPatterns
	if err := yaml.Unmarshal(data, &patterns); err != nil {
		return nil, fmt.Errorf("failed to decode activity patterns file %s: %w", path, err)
	}
	if len(patterns.Buy) == 0 {
		return nil, fmt.Errorf("activity patterns file %s defines no buy labels", path)
	}
	return &patterns, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	log.Printf("Invalid number value for %s ('%s'), using default: %v", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
