package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	Port            string
	IsProduction    bool
	LogLevel        string
	ShutdownTimeout time.Duration

	// Credential store
	StoreDriver    string
	DatabaseURL    string
	EnableDBCheck  bool
	MigrationsPath string

	// Session credentials
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Password reset
	ResetTokenTTL time.Duration

	// Public URLs
	ClientURL          string
	ServerURL          string
	CORSAllowedOrigins []string

	// External OAuth Providers
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	GoogleAuthScopes   []string

	// Outgoing email
	Email EmailConfig

	// Rate limiting, ulule formatted rates such as "20-M"
	AuthRateLimit   string
	GlobalRateLimit string
	RedisURL        string

	PosthogAPIKey   string
	PosthogEndpoint string
}

// EmailConfig holds SMTP settings for the notification sender.
type EmailConfig struct {
	Enabled   bool
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	FromName  string
	Workers   int
	QueueSize int
}

// GoogleOAuthConfigured reports whether the Google login flow can be offered.
func (c *Config) GoogleOAuthConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("ENABLE_DB_CHECK", true)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRY_DURATION", "168h")
	v.SetDefault("JWT_ISSUER", "chat-backend")
	v.SetDefault("RESET_TOKEN_TTL", "1h")
	v.SetDefault("CLIENT_URL", "http://localhost:3000")
	v.SetDefault("SERVER_URL", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URL", "")
	v.SetDefault("GOOGLE_AUTH_SCOPES", "openid,email,profile")
	v.SetDefault("EMAIL_ENABLED", false)
	v.SetDefault("EMAIL_HOST", "")
	v.SetDefault("EMAIL_PORT", 587)
	v.SetDefault("EMAIL_USER", "")
	v.SetDefault("EMAIL_PASS", "")
	v.SetDefault("EMAIL_FROM", "no-reply@localhost")
	v.SetDefault("EMAIL_FROM_NAME", "AI Chat Assistant")
	v.SetDefault("MAIL_WORKERS", 2)
	v.SetDefault("MAIL_QUEUE_SIZE", 100)
	v.SetDefault("AUTH_RATE_LIMIT", "20-M")
	v.SetDefault("GLOBAL_RATE_LIMIT", "1000-M")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "5000"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = v.GetBool("IS_PRODUCTION")
	cfg.LogLevel = v.GetString("LOG_LEVEL")
	cfg.ShutdownTimeout = parseDuration(v, "SHUTDOWN_TIMEOUT", 15*time.Second)

	cfg.StoreDriver = strings.ToLower(v.GetString("STORE_DRIVER"))
	if cfg.StoreDriver != StoreDriverPostgres && cfg.StoreDriver != StoreDriverMemory {
		log.Printf("Warning: Invalid value for STORE_DRIVER ('%s'). Defaulting to %s.\n", cfg.StoreDriver, StoreDriverPostgres)
		cfg.StoreDriver = StoreDriverPostgres
	}
	cfg.DatabaseURL = v.GetString("PGSQL_URL")
	if cfg.StoreDriver == StoreDriverPostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	cfg.EnableDBCheck = v.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = v.GetString("MIGRATIONS_PATH")

	cfg.JWTSecret = v.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTExpiryDuration = parseDuration(v, "JWT_EXPIRY_DURATION", 7*24*time.Hour)
	cfg.JWTIssuer = v.GetString("JWT_ISSUER")
	cfg.ResetTokenTTL = parseDuration(v, "RESET_TOKEN_TTL", time.Hour)

	cfg.ClientURL = strings.TrimSuffix(v.GetString("CLIENT_URL"), "/")
	cfg.ServerURL = strings.TrimSuffix(v.GetString("SERVER_URL"), "/")
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:" + cfg.Port
		log.Printf("Warning: SERVER_URL not set, using default: %s\n", cfg.ServerURL)
	}
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{cfg.ClientURL}
	}

	cfg.GoogleClientID = v.GetString("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = v.GetString("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = v.GetString("GOOGLE_REDIRECT_URL")
	cfg.GoogleAuthScopes = splitList(v.GetString("GOOGLE_AUTH_SCOPES"))

	// Log warnings for missing critical OAuth ENV variables
	if cfg.GoogleClientID == "" {
		log.Println("Warning: GOOGLE_CLIENT_ID not set. Google OAuth will not function.")
	}
	if cfg.GoogleClientSecret == "" {
		log.Println("Warning: GOOGLE_CLIENT_SECRET not set. Google OAuth will not function.")
	}
	if cfg.GoogleRedirectURL == "" {
		log.Println("Warning: GOOGLE_REDIRECT_URL not set. Google OAuth will not function.")
	}

	cfg.Email = EmailConfig{
		Enabled:   v.GetBool("EMAIL_ENABLED"),
		Host:      v.GetString("EMAIL_HOST"),
		Port:      v.GetInt("EMAIL_PORT"),
		Username:  v.GetString("EMAIL_USER"),
		Password:  v.GetString("EMAIL_PASS"),
		From:      v.GetString("EMAIL_FROM"),
		FromName:  v.GetString("EMAIL_FROM_NAME"),
		Workers:   v.GetInt("MAIL_WORKERS"),
		QueueSize: v.GetInt("MAIL_QUEUE_SIZE"),
	}
	if cfg.Email.Enabled && cfg.Email.Host == "" {
		log.Println("Warning: EMAIL_ENABLED is set but EMAIL_HOST is empty. Emails will only be logged.")
		cfg.Email.Enabled = false
	}
	if cfg.Email.Workers <= 0 {
		cfg.Email.Workers = 1
	}
	if cfg.Email.QueueSize <= 0 {
		cfg.Email.QueueSize = 1
	}

	cfg.AuthRateLimit = v.GetString("AUTH_RATE_LIMIT")
	cfg.GlobalRateLimit = v.GetString("GLOBAL_RATE_LIMIT")
	cfg.RedisURL = v.GetString("REDIS_URL")

	cfg.PosthogAPIKey = v.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = v.GetString("POSTHOG_ENDPOINT")

	return cfg
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
