package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Session store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
)

// Billing grant modes.
const (
	GrantOptimistic = "optimistic"
	GrantWebhook    = "webhook"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string

	SessionStore string
	DatabaseURL  string
	DBMaxConns   int
	SQLitePath   string
	RedisURL     string
	SessionTTL   time.Duration

	TemplatesPath string
	FreeLimit     int

	PromptProvider    string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIOrg         string
	GeminiAPIKey      string
	ModelPremium      string
	ModelStandard     string
	GenerationTimeout time.Duration

	StripeSecretKey     string
	StripePriceID       string
	StripeWebhookSecret string
	PublicBaseURL       string
	BillingGrant        string
	EnableDevRoutes     bool
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := ReadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadConfig applies defaults without validating. Tools that only touch the
// session store validate with ValidateStore.
func ReadConfig() *Config {
	appEnv := getEnv("APP_ENV", "development")
	port := getEnv("PORT", "8080")
	return &Config{
		AppEnv:           appEnv,
		Port:             port,
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		AllowedOrigins:   splitList(os.Getenv("ALLOWED_ORIGINS")),

		SessionStore: strings.ToLower(getEnv("SESSION_STORE", StoreMemory)),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DBMaxConns:   getEnvInt("DB_MAX_CONNS", 10),
		SQLitePath:   getEnv("SQLITE_PATH", "./data/sessions.db"),
		RedisURL:     os.Getenv("REDIS_URL"),
		SessionTTL:   time.Hour * time.Duration(getEnvInt("SESSION_TTL_HOURS", 720)),

		TemplatesPath: os.Getenv("TEMPLATES_PATH"),
		FreeLimit:     getEnvInt("FREE_USAGE_LIMIT", 5),

		PromptProvider:    strings.ToLower(getEnv("PROMPT_PROVIDER", "openai")),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:         os.Getenv("OPENAI_ORG"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		ModelPremium:      getEnv("MODEL_PREMIUM", "gpt-4"),
		ModelStandard:     getEnv("MODEL_STANDARD", "gpt-3.5-turbo"),
		GenerationTimeout: time.Second * time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 30)),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripePriceID:       os.Getenv("STRIPE_PRICE_ID"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		PublicBaseURL:       strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		BillingGrant:        strings.ToLower(getEnv("BILLING_GRANT", GrantOptimistic)),
		EnableDevRoutes:     getEnvBool("ENABLE_DEV_ROUTES", appEnv == "development"),
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	if err := c.ValidateStore(); err != nil {
		return err
	}

	switch c.PromptProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when PROMPT_PROVIDER=openai")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when PROMPT_PROVIDER=gemini")
		}
	case "static":
	default:
		return fmt.Errorf("unsupported PROMPT_PROVIDER %q", c.PromptProvider)
	}

	switch c.BillingGrant {
	case GrantOptimistic:
	case GrantWebhook:
		if c.StripeWebhookSecret == "" {
			return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required when BILLING_GRANT=webhook")
		}
	default:
		return fmt.Errorf("unsupported BILLING_GRANT %q", c.BillingGrant)
	}

	if c.StripeSecretKey != "" && c.StripePriceID == "" {
		return fmt.Errorf("STRIPE_PRICE_ID is required when STRIPE_SECRET_KEY is set")
	}
	if c.FreeLimit <= 0 {
		return fmt.Errorf("FREE_USAGE_LIMIT must be positive")
	}
	return nil
}

// ValidateStore checks only the session store settings.
func (c *Config) ValidateStore() error {
	switch c.SessionStore {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when SESSION_STORE=postgres")
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.SessionStore)
	}
	return nil
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
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
