package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName          string
	AppVersion       string
	Environment      string
	LogLevel         string
	HTTPAddr         string
	AuthCookieSecure bool

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimit RateLimitConfig

	// LLM collaborator (query parsing + candidate scoring).
	GeminiAPIKey string
	GeminiModel  string

	// Discovery collaborator (search-engine-backed profile discovery).
	DiscoveryBaseURL string
	DiscoveryAPIKey  string

	// Enrichment collaborator (full profile fetch).
	EnrichBaseURL string
	EnrichAPIKey  string

	Sourcing SourcingConfig

	// PipelineRunTimeout is the deadline for one full search run.
	PipelineRunTimeout time.Duration

	// ScoringRubric overrides the built-in default rubric when set.
	ScoringRubric string

	// AnalyticsWebhookURL receives best-effort product events. Empty disables emission.
	AnalyticsWebhookURL string

	SignupCreditGrant int64
	TrialDays         int
	RevealCreditCost  int64
}

// RateLimitConfig bounds search submission per organization. Limiting is
// skipped entirely when redis is not configured.
type RateLimitConfig struct {
	SearchRate  float64
	SearchBurst int
}

// SourcingConfig bounds the candidate sourcing coordinator.
type SourcingConfig struct {
	// MaxPages is the discovery pagination bound. Documented behavior historically
	// disagreed with the shipped value, so it is an explicit setting with the
	// shipped value as default.
	MaxPages       int
	PageSize       int
	SiteScope      string
	EnrichDelay    time.Duration
	RequestTimeout time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	return Config{
		AppName:          getenv("APP_SERVICE", "talentsift"),
		AppVersion:       getenv("APP_VERSION", "0.1.0"),
		Environment:      environment,
		LogLevel:         getenv("LOG_LEVEL", "info"),
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		AuthCookieSecure: authCookieSecure,

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "talentsift"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		RateLimit: RateLimitConfig{
			SearchRate:  getenvFloat("RATE_LIMIT_SEARCH_RATE", 0.2),
			SearchBurst: getenvInt("RATE_LIMIT_SEARCH_BURST", 5),
		},

		GeminiAPIKey: strings.TrimSpace(getenv("GEMINI_API_KEY", "")),
		GeminiModel:  getenv("GEMINI_MODEL", ""),

		DiscoveryBaseURL: getenv("DISCOVERY_BASE_URL", "https://api.serphouse.example/v1"),
		DiscoveryAPIKey:  strings.TrimSpace(getenv("DISCOVERY_API_KEY", "")),

		EnrichBaseURL: getenv("ENRICH_BASE_URL", "https://api.profilefetch.example/v1"),
		EnrichAPIKey:  strings.TrimSpace(getenv("ENRICH_API_KEY", "")),

		Sourcing: SourcingConfig{
			MaxPages:       getenvInt("SOURCING_MAX_PAGES", 1),
			PageSize:       getenvInt("SOURCING_PAGE_SIZE", 20),
			SiteScope:      getenv("SOURCING_SITE_SCOPE", "linkedin.com/in"),
			EnrichDelay:    getenvDuration("ENRICH_CALL_DELAY", 1500*time.Millisecond),
			RequestTimeout: getenvDuration("SOURCING_REQUEST_TIMEOUT", 15*time.Second),
		},

		PipelineRunTimeout: getenvDuration("PIPELINE_RUN_TIMEOUT", 10*time.Minute),

		ScoringRubric: getenv("SCORING_RUBRIC", ""),

		AnalyticsWebhookURL: strings.TrimSpace(getenv("ANALYTICS_WEBHOOK_URL", "")),

		SignupCreditGrant: getenvInt64("SIGNUP_CREDIT_GRANT", 50),
		TrialDays:         getenvInt("TRIAL_DAYS", 14),
		RevealCreditCost:  getenvInt64("REVEAL_CREDIT_COST", 1),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
