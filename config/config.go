package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Synthesis SynthesisConfig
	Gate      GateConfig
	Poller    PollerConfig
	Dispatch  DispatchConfig
	Payments  PaymentsConfig
	Firebase  FirebaseConfig
	App       AppConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	DSN string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SynthesisConfig bounds the remote model-proxy calls. Each operation has its
// own budget; past it the engine falls back to the local template.
type SynthesisConfig struct {
	ProxyURL         string
	Model            string
	BriefTimeout     time.Duration
	PrototypeTimeout time.Duration
	RequestsPerMin   int
}

type GateConfig struct {
	SuperUserEmail string
	CheckTimeout   time.Duration
}

type PollerConfig struct {
	Interval      time.Duration
	ReadyToastTTL time.Duration
}

// DispatchConfig drives background synthesis. URL points at the dispatch
// endpoint when hand-off goes over HTTP; Workers sizes the queue consumer
// pool.
type DispatchConfig struct {
	URL     string
	Workers int
}

type PaymentsConfig struct {
	CheckoutURL string
	PortalURL   string
}

type FirebaseConfig struct {
	CredentialsPath string
}

type AppConfig struct {
	Environment      string
	LogLevel         string
	Version          string
	ComplexityPrompt time.Duration
	StatsRefresh     time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			DSN: getEnv("DB_DSN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Synthesis: SynthesisConfig{
			ProxyURL:         getEnv("MODEL_PROXY_URL", ""),
			Model:            getEnv("MODEL_NAME", "gemini-2.0-flash"),
			BriefTimeout:     getEnvAsDuration("BRIEF_TIMEOUT", 14*time.Second),
			PrototypeTimeout: getEnvAsDuration("PROTOTYPE_TIMEOUT", 28*time.Second),
			RequestsPerMin:   getEnvAsInt("MODEL_REQUESTS_PER_MIN", 30),
		},
		Gate: GateConfig{
			SuperUserEmail: getEnv("SUPER_USER_EMAIL", ""),
			CheckTimeout:   getEnvAsDuration("GATE_CHECK_TIMEOUT", 8*time.Second),
		},
		Poller: PollerConfig{
			Interval:      getEnvAsDuration("POLL_INTERVAL", 8*time.Second),
			ReadyToastTTL: getEnvAsDuration("READY_TOAST_TTL", 12*time.Second),
		},
		Dispatch: DispatchConfig{
			URL:     getEnv("DISPATCH_URL", ""),
			Workers: getEnvAsInt("DISPATCH_WORKERS", 4),
		},
		Payments: PaymentsConfig{
			CheckoutURL: getEnv("STRIPE_PAYMENT_LINK", ""),
			PortalURL:   getEnv("STRIPE_CUSTOMER_PORTAL", ""),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		App: AppConfig{
			Environment:      getEnv("APP_ENV", "development"),
			LogLevel:         getEnv("LOG_LEVEL", "info"),
			Version:          getEnv("APP_VERSION", "1.0.0"),
			ComplexityPrompt: getEnvAsDuration("COMPLEXITY_PROMPT_DELAY", 120*time.Second),
			StatsRefresh:     getEnvAsDuration("STATS_REFRESH", 30*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
