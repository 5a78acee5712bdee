// config.go - Handles configuration for the marketplace backend

package config // Declares the package name

import ( // Import required packages
	"fmt"  // Error wrapping
	"time" // Durations for intervals and timeouts

	"github.com/joho/godotenv"             // Loads .env files into the environment
	"github.com/kelseyhightower/envconfig" // Maps environment variables onto the Config struct
)

// Config holds all configuration values. Every field can be set from the environment.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"` // HTTP listen port

	// Storage
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"` // sqlite | postgres
	DBPath      string `envconfig:"DB_PATH" default:"data.db"`  // SQLite database file
	DatabaseURL string `envconfig:"DATABASE_URL"`               // Postgres DSN (DB_DRIVER=postgres)

	// Identity provider
	SessionSecret string        `envconfig:"SESSION_SECRET"`                              // HS256 key for session tokens (required)
	WebhookSecret string        `envconfig:"WEBHOOK_SECRET"`                              // whsec_... signing secret of the webhook endpoint
	IdPAPIURL     string        `envconfig:"IDP_API_URL" default:"https://api.clerk.com"` // Base URL of the provider backend API
	IdPSecretKey  string        `envconfig:"IDP_SECRET_KEY"`                              // Backend API secret key
	IdPTimeout    time.Duration `envconfig:"IDP_TIMEOUT" default:"10s"`                   // Per-request timeout for metadata pushes

	// Messaging
	MQTTBroker   string `envconfig:"MQTT_BROKER"` // Empty disables change notifications
	MQTTClientID string `envconfig:"MQTT_CLIENT_ID" default:"marketplace-backend"`

	// Role sync outbox
	OutboxInterval      time.Duration `envconfig:"OUTBOX_INTERVAL" default:"30s"`      // Poll interval of the background dispatcher
	OutboxMaxAttempts   uint64        `envconfig:"OUTBOX_MAX_ATTEMPTS" default:"3"`    // Retry budget per background delivery
	OutboxInlineTimeout time.Duration `envconfig:"OUTBOX_INLINE_TIMEOUT" default:"2s"` // Bound on the single push made while answering a request

	// HTTP
	WebhookRate string `envconfig:"WEBHOOK_RATE" default:"300-M"` // ulule/limiter formatted rate for /api/webhooks

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON  bool   `envconfig:"LOG_JSON" default:"false"`

	// Bootstrap admin (optional). Creates or promotes this user to ADMIN on startup.
	AdminUserID string `envconfig:"ADMIN_USER_ID"`
	AdminEmail  string `envconfig:"ADMIN_EMAIL"`
}

// insecureSessionSecret is the well-known placeholder from sample .env files
const insecureSessionSecret = "supersecret"

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // load .env if present (ok if missing in prod)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		return nil, fmt.Errorf("load config: unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.SessionSecret == "" || cfg.SessionSecret == insecureSessionSecret {
		return nil, fmt.Errorf("load config: SESSION_SECRET must be set to a private value")
	}
	if cfg.DBDriver == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("load config: DATABASE_URL is required for postgres")
	}
	return &cfg, nil
}
