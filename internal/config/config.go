package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds the full runtime configuration of the scholarship API,
// parsed from environment variables once at startup and passed down
// explicitly to every component that needs a slice of it.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"scholarship-api"`
	HTTPAddr    string `env:"HTTP_ADDR"    envDefault:":8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`

	// ExternalTimeout bounds every outbound call to the identity provider,
	// the profile mirror and the object store.
	ExternalTimeout time.Duration `env:"EXTERNAL_TIMEOUT" envDefault:"10s"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	Mongo         MongoConfig         `envPrefix:"MONGO_"`
	Mirror        MirrorConfig        `envPrefix:"MIRROR_"`
	Identity      IdentityConfig      `envPrefix:"IDENTITY_"`
	SMTP          SMTPConfig          `envPrefix:"SMTP_"`
	Storage       StorageConfig       `envPrefix:"STORAGE_"`
	Verification  VerificationConfig  `envPrefix:"VERIFICATION_"`
	PasswordReset PasswordResetConfig `envPrefix:"PASSWORD_RESET_"`
	Consul        ConsulConfig        `envPrefix:"CONSUL_"`
}

// MongoConfig configures the credential store connection.
type MongoConfig struct {
	URI      string `env:"URI"      envDefault:"mongodb://localhost:27017"`
	Database string `env:"DATABASE" envDefault:"scholarship"`
}

// MirrorConfig configures the redis-backed profile mirror.
type MirrorConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// IdentityConfig configures the external identity provider adapter and the
// custom session tokens minted against it.
type IdentityConfig struct {
	APIKey         string        `env:"API_KEY"`
	Endpoint       string        `env:"ENDPOINT"`
	TokenSecret    string        `env:"TOKEN_SECRET"`
	TokenIssuer    string        `env:"TOKEN_ISSUER" envDefault:"scholarship-api"`
	TokenExpiresIn time.Duration `env:"TOKEN_EXPIRES_IN" envDefault:"1h"`
}

// SMTPConfig configures the outbound mailer.
type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

// StorageConfig configures the S3-compatible object store for uploaded
// application documents.
type StorageConfig struct {
	Region        string `env:"REGION" envDefault:"us-east-1"`
	Bucket        string `env:"BUCKET"`
	Endpoint      string `env:"ENDPOINT"`
	AccessKey     string `env:"ACCESS_KEY"`
	SecretKey     string `env:"SECRET_KEY"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
}

// VerificationConfig controls the one-time code and link-token lifecycle.
// The expiry here is the single source of truth; the email templates render
// the same value so the enforced and advertised lifetimes never diverge.
type VerificationConfig struct {
	CodeExpiresIn time.Duration `env:"CODE_EXPIRES_IN" envDefault:"15m"`
	LinkBaseURL   string        `env:"LINK_BASE_URL" envDefault:"http://localhost:8080/auth/verify"`
}

// PasswordResetConfig controls the reset token lifecycle. The secret is
// separate from the session token secret so a leaked reset link can never be
// replayed as a session credential.
type PasswordResetConfig struct {
	TokenSecret    string        `env:"TOKEN_SECRET"`
	TokenExpiresIn time.Duration `env:"TOKEN_EXPIRES_IN" envDefault:"30m"`
	LinkBaseURL    string        `env:"LINK_BASE_URL" envDefault:"http://localhost:8080/auth/reset-password"`
}

// ConsulConfig configures optional service registration. Registration is
// skipped entirely when Addr is empty.
type ConsulConfig struct {
	Addr            string `env:"ADDR"`
	ServiceAddr     string `env:"SERVICE_ADDR" envDefault:"127.0.0.1"`
	ServicePort     int    `env:"SERVICE_PORT" envDefault:"8080"`
	HealthInterval  string `env:"HEALTH_INTERVAL" envDefault:"10s"`
	DeregisterAfter string `env:"DEREGISTER_AFTER" envDefault:"1m"`
}

// Load parses the configuration from environment variables.
func Load(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

// validate checks the settings without which the service cannot operate.
func (c *Config) validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("missing MONGO_URI environment variable")
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("missing MONGO_DATABASE environment variable")
	}
	if c.Identity.TokenSecret == "" {
		return fmt.Errorf("missing IDENTITY_TOKEN_SECRET environment variable")
	}
	if c.PasswordReset.TokenSecret == "" {
		return fmt.Errorf("missing PASSWORD_RESET_TOKEN_SECRET environment variable")
	}
	if c.SMTP.Host == "" {
		return fmt.Errorf("missing SMTP_HOST environment variable")
	}
	if c.SMTP.From == "" {
		return fmt.Errorf("missing SMTP_FROM environment variable")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("missing STORAGE_BUCKET environment variable")
	}
	if c.Verification.CodeExpiresIn <= 0 {
		return fmt.Errorf("VERIFICATION_CODE_EXPIRES_IN must be positive")
	}

	return nil
}
