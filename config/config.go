// config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port           string   `env:"PORT" envDefault:"5200"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	BodyLimitMB    int      `env:"BODY_LIMIT_MB" envDefault:"512"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL"`
	AutoMigrate    bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	DBLogLevel     string `env:"DB_LOG_LEVEL" envDefault:"warn"`

	// Auth: a token is accepted if any configured verifier accepts it.
	JWTSecret      string `env:"JWT_SECRET"`
	AuthServiceURL string `env:"AUTH_SERVICE_URL"`
	GatewayToken   string `env:"GATEWAY_TOKEN"`

	StartingBalance string `env:"STARTING_BALANCE" envDefault:"100.00"`
	SeedSampleData  bool   `env:"SEED_SAMPLE_DATA" envDefault:"true"`

	R2AccountID       string `env:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret string `env:"R2_ACCESS_KEY_SECRET"`
	R2Bucket          string `env:"R2_BUCKET_NAME"`
	CDNBaseURL        string `env:"CDN_BASE_URL"`
	UploadDir         string `env:"UPLOAD_DIR" envDefault:"uploads"`

	ProfileSyncURL      string        `env:"PROFILE_SYNC_URL"`
	ProfileSyncToken    string        `env:"PROFILE_SYNC_TOKEN"`
	ProfileSyncInterval time.Duration `env:"PROFILE_SYNC_INTERVAL" envDefault:"1m"`

	LedgerAuditInterval      time.Duration `env:"LEDGER_AUDIT_INTERVAL" envDefault:"10m"`
	TournamentStatusInterval time.Duration `env:"TOURNAMENT_STATUS_INTERVAL" envDefault:"1m"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return Parse()
}

// Parse builds a Config from the current process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field requirements env tags can't express.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL environment variable not set")
	}
	if c.JWTSecret == "" && c.AuthServiceURL == "" && c.GatewayToken == "" {
		return errors.New("one of JWT_SECRET, AUTH_SERVICE_URL or GATEWAY_TOKEN must be set")
	}
	if _, err := c.StartingBalanceDecimal(); err != nil {
		return err
	}
	if c.BodyLimitMB <= 0 {
		return fmt.Errorf("BODY_LIMIT_MB must be positive, got %d", c.BodyLimitMB)
	}
	return nil
}

// StartingBalanceDecimal returns STARTING_BALANCE as a non-negative decimal
// with at most two decimal places.
func (c *Config) StartingBalanceDecimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(c.StartingBalance))
	if err != nil {
		return decimal.Zero, fmt.Errorf("STARTING_BALANCE is not a number: %w", err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("STARTING_BALANCE must not be negative, got %s", d)
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Zero, fmt.Errorf("STARTING_BALANCE must have at most 2 decimal places, got %s", d)
	}
	return d, nil
}

// R2Enabled reports whether blob uploads should go to R2 instead of local disk.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != "" && c.R2Bucket != ""
}

// TrimmedOrigins returns ALLOWED_ORIGINS joined the way fiber's CORS config expects.
func (c *Config) TrimmedOrigins() string {
	out := make([]string, 0, len(c.AllowedOrigins))
	for _, o := range c.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return strings.Join(out, ",")
}
