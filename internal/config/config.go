package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
	AuthJWTSecret  string   `mapstructure:"AUTH_JWT_SECRET"`
	MaxUploadBytes string   `mapstructure:"MAX_UPLOAD_BYTES"`

	// Trading-partner identity stamped into generated interchange envelopes.
	EDISubmitterID   string `mapstructure:"EDI_SUBMITTER_ID"`
	EDISubmitterName string `mapstructure:"EDI_SUBMITTER_NAME"`
	EDIReceiverID    string `mapstructure:"EDI_RECEIVER_ID"`
	EDIReceiverName  string `mapstructure:"EDI_RECEIVER_NAME"`

	ClearinghouseURL    string `mapstructure:"CLEARINGHOUSE_URL"`
	ClearinghouseAPIKey string `mapstructure:"CLEARINGHOUSE_API_KEY"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("MAX_UPLOAD_BYTES", "4M")
	v.SetDefault("EDI_SUBMITTER_NAME", "CLAIMLINK")
	v.SetDefault("EDI_RECEIVER_NAME", "CLEARINGHOUSE")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("AUTH_JWT_SECRET")
	v.BindEnv("MAX_UPLOAD_BYTES")
	v.BindEnv("EDI_SUBMITTER_ID")
	v.BindEnv("EDI_SUBMITTER_NAME")
	v.BindEnv("EDI_RECEIVER_ID")
	v.BindEnv("EDI_RECEIVER_NAME")
	v.BindEnv("CLEARINGHOUSE_URL")
	v.BindEnv("CLEARINGHOUSE_API_KEY")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: Bearer-token authentication is bypassed for all requests.")
		log.Println("WARNING: Set ENV=production and AUTH_JWT_SECRET before going live.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ClearinghouseEnabled reports whether outbound submission is configured.
// Without a URL the claims service generates documents but never submits.
func (c *Config) ClearinghouseEnabled() bool {
	return c.ClearinghouseURL != ""
}

// Validate checks that the configuration is safe to run. Outside development
// mode a JWT secret is mandatory, and a configured clearinghouse requires an
// API key so submissions are never sent unauthenticated.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthJWTSecret == "" {
		return fmt.Errorf(
			"AUTH_JWT_SECRET must be set when ENV=%q. "+
				"Refusing to start without authentication configuration", c.Env)
	}
	if c.ClearinghouseURL != "" && c.ClearinghouseAPIKey == "" {
		return fmt.Errorf("CLEARINGHOUSE_API_KEY is required when CLEARINGHOUSE_URL is set")
	}
	if c.IsProduction() {
		if c.EDISubmitterID == "" {
			return fmt.Errorf("EDI_SUBMITTER_ID is required in production")
		}
		if c.EDIReceiverID == "" {
			return fmt.Errorf("EDI_RECEIVER_ID is required in production")
		}
	}
	return nil
}
