package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

const (
	DefaultPort          = 5176
	DefaultSQLitePath    = "rtvote.db"
	DefaultTokenTTL      = 24 * time.Hour
	DefaultVoteTimeout   = 5 * time.Second
	DefaultAdminNIK      = "1234567890123456"
	DefaultAdminName     = "Admin"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	minTokenSecretLength = 16
)

type Config struct {
	Port         int    `yaml:"port"         envconfig:"PORT"`
	DatabaseURL  string `yaml:"databaseUrl"  envconfig:"DATABASE_URL"`
	DatabaseType string `yaml:"databaseType" envconfig:"DATABASE_TYPE"`

	// Secrets (prefer env variables, but allow CLI for dev)
	TokenSecret string `yaml:"tokenSecret" envconfig:"TOKEN_SECRET"`
	IPHashSalt  string `yaml:"ipHashSalt"  envconfig:"IP_HASH_SALT"`

	TokenTTL    time.Duration `yaml:"tokenTTL"    envconfig:"TOKEN_TTL"`
	VoteTimeout time.Duration `yaml:"voteTimeout" envconfig:"VOTE_TIMEOUT"`

	// Bootstrap admin, created when the voters table holds no admin
	AdminNIK      string `yaml:"adminNik"      envconfig:"ADMIN_NIK"`
	AdminName     string `yaml:"adminName"     envconfig:"ADMIN_NAME"`
	AdminPassword string `yaml:"adminPassword" envconfig:"ADMIN_PASSWORD"`

	AllowedOrigins []string `yaml:"allowedOrigins" envconfig:"ALLOWED_ORIGINS"`

	// Honour X-Forwarded-For / X-Real-IP; only safe behind a proxy that sets them
	TrustProxy bool `yaml:"trustProxy" envconfig:"TRUST_PROXY"`

	LogLevel       string   `yaml:"logLevel"       envconfig:"LOG_LEVEL"`
	LogFormat      string   `yaml:"logFormat"      envconfig:"LOG_FORMAT"`
}

// Default returns a Config populated with built-in defaults only
func Default() Config {
	return Config{
		Port:         DefaultPort,
		DatabaseType: DatabaseSQLite,
		TokenTTL:     DefaultTokenTTL,
		VoteTimeout:  DefaultVoteTimeout,
		AdminNIK:     DefaultAdminNIK,
		AdminName:    DefaultAdminName,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
	}
}

// ParseFlags builds the configuration from (lowest to highest precedence)
// defaults, an optional YAML file, environment variables and CLI flags.
func ParseFlags(args []string) (Config, error) {
	var (
		configPath   string
		port         int
		databaseURL  string
		databaseType string
		tokenSecret  string
		logLevel     string
		trustProxy   bool
	)

	fs := flag.NewFlagSet("rtvote", flag.ContinueOnError)

	fs.StringVar(&configPath, "config", "", "Path to YAML config file")

	// Network config (can be CLI args or env)
	fs.IntVar(&port, "p", 0, "Server port")
	fs.StringVar(&databaseURL, "d", "", "Database URL (postgres DSN or sqlite path)")
	fs.StringVar(&databaseType, "t", "", "Database type (sqlite or postgres)")

	fs.StringVar(&tokenSecret, "token-secret", "", "Session token signing secret (prefer env)")
	fs.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&trustProxy, "trust-proxy", false, "Trust X-Forwarded-For from a reverse proxy")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()

	if configPath == "" {
		configPath = os.Getenv("RTVOTE_CONFIG")
	}
	if configPath != "" {
		if err := loadFile(configPath, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}

	// CLI flags win over everything else, but only when given
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			cfg.Port = port
		case "d":
			cfg.DatabaseURL = databaseURL
		case "t":
			cfg.DatabaseType = databaseType
		case "token-secret":
			cfg.TokenSecret = tokenSecret
		case "log-level":
			cfg.LogLevel = logLevel
		case "trust-proxy":
			cfg.TrustProxy = trustProxy
		}
	})

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	switch c.DatabaseType {
	case DatabaseSQLite:
		if c.DatabaseURL == "" {
			c.DatabaseURL = DefaultSQLitePath
		}
	case DatabasePostgres:
		if c.DatabaseURL == "" {
			return errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
	default:
		return fmt.Errorf("unsupported database type %q", c.DatabaseType)
	}

	// Secrets - MUST be provided
	if c.TokenSecret == "" {
		return errors.New("TOKEN_SECRET required")
	}
	if len(c.TokenSecret) < minTokenSecretLength {
		return fmt.Errorf("TOKEN_SECRET must be at least %d characters", minTokenSecretLength)
	}
	if c.IPHashSalt == "" {
		c.IPHashSalt = c.TokenSecret // Reuse token secret for IP hashing
	}

	if c.TokenTTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	if c.VoteTimeout <= 0 {
		return errors.New("vote timeout must be positive")
	}

	return nil
}
