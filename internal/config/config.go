package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the application configuration.
type Config struct {
	DBPath  string        `yaml:"db"      env:"CODELIO_DB"`
	Catalog CatalogConfig `yaml:"catalog"`
	Solved  SolvedConfig  `yaml:"solved"`
	Log     LogConfig     `yaml:"log"`
	Remote  RemoteConfig  `yaml:"remote"`
	Auth    AuthConfig    `yaml:"auth"`
}

// CatalogConfig selects the question feed.
type CatalogConfig struct {
	Source  string        `yaml:"source"  env:"CODELIO_CATALOG"`
	Timeout time.Duration `yaml:"timeout" env:"CODELIO_CATALOG_TIMEOUT" env-default:"10s"`
}

// SolvedConfig tunes solved-state persistence.
type SolvedConfig struct {
	WriteTimeout time.Duration `yaml:"write_timeout" env:"CODELIO_WRITE_TIMEOUT" env-default:"5s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"CODELIO_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"CODELIO_LOG_FORMAT" env-default:"json"`
	File   string `yaml:"file"   env:"CODELIO_LOG_FILE"`
}

// RemoteConfig points at the DynamoDB table holding signed-in users'
// progress.
type RemoteConfig struct {
	Table    string `yaml:"table"    env:"CODELIO_USERS_TABLE"       env-default:"codelio-users"`
	Region   string `yaml:"region"   env:"CODELIO_AWS_REGION"`
	Endpoint string `yaml:"endpoint" env:"CODELIO_DYNAMODB_ENDPOINT"`
}

// AuthConfig holds token verification settings.
type AuthConfig struct {
	Secret string `yaml:"secret" env:"CODELIO_AUTH_SECRET"`
	Issuer string `yaml:"issuer" env:"CODELIO_AUTH_ISSUER" env-default:"codelio"`
	Token  string `yaml:"token"  env:"CODELIO_TOKEN"`
}

// Load reads configuration from the YAML file at path, when given, and
// then from the environment. Environment values win over the file.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks values that tags cannot express.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console (got %q)", c.Log.Format)
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("catalog.timeout must be > 0 (got %v)", c.Catalog.Timeout)
	}
	if c.Solved.WriteTimeout <= 0 {
		return fmt.Errorf("solved.write_timeout must be > 0 (got %v)", c.Solved.WriteTimeout)
	}
	if c.Remote.Table == "" {
		return fmt.Errorf("remote.table must not be empty")
	}
	return nil
}

// AuthEnabled reports whether tokens can be verified.
func (c *Config) AuthEnabled() bool {
	return c.Auth.Secret != ""
}
