package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"corpusview/internal/domain"
)

const configPathEnv = "CORPUSVIEW_CONFIG"

// Config holds high-level settings required across the application.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Source   SourceConfig   `yaml:"source"`
	Bundle   BundleConfig   `yaml:"bundle"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Topics   TopicsConfig   `yaml:"topics"`
	Output   OutputConfig   `yaml:"output"`
	View     ViewConfig     `yaml:"view"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SourceConfig names the bundle source to load from: file, http or sql.
type SourceConfig struct {
	Kind string `yaml:"kind"`
}

// BundleConfig describes an uploaded bundle file and its preprocessing.
type BundleConfig struct {
	Path        string `yaml:"path"`
	StripMarkup bool   `yaml:"stripMarkup"`
}

// HTTPConfig describes where a published bundle can be downloaded.
type HTTPConfig struct {
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// DatabaseConfig describes the extraction database connection.
type DatabaseConfig struct {
	Driver string       `yaml:"driver"`
	DSN    string       `yaml:"dsn"`
	Tables TablesConfig `yaml:"tables"`
}

// TablesConfig overrides the default table names; empty means default.
type TablesConfig struct {
	Articles         string `yaml:"articles"`
	Events           string `yaml:"events"`
	Topics           string `yaml:"topics"`
	ArticlesTopics   string `yaml:"articlesTopics"`
	Entities         string `yaml:"entities"`
	ArticlesEntities string `yaml:"articlesEntities"`
}

// TopicsConfig carries the reserved no-topic id.
type TopicsConfig struct {
	NoTopicID string `yaml:"noTopicId"`
}

// OutputConfig says where the derived view goes; "-" is stdout.
type OutputConfig struct {
	Path string `yaml:"path"`
}

type envOverrides struct {
	Source      string        `env:"CORPUSVIEW_SOURCE"`
	BundlePath  string        `env:"CORPUSVIEW_BUNDLE_PATH"`
	StripMarkup *bool         `env:"CORPUSVIEW_STRIP_MARKUP"`
	BundleURL   string        `env:"CORPUSVIEW_BUNDLE_URL"`
	BundleToken string        `env:"CORPUSVIEW_BUNDLE_TOKEN"`
	HTTPTimeout time.Duration `env:"CORPUSVIEW_HTTP_TIMEOUT"`
	DBDriver    string        `env:"DATABASE_DRIVER"`
	DBDSN       string        `env:"DATABASE_DSN"`
	LogLevel    string        `env:"CORPUSVIEW_LOG_LEVEL"`
	LogFormat   string        `env:"CORPUSVIEW_LOG_FORMAT"`
	Output      string        `env:"CORPUSVIEW_OUTPUT"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	return load(os.Getenv(configPathEnv))
}

func load(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if fileCfg, err := readFile(path); err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		log.Printf("config: %v (ignoring environment overrides)", err)
	}

	return cfg
}

func readFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return fileCfg, nil
}

func (c *Config) applyEnvOverrides() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.Source != "" {
		c.Source.Kind = o.Source
	}
	if o.BundlePath != "" {
		c.Bundle.Path = o.BundlePath
	}
	if o.StripMarkup != nil {
		c.Bundle.StripMarkup = *o.StripMarkup
	}
	if o.BundleURL != "" {
		c.HTTP.URL = o.BundleURL
	}
	if o.BundleToken != "" {
		c.HTTP.Token = o.BundleToken
	}
	if o.HTTPTimeout > 0 {
		c.HTTP.Timeout = o.HTTPTimeout
	}
	if o.DBDriver != "" {
		c.Database.Driver = o.DBDriver
	}
	if o.DBDSN != "" {
		c.Database.DSN = o.DBDSN
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Logging.Format = o.LogFormat
	}
	if o.Output != "" {
		c.Output.Path = o.Output
	}
	return nil
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Source.Kind != "" {
		base.Source.Kind = override.Source.Kind
	}

	if override.Bundle.Path != "" {
		base.Bundle.Path = override.Bundle.Path
	}
	base.Bundle.StripMarkup = base.Bundle.StripMarkup || override.Bundle.StripMarkup

	if override.HTTP.URL != "" {
		base.HTTP.URL = override.HTTP.URL
	}
	if override.HTTP.Token != "" {
		base.HTTP.Token = override.HTTP.Token
	}
	if override.HTTP.Timeout > 0 {
		base.HTTP.Timeout = override.HTTP.Timeout
	}

	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	base.Database.Tables = override.Database.Tables

	if override.Topics.NoTopicID != "" {
		base.Topics.NoTopicID = override.Topics.NoTopicID
	}

	if override.Output.Path != "" {
		base.Output.Path = override.Output.Path
	}

	base.View = override.View

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Source:   SourceConfig{Kind: "file"},
		Bundle:   BundleConfig{Path: "bundle.json"},
		HTTP:     HTTPConfig{Timeout: 30 * time.Second},
		Database: DatabaseConfig{Driver: "sqlite"},
		Topics:   TopicsConfig{NoTopicID: domain.NoTopicID},
		Output:   OutputConfig{Path: "-"},
	}
}
