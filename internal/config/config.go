package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Catalog    CatalogConfig    `yaml:"catalog" mapstructure:"catalog"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Taxonomy   TaxonomyConfig   `yaml:"taxonomy" mapstructure:"taxonomy"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// CatalogConfig holds catalog API endpoints and credentials.
type CatalogConfig struct {
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	AuthBaseURL  string `yaml:"auth_base_url" mapstructure:"auth_base_url"`
	Email        string `yaml:"email" mapstructure:"email"`
	Password     string `yaml:"password" mapstructure:"password"`
	EntityTypeID string `yaml:"entity_type_id" mapstructure:"entity_type_id"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// TaxonomyConfig configures vocabulary matching.
type TaxonomyConfig struct {
	AliasFile      string `yaml:"alias_file" mapstructure:"alias_file"`
	MissingLogPath string `yaml:"missing_log_path" mapstructure:"missing_log_path"`
}

// FetchConfig configures outbound page fetches.
type FetchConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	LeadsFile      string  `yaml:"leads_file" mapstructure:"leads_file"`
	LeadsPerSecond float64 `yaml:"leads_per_second" mapstructure:"leads_per_second"`
	MaxRetries     int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// StoreConfig configures the run journal.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("catalog.base_url", "http://localhost:3000/api")
	v.SetDefault("catalog.auth_base_url", "http://localhost:3000")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("taxonomy.missing_log_path", "missing_taxonomy.jsonl")
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("batch.leads_file", "leads.json")
	v.SetDefault("batch.leads_per_second", 0.5)
	v.SetDefault("batch.max_retries", 3)
	v.SetDefault("store.path", "ingest.db")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the credentials the pipeline needs before any external
// call is made. Missing credentials abort at startup rather than failing
// per lead.
func (c *Config) Validate() error {
	if c.Catalog.Email == "" || c.Catalog.Password == "" {
		return eris.New("config: catalog email and password are required")
	}
	if c.Catalog.EntityTypeID == "" {
		return eris.New("config: catalog entity_type_id is required")
	}
	if c.Perplexity.Key == "" {
		return eris.New("config: perplexity key is required")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
