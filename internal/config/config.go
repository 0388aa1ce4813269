package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration. It is loaded once at process
// start and treated as read-only afterwards; components receive the sections
// they need at construction time.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metadata  MetadataConfig  `mapstructure:"metadata"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Recommend RecommendConfig `mapstructure:"recommend"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
}

// MetadataConfig holds metadata provider configuration.
type MetadataConfig struct {
	TMDB TMDBConfig `mapstructure:"tmdb"`
}

// TMDBConfig holds TMDB API configuration.
type TMDBConfig struct {
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"`
	ImageBaseURL  string `mapstructure:"image_base_url"`
	Timeout       int    `mapstructure:"timeout"` // seconds
	DefaultRegion string `mapstructure:"default_region"`
}

// GeneratorConfig holds the text-generation service configuration.
type GeneratorConfig struct {
	APIKey  string   `mapstructure:"api_key"`
	BaseURL string   `mapstructure:"base_url"`
	Timeout int      `mapstructure:"timeout"` // seconds
	Models  []string `mapstructure:"models"`  // candidate order, first is preferred
}

// RecommendConfig holds recommendation engine tuning knobs.
type RecommendConfig struct {
	FreshnessHours  int    `mapstructure:"freshness_hours"`
	TrendingLimit   int    `mapstructure:"trending_limit"`
	DiscoveryLimit  int    `mapstructure:"discovery_limit"`
	LookupWorkers   int    `mapstructure:"lookup_workers"`
	DefaultAILimit  int    `mapstructure:"default_ai_limit"`
	DefaultAIPolicy string `mapstructure:"default_ai_policy"` // unlimited, daily, weekly
}

// Default returns a Config with default values.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.streamwise")
	}

	v.SetEnvPrefix("STREAMWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; env vars and defaults are enough to run.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("database.path", "./data/streamwise.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")

	v.SetDefault("metadata.tmdb.api_key", "")
	v.SetDefault("metadata.tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("metadata.tmdb.image_base_url", "https://image.tmdb.org/t/p")
	v.SetDefault("metadata.tmdb.timeout", 10)
	v.SetDefault("metadata.tmdb.default_region", "US")

	v.SetDefault("generator.api_key", "")
	v.SetDefault("generator.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("generator.timeout", 45)
	v.SetDefault("generator.models", []string{
		"gemini-2.5-flash",
		"gemini-2.0-flash",
		"gemini-1.5-flash",
		"gemini-flash-latest",
		"gemini-pro-latest",
	})

	v.SetDefault("recommend.freshness_hours", 24)
	v.SetDefault("recommend.trending_limit", 15)
	v.SetDefault("recommend.discovery_limit", 10)
	v.SetDefault("recommend.lookup_workers", 10)
	v.SetDefault("recommend.default_ai_limit", 5)
	v.SetDefault("recommend.default_ai_policy", "daily")
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
