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
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Analyzer  AnalyzerConfig  `yaml:"analyzer" mapstructure:"analyzer"`
	Routing   RoutingConfig   `yaml:"routing" mapstructure:"routing"`
	Retry     RetryConfig     `yaml:"retry" mapstructure:"retry"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings for the AI judge.
type AnthropicConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	Model             string  `yaml:"model" mapstructure:"model"`
	MaxTokens         int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// AnalyzerConfig configures the rule+AI screening module.
type AnalyzerConfig struct {
	// Provider selects the AI judge: "anthropic" or "none".
	Provider            string  `yaml:"provider" mapstructure:"provider"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
	MaxAIAnalysis       int     `yaml:"max_ai_analysis" mapstructure:"max_ai_analysis"`
	// CatalogPath and RulesPath override the embedded signal catalogs and
	// rule dictionary.
	CatalogPath string `yaml:"catalog_path" mapstructure:"catalog_path"`
	RulesPath   string `yaml:"rules_path" mapstructure:"rules_path"`
}

// RoutingConfig holds the dispatcher defaults.
type RoutingConfig struct {
	Parallel        bool `yaml:"parallel" mapstructure:"parallel"`
	TimeoutMs       int  `yaml:"timeout_ms" mapstructure:"timeout_ms"`
	ContinueOnError bool `yaml:"continue_on_error" mapstructure:"continue_on_error"`
}

// RetryConfig configures retries of AI judge calls.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Judge providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ADSCREEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 512)
	v.SetDefault("anthropic.requests_per_second", 2.0)
	v.SetDefault("anthropic.burst", 1)
	v.SetDefault("analyzer.provider", ProviderNone)
	v.SetDefault("analyzer.confidence_threshold", 0.7)
	v.SetDefault("analyzer.max_ai_analysis", 5)
	v.SetDefault("analyzer.catalog_path", "")
	v.SetDefault("analyzer.rules_path", "")
	v.SetDefault("routing.parallel", true)
	v.SetDefault("routing.timeout_ms", 30000)
	v.SetDefault("routing.continue_on_error", true)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 10000)

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

// Validate checks the settings a command needs. Mode is "screen" or "serve".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "screen":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Analyzer.Provider {
	case ProviderNone, "":
	case ProviderAnthropic:
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required when analyzer.provider is anthropic")
		}
		if c.Anthropic.Model == "" {
			problems = append(problems, "anthropic.model is required when analyzer.provider is anthropic")
		}
	default:
		problems = append(problems, "analyzer.provider must be anthropic or none")
	}

	if c.Analyzer.ConfidenceThreshold < 0 || c.Analyzer.ConfidenceThreshold > 1 {
		problems = append(problems, "analyzer.confidence_threshold must be between 0 and 1")
	}
	if c.Analyzer.MaxAIAnalysis < 0 || c.Analyzer.MaxAIAnalysis > 50 {
		problems = append(problems, "analyzer.max_ai_analysis must be between 0 and 50")
	}
	if c.Routing.TimeoutMs <= 0 {
		problems = append(problems, "routing.timeout_ms must be > 0")
	}
	if c.Anthropic.RequestsPerSecond < 0 {
		problems = append(problems, "anthropic.requests_per_second must be >= 0")
	}
	if c.Retry.MaxAttempts < 0 {
		problems = append(problems, "retry.max_attempts must be >= 0")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
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
