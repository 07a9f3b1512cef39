// Package config provides configuration management for the arXiv trends service.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/aegisml/arxiv-trends-service/internal/domain"
)

// Config holds all configuration for the arXiv trends service.
type Config struct {
	// Server contains artifact server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// ArXiv contains arXiv API client settings.
	ArXiv ArXivConfig `mapstructure:"arxiv"`
	// Pipeline contains aggregation pipeline settings.
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	// Artifacts contains artifact directory settings.
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
}

// ServerConfig holds artifact server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// Port is the HTTP server port (default: 8080).
	Port int `mapstructure:"port" validate:"gt=0,lte=65535"`
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for the metrics endpoint.
	Path string `mapstructure:"path"`
}

// ArXivConfig holds arXiv API client configuration.
type ArXivConfig struct {
	// BaseURL is the arXiv API base URL.
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	// Timeout is the timeout for a single API call.
	Timeout time.Duration `mapstructure:"timeout"`
	// RequestInterval is the pacing delay between paginated requests.
	RequestInterval time.Duration `mapstructure:"request_interval"`
	// BurstSize is the token bucket burst size for the rate limiter.
	BurstSize int `mapstructure:"burst_size" validate:"gte=1"`
	// PageSize is the number of results requested per page.
	PageSize int `mapstructure:"page_size" validate:"gt=0,lte=2000"`
	// MaxRetries is the maximum number of retries for a failed request.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0"`
	// RetryDelay is the base delay between retries; the Retry-After header
	// takes precedence when the source provides one.
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `mapstructure:"user_agent"`
}

// PipelineConfig holds aggregation pipeline configuration.
type PipelineConfig struct {
	// Categories is the list of arXiv categories to monitor.
	Categories []string `mapstructure:"categories" validate:"min=1,dive,required"`
	// SafetyTerms is the ordered safety vocabulary used for classification.
	SafetyTerms []string `mapstructure:"safety_terms" validate:"min=1,dive,required"`
	// DaysToFetch is the incremental window size in days.
	DaysToFetch int `mapstructure:"days_to_fetch" validate:"gt=0"`
	// MaxResults caps records fetched by one incremental run.
	MaxResults int `mapstructure:"max_results" validate:"gt=0"`
	// MonthsToFetch is the default number of months for a backfill.
	MonthsToFetch int `mapstructure:"months_to_fetch" validate:"gt=0"`
	// MaxResultsPerMonth caps records fetched for a single month.
	MaxResultsPerMonth int `mapstructure:"max_results_per_month" validate:"gt=0"`
	// BatchSize bounds in-memory record accumulation during a backfill.
	BatchSize int `mapstructure:"batch_size" validate:"gt=0"`
	// PauseBetweenMonths is the pause between month-level fetch cycles.
	PauseBetweenMonths time.Duration `mapstructure:"pause_between_months" validate:"gte=0"`
	// KeywordLimit caps each keyword ranking.
	KeywordLimit int `mapstructure:"keyword_limit" validate:"gt=0"`
}

// ArtifactsConfig holds artifact directory configuration.
type ArtifactsConfig struct {
	// DataDir is the directory artifacts are written to.
	DataDir string `mapstructure:"data_dir" validate:"required"`
	// ServingDir is the directory artifacts are published to for serving.
	ServingDir string `mapstructure:"serving_dir" validate:"required"`
}

// Address returns the HTTP server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load loads configuration from environment variables and an optional config
// file. When configFile is non-empty it names the file to read; otherwise
// the usual search paths are tried and a missing file is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("TRENDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if present
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/arxiv-trends-service")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// Config file not found is OK, we'll use env vars and defaults
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// arXiv client defaults. The request interval keeps one request per
	// three seconds, which is what the API's usage policy asks for.
	v.SetDefault("arxiv.base_url", "https://export.arxiv.org/api")
	v.SetDefault("arxiv.timeout", "30s")
	v.SetDefault("arxiv.request_interval", "3s")
	v.SetDefault("arxiv.burst_size", 1)
	v.SetDefault("arxiv.page_size", 100)
	v.SetDefault("arxiv.max_retries", 5)
	v.SetDefault("arxiv.retry_delay", "3s")
	v.SetDefault("arxiv.user_agent", "arxiv-trends-service/1.0")

	// Pipeline defaults
	v.SetDefault("pipeline.categories", domain.DefaultCategories)
	v.SetDefault("pipeline.safety_terms", domain.DefaultSafetyTerms)
	v.SetDefault("pipeline.days_to_fetch", 7)
	v.SetDefault("pipeline.max_results", 1000)
	v.SetDefault("pipeline.months_to_fetch", 6)
	v.SetDefault("pipeline.max_results_per_month", 2000)
	v.SetDefault("pipeline.batch_size", 500)
	v.SetDefault("pipeline.pause_between_months", "5s")
	v.SetDefault("pipeline.keyword_limit", 100)

	// Artifact defaults
	v.SetDefault("artifacts.data_dir", "data")
	v.SetDefault("artifacts.serving_dir", "frontend/public/data")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return fmt.Errorf("config is not validatable: %w", err)
		}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid %s: failed %q constraint", fe.Namespace(), fe.Tag())
		}
		return err
	}

	// Cross-field checks the struct tags cannot express.
	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Pipeline.BatchSize > c.Pipeline.MaxResultsPerMonth {
		return fmt.Errorf("batch_size (%d) must be <= max_results_per_month (%d)",
			c.Pipeline.BatchSize, c.Pipeline.MaxResultsPerMonth)
	}

	if c.Artifacts.DataDir == c.Artifacts.ServingDir {
		return fmt.Errorf("data_dir and serving_dir must differ, both are %q", c.Artifacts.DataDir)
	}

	return nil
}
