package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "yamazumi/internal/errors"
)

// Config represents the complete application configuration.
//
// Values are layered: Default(), then the config file, then environment
// variables. Fields carry no envconfig defaults so an unset variable never
// clobbers a value from the file.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" toml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging" envconfig:"LOGGING"`
	Chart     ChartConfig     `yaml:"chart" toml:"chart" envconfig:"CHART"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry" envconfig:"TELEMETRY"`

	// Source is the config file that was applied, if any.
	Source string `yaml:"-" toml:"-" ignored:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" toml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" toml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" toml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" toml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" toml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" toml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" toml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
}

// Address returns host:port for http.Server.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" toml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" toml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" toml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" toml:"level" envconfig:"LEVEL"`
	Output      string `yaml:"output" toml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" toml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" toml:"development" envconfig:"DEVELOPMENT"`
}

// ChartConfig controls the rendered image.
type ChartConfig struct {
	WidthInches  float64 `yaml:"width_inches" toml:"width_inches" envconfig:"WIDTH_INCHES"`
	HeightInches float64 `yaml:"height_inches" toml:"height_inches" envconfig:"HEIGHT_INCHES"`
	DPI          float64 `yaml:"dpi" toml:"dpi" envconfig:"DPI"`
	Output       string  `yaml:"output" toml:"output" envconfig:"OUTPUT"`
}

// PixelSize returns the image size in pixels.
func (c ChartConfig) PixelSize() (int, int) {
	return int(c.WidthInches * c.DPI), int(c.HeightInches * c.DPI)
}

// TelemetryConfig controls tracing and metrics.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" toml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string `yaml:"environment" toml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string `yaml:"trace_exporter" toml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricsEnabled bool   `yaml:"metrics_enabled" toml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// Load builds the configuration. An explicit path must exist; without one
// the first file found in SearchPaths is used, and having none is fine.
func Load(path string) (*Config, error) {
	cfg := Default()

	configFile := path
	if configFile == "" {
		configFile = findConfigFile()
	} else if _, err := os.Stat(configFile); err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("config file %s not readable", configFile), err)
	}

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("path", configFile)
		}
		cfg.Source = configFile
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile decodes a YAML or TOML file over cfg. Keys absent from the
// file keep their current value.
func loadFromFile(filePath string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".toml":
		if _, err := toml.DecodeFile(filePath, cfg); err != nil {
			return fmt.Errorf("failed to decode toml: %w", err)
		}
		return nil
	case ".yaml", ".yml":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to decode yaml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(filePath))
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperrors.NewConfigError(fmt.Sprintf("invalid server port: %d", c.Server.Port), nil)
	}

	timeouts := map[string]time.Duration{
		"read_timeout":     c.Server.ReadTimeout,
		"write_timeout":    c.Server.WriteTimeout,
		"shutdown_timeout": c.Server.ShutdownTimeout,
		"request_timeout":  c.Server.RequestTimeout,
	}
	for name, d := range timeouts {
		if d <= 0 {
			return apperrors.NewConfigError(fmt.Sprintf("server %s must be positive", name), nil)
		}
	}

	if c.Server.MaxUploadBytes <= 0 {
		return apperrors.NewConfigError("server max_upload_bytes must be positive", nil)
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return apperrors.NewConfigError("rate limit rps and burst must be positive", nil)
	}

	if c.Chart.WidthInches <= 0 || c.Chart.HeightInches <= 0 {
		return apperrors.NewConfigError("chart dimensions must be positive", nil)
	}
	if c.Chart.DPI <= 0 {
		return apperrors.NewConfigError("chart dpi must be positive", nil)
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return apperrors.NewConfigError(fmt.Sprintf("invalid logging output %q", c.Logging.Output), nil)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFilePath
	}

	switch c.Telemetry.TraceExporter {
	case TraceExporterNone, TraceExporterStdout:
	default:
		return apperrors.NewConfigError(fmt.Sprintf("invalid trace exporter %q", c.Telemetry.TraceExporter), nil)
	}

	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RequestTimeout:  DefaultRequestTimeout,
			MaxUploadBytes:  DefaultMaxUploadBytes,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimitRPS,
				Burst:   DefaultRateLimitBurst,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Output:   DefaultLogOutput,
			FilePath: DefaultLogFilePath,
		},
		Chart: ChartConfig{
			WidthInches:  DefaultChartWidthInches,
			HeightInches: DefaultChartHeightInches,
			DPI:          DefaultChartDPI,
			Output:       DefaultChartOutput,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			Environment:    "development",
			TraceExporter:  TraceExporterNone,
			MetricsEnabled: true,
		},
	}
}
