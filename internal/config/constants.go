package config

import "time"

// Application constants
const (
	AppName = "yamazumi"

	// EnvPrefix namespaces every environment variable, e.g. YAMAZUMI_SERVER_PORT.
	EnvPrefix = "YAMAZUMI"

	// Chart defaults: 16x8 inches at 300 DPI.
	DefaultChartWidthInches  = 16.0
	DefaultChartHeightInches = 8.0
	DefaultChartDPI          = 300.0
	DefaultChartOutput       = "yamazumi.png"

	// Server defaults
	DefaultPort            = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 45 * time.Second
	DefaultMaxUploadBytes  = 32 << 20

	// Rate limiting
	DefaultRateLimitRPS   = 10
	DefaultRateLimitBurst = 20

	// Logging
	DefaultLogLevel    = "info"
	DefaultLogOutput   = "console"
	DefaultLogFilePath = "logs/yamazumi.log"
)

// Telemetry trace exporters
const (
	TraceExporterNone   = "none"
	TraceExporterStdout = "stdout"
)
