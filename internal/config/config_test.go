package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "yamazumi/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// isolate keeps discovered config files and the real XDG home out of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "yamazumi.png", cfg.Chart.Output)

	w, h := cfg.Chart.PixelSize()
	assert.Equal(t, 4800, w)
	assert.Equal(t, 2400, h)
	assert.Equal(t, TraceExporterNone, cfg.Telemetry.TraceExporter)
}

func TestLoad_NoFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Empty(t, cfg.Source)
	assert.Equal(t, Default().Server, cfg.Server)
}

func TestLoad_YAML(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "custom.yaml", `
server:
  port: 9090
  request_timeout: 10s
chart:
  dpi: 100
logging:
  level: debug
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 100.0, cfg.Chart.DPI)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched keys keep their defaults
	assert.Equal(t, DefaultChartWidthInches, cfg.Chart.WidthInches)
	assert.Equal(t, DefaultReadTimeout, cfg.Server.ReadTimeout)
}

func TestLoad_TOML(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "custom.toml", `
[chart]
width_inches = 8.0
height_inches = 4.0
output = "out/line.svg"

[telemetry]
trace_exporter = "stdout"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	w, h := cfg.Chart.PixelSize()
	assert.Equal(t, 2400, w)
	assert.Equal(t, 1200, h)
	assert.Equal(t, "out/line.svg", cfg.Chart.Output)
	assert.Equal(t, TraceExporterStdout, cfg.Telemetry.TraceExporter)
}

func TestLoad_DiscoversXDGConfig(t *testing.T) {
	dir := isolate(t)
	xdgDir := filepath.Join(dir, "xdg", "yamazumi")
	require.NoError(t, os.MkdirAll(xdgDir, 0o755))
	writeFile(t, xdgDir, "config.toml", "[server]\nport = 7070\n")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, filepath.Join(xdgDir, "config.toml"), cfg.Source)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "custom.yaml", "server:\n  port: 9090\nchart:\n  dpi: 150\n")
	t.Setenv("YAMAZUMI_SERVER_PORT", "9191")
	t.Setenv("YAMAZUMI_SECURITY_RATE_LIMIT_ENABLED", "false")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 150.0, cfg.Chart.DPI)
	assert.False(t, cfg.Security.RateLimit.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		env     map[string]string
	}{
		{name: "missing explicit file", file: ""},
		{name: "unsupported extension", file: "config.ini", content: "port=1"},
		{name: "malformed yaml", file: "bad.yaml", content: "server: [port"},
		{name: "invalid port", file: "port.yaml", content: "server:\n  port: 70000\n"},
		{name: "zero dpi", file: "dpi.toml", content: "[chart]\ndpi = 0.0\n"},
		{name: "bad env value", file: "ok.yaml", content: "server:\n  port: 1\n", env: map[string]string{"YAMAZUMI_SERVER_PORT": "abc"}},
		{name: "unknown trace exporter", file: "otel.yaml", content: "telemetry:\n  trace_exporter: jaeger\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(dir, "does-not-exist.yaml")
			if tt.file != "" {
				path = writeFile(t, dir, tt.file, tt.content)
			}

			cfg, err := Load(path)

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))
		})
	}
}

func TestValidate_FillsLogFilePath(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "both"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultLogFilePath, cfg.Logging.FilePath)
}

func TestServerConfig_Address(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8080", ServerConfig{Host: "127.0.0.1", Port: 8080}.Address())
	assert.Equal(t, ":9000", ServerConfig{Port: 9000}.Address())
}

func TestXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	assert.Equal(t, "/tmp/xdg-test", XDGConfigHome())
	assert.Equal(t, filepath.Join("/tmp/xdg-test", "yamazumi", "config.toml"), DefaultConfigPath())
}
