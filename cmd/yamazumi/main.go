// Package main provides the CLI entrypoint for yamazumi.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"yamazumi/internal/app"
	"yamazumi/internal/chart"
	"yamazumi/internal/config"
	apperrors "yamazumi/internal/errors"
	"yamazumi/internal/exporter"
	"yamazumi/internal/infrastructure"
	"yamazumi/internal/services"
	"yamazumi/pkg/contracts"
	"yamazumi/pkg/contracts/domain"
)

// Process exit codes by error type.
const (
	exitOK         = 0
	exitFailure    = 1
	exitInput      = 2
	exitSchema     = 3
	exitValidation = 4
	exitEmptyInput = 5
)

type rootOptions struct {
	input      string
	output     string
	unit       string
	takt       float64
	sheet      string
	csvPath    string
	jsonPath   string
	xlsxPath   string
	table      bool
	configPath string
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "erro: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrTypeInput:
		return exitInput
	case apperrors.ErrTypeSchema:
		return exitSchema
	case apperrors.ErrTypeValidation:
		return exitValidation
	case apperrors.ErrTypeEmptyInput:
		return exitEmptyInput
	default:
		return exitFailure
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "yamazumi",
		Short:         "Yamazumi chart and takt summary from a line spreadsheet",
		Long:          "Reads station, time and category columns from an .xlsx or .csv file, stacks the\ntime per station by category and draws the takt line over the stations.",
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChart(cmd, opts, stdout, stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "input spreadsheet (.xlsx or .csv)")
	flags.StringVarP(&opts.output, "output", "o", "", "chart file (.png or .svg, default yamazumi.png)")
	flags.StringVarP(&opts.unit, "unit", "u", "", "time unit of the sheet: minutes or seconds")
	flags.Float64Var(&opts.takt, "takt", 0, "takt time in minutes (default: mean station total)")
	flags.StringVar(&opts.sheet, "sheet", "", "worksheet name (default: first sheet)")
	flags.StringVar(&opts.csvPath, "csv", "", "also write the station table as CSV")
	flags.StringVar(&opts.jsonPath, "json", "", "also write the full report as JSON")
	flags.StringVar(&opts.xlsxPath, "xlsx", "", "also write the station table as a workbook")
	flags.BoolVar(&opts.table, "table", false, "print the station table after the summary")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (.yaml or .toml)")
	_ = rootCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(newServeCmd(opts, stderr))
	rootCmd.AddCommand(newVersionCmd(stdout))

	return rootCmd
}

// session holds what one CLI run needs: config, logger and the service.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	service *services.YamazumiService
	close   func()
}

// newSession loads config, builds the stderr logger and wires the service.
// Metrics have no consumer in a one-shot run, so only tracing is set up.
func newSession(ctx context.Context, configPath string, stderr io.Writer) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	otelCfg := infrastructure.NewOTelConfig(cfg.Telemetry, contracts.Version)
	otelCfg.EnableMetrics = false
	otelCfg.SetGlobal = false
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		infrastructure.CloseLogFile()
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	return &session{
		cfg:     cfg,
		logger:  logger,
		service: services.NewYamazumiService(cfg.Chart, providers.Tracer, nil, logger),
		close: func() {
			if err := providers.Shutdown(context.WithoutCancel(ctx)); err != nil {
				logger.WarnContext(ctx, "telemetry shutdown failed", slog.String("error", err.Error()))
			}
			infrastructure.CloseLogFile()
		},
	}, nil
}

// taktMinutes returns the --takt value when the flag was given.
func taktMinutes(cmd *cobra.Command, value float64) *float64 {
	if !cmd.Flags().Changed("takt") {
		return nil
	}
	return &value
}

func runChart(cmd *cobra.Command, opts *rootOptions, stdout, stderr io.Writer) error {
	ctx := infrastructure.EnsureTraceID(cmd.Context())

	s, err := newSession(ctx, opts.configPath, stderr)
	if err != nil {
		return err
	}
	defer s.close()

	report, err := s.service.Analyze(ctx, services.AnalyzeRequest{
		Path:        opts.input,
		Sheet:       opts.sheet,
		Unit:        opts.unit,
		TaktMinutes: taktMinutes(cmd, opts.takt),
	})
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = s.cfg.Chart.Output
	}

	// The chart and every export are encoded first and committed together,
	// so a failing export leaves no chart behind.
	bundle := exporter.NewBundle(s.logger)
	format := chart.FormatForPath(output)
	if err := bundle.Add("chart", output, func(w io.Writer) error {
		return s.service.RenderChart(ctx, report, w, format)
	}); err != nil {
		return err
	}
	if err := addExports(bundle, opts, report); err != nil {
		return err
	}
	if err := bundle.Commit(ctx); err != nil {
		return err
	}

	for _, line := range report.Lines {
		fmt.Fprintln(stdout, line)
	}
	if opts.table {
		fmt.Fprintln(stdout)
		if err := exporter.NewConsoleTable(stdout).Render(report); err != nil {
			return err
		}
	}
	fmt.Fprintf(stdout, "Gráfico salvo em %s\n", output)

	s.logger.InfoContext(ctx, "chart generated",
		slog.String("input", opts.input),
		slog.String("output", output),
		slog.String("format", string(format)),
		slog.Int("stations", len(report.Stations)),
		slog.Float64("takt_seconds", report.TaktSeconds),
	)
	return nil
}

func addExports(bundle *exporter.Bundle, opts *rootOptions, report *domain.Report) error {
	if opts.csvPath != "" {
		if err := bundle.AddStationsCSV(opts.csvPath, report); err != nil {
			return err
		}
	}
	if opts.jsonPath != "" {
		if err := bundle.AddReportJSON(opts.jsonPath, report); err != nil {
			return err
		}
	}
	if opts.xlsxPath != "" {
		if err := bundle.AddStationsXLSX(opts.xlsxPath, report); err != nil {
			return err
		}
	}
	return nil
}

func newServeCmd(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chart and report API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			logger, err := infrastructure.InitializeLogger(cfg.Logging, stderr)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer infrastructure.CloseLogFile()

			application, err := app.NewApplication(cfg, logger)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "listen port")

	return cmd
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintln(stdout, contracts.GetFullVersionString())
		},
	}
}
