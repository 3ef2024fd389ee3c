// Package services implements the business logic layer of the Yamazumi tool.
// It sits between the CLI or HTTP handlers and the dataprocessing and chart
// packages, and owns the cross-cutting concerns of a run.
//
// # Yamazumi pipeline
//
// YamazumiService.Analyze runs one analysis:
//
//	load       read and normalize the table (span "load")
//	aggregate  group by station, resolve takt and bottleneck (span "aggregate")
//
// and returns a domain.Report. RenderChart draws that report (span
// "render"). Every run is counted by outcome and error type.
//
// # Common Service Pattern
//
//	func NewServiceName(deps ..., logger *slog.Logger) *ServiceName
//
// A nil logger falls back to slog.Default(); nil telemetry falls back to
// no-op tracers and skips metrics.
package services
