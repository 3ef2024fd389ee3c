// Package app wires the yamazumi HTTP service: configuration, logging,
// telemetry, services, handlers and the server lifecycle.
//
// # Routes
//
//	GET  /metrics                    Prometheus scrape (when metrics are enabled)
//	GET  /api/health                 health
//	GET  /api/health/live            liveness
//	GET  /api/version                build information
//	POST /api/v1/yamazumi/report     JSON report from an uploaded sheet
//	POST /api/v1/yamazumi/chart      chart image from an uploaded sheet
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM. In-flight requests get
// server.shutdown_timeout to finish, then telemetry is flushed.
// Errors are returned to the caller; the package never calls os.Exit.
package app
