// Package http implements the HTTP handlers of the yamazumi service.
//
// Handlers stay thin: they parse the multipart upload, hand an
// AnalyzeRequest to the service layer and turn every failure into an
// RFC 7807 problem through errors.ErrorHandler.
//
// # Endpoints
//
//	POST /api/v1/yamazumi/report   multipart upload, JSON report
//	POST /api/v1/yamazumi/chart    multipart upload, PNG or SVG chart
//	GET  /api/health               service health
//	GET  /api/health/live          liveness with runtime details
//	GET  /api/version              build information
//
// # Upload fields
//
//	file    spreadsheet (.xlsx or .csv), required
//	unit    "minutes" or "seconds", optional
//	takt    takt time in minutes, optional
//	sheet   worksheet name, optional
//	format  "png" (default) or "svg", chart only
//
// Status codes follow the error type: unreadable input and bad parameters
// are 400, missing columns and empty sheets are 422, oversized uploads are
// 413.
package http
