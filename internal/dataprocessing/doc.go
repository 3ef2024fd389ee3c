// Package dataprocessing turns a time-study table into station metrics.
//
// The flow is one way:
//
//	ReadTable -> LoadTable -> Aggregate -> ResolveTakt / FindBottleneck -> FormatSummary
//
// ReadTable understands Excel workbooks (via excelize) and CSV files.
// LoadTable resolves the station, time and category columns by header name,
// infers the time unit and converts every duration to seconds. Aggregate
// groups the records per station in first-seen order.
//
// All functions are pure apart from file reads and logging; the values they
// return are not mutated afterwards.
package dataprocessing
