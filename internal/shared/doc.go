// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a capturing slog handler and builders
// for the workbook and CSV time studies the loader tests read.
package shared
