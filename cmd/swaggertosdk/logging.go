// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// logLevel maps the verbosity flags: warnings by default, info with
// --verbose, debug with --debug.
func logLevel(verbose, debug bool) log.Level {
	switch {
	case debug:
		return log.DebugLevel
	case verbose:
		return log.InfoLevel
	default:
		return log.WarnLevel
	}
}

// setupLogging installs a charmbracelet/log logger writing to w as the slog
// default handler, so library packages logging through slog share its format.
func setupLogging(w io.Writer, verbose, debug bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "swaggertosdk",
		Level:           logLevel(verbose, debug),
		ReportTimestamp: debug,
	})
	slog.SetDefault(slog.New(logger))
	return logger
}
