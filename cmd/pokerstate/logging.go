package main

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

func setupLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
}

func debugLevel(debug bool) log.Level {
	if debug {
		return log.DebugLevel
	}
	return log.InfoLevel
}

func stderrLogger(debug bool) *log.Logger {
	return setupLogger(os.Stderr, debugLevel(debug))
}
