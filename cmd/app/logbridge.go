package main

import (
	"log/slog"

	slogrus "github.com/samber/slog-logrus/v2"
	"github.com/sirupsen/logrus"
)

// newSlogLogger lets the internal packages log through slog while the
// application owns a single logrus logger.
func newSlogLogger(logger *logrus.Logger) *slog.Logger {
	level := slog.LevelInfo
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		level = slog.LevelDebug
	}

	return slog.New(slogrus.Option{Level: level, Logger: logger}.NewLogrusHandler())
}
