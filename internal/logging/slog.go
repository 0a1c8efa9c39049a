// Copyright (c) Microsoft. All rights reserved.

package logging

import (
	"log/slog"

	slogrus "github.com/samber/slog-logrus/v2"
	"github.com/sirupsen/logrus"
)

// NewSlogHandler returns a slog.Handler writing to logger, so library code
// logging through slog ends up in the process log. The handler follows the
// logger's level, including later changes to it.
func NewSlogHandler(logger *logrus.Logger) slog.Handler {
	return slogrus.Option{
		Level:  logrusLeveler{logger},
		Logger: logger,
	}.NewLogrusHandler()
}

// NewSlogLogger returns a *slog.Logger backed by logger.
func NewSlogLogger(logger *logrus.Logger) *slog.Logger {
	return slog.New(NewSlogHandler(logger))
}

type logrusLeveler struct{ logger *logrus.Logger }

func (l logrusLeveler) Level() slog.Level {
	switch l.logger.GetLevel() {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return slog.LevelError
	case logrus.WarnLevel:
		return slog.LevelWarn
	case logrus.InfoLevel:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
