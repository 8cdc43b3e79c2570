package middleware

import (
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type observed struct {
	logger *zap.Logger
	logs   *observer.ObservedLogs
}

func newObservedLogger() (*observed, error) {
	core, logs := observer.New(zapcore.InfoLevel)
	return &observed{logger: zap.New(core), logs: logs}, nil
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
