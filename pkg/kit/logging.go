package kit

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the service logger. JSON output is meant for deployed
// environments; the console encoder is for local runs.
func NewLogger(service string, level zapcore.Level, json bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if !json {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.InitialFields = map[string]any{"service": service}

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func ParseLevel(s string) (zapcore.Level, error) {
	return zapcore.ParseLevel(s)
}
