// Package logger builds the process-wide zap logger. Development config by
// default, production JSON when APP_ENV=production.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
)

func New() *zap.SugaredLogger {
	var cfg zap.Config
	switch strings.ToLower(os.Getenv("APP_ENV")) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	zl, err := cfg.Build()
	if err != nil {
		zl = zap.NewNop()
	}
	return zl.Sugar()
}

// Nop returns a discard-all logger, used by tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
