// Package logging builds the structured logger used throughout the
// server: one small constructor instead of scattering logger setup
// across main, so every package depends on *zap.Logger rather than the
// global log package.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/elena-brandt/httpresource/internal/config"
)

// New builds a zap.Logger from the logging section of Config:
// "json" (or anything containing "prod") gets the production JSON
// encoder, everything else gets the human-readable console encoder.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	encoding := strings.ToLower(cfg.Encoding)
	if strings.Contains(encoding, "json") || strings.Contains(encoding, "prod") {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
