package logging

import (
	"fmt"

	"github.com/williamhogman/cluster-registry/registry/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger builds the registry logger. Development mode switches to the
// console encoder and defaults to debug; Logging.Level overrides the level in
// either mode.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Logging.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.Logging.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named("registry"), nil
}

// ProvideLoggerSugared creates a sugared logger from the standard zap logger
func ProvideLoggerSugared(logger *zap.Logger) *zap.SugaredLogger {
	return logger.Sugar()
}

// Module provides the logger dependencies to the fx container
var Module = fx.Options(
	fx.Provide(ProvideLogger),
	fx.Provide(ProvideLoggerSugared),
)
