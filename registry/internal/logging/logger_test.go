package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/williamhogman/cluster-registry/registry/internal/config"
)

func TestProvideLogger_Levels(t *testing.T) {
	tests := []struct {
		name        string
		logging     config.LoggingConfig
		debug, info bool
	}{
		{name: "production default", logging: config.LoggingConfig{}, debug: false, info: true},
		{name: "development default", logging: config.LoggingConfig{Development: true}, debug: true, info: true},
		{name: "production debug", logging: config.LoggingConfig{Level: "debug"}, debug: true, info: true},
		{name: "development warn", logging: config.LoggingConfig{Development: true, Level: "warn"}, debug: false, info: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := ProvideLogger(&config.Config{Logging: tt.logging})
			require.NoError(t, err)

			assert.Equal(t, tt.debug, logger.Core().Enabled(zap.DebugLevel))
			assert.Equal(t, tt.info, logger.Core().Enabled(zap.InfoLevel))
			assert.True(t, logger.Core().Enabled(zap.ErrorLevel))
		})
	}
}

func TestProvideLogger_InvalidLevel(t *testing.T) {
	_, err := ProvideLogger(&config.Config{Logging: config.LoggingConfig{Level: "loud"}})
	assert.Error(t, err)
}
