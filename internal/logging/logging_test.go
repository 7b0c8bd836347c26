package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/Jimmy200504/CalH2O/internal/config"
)

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "warn"}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("prompt", "goalAdjustment").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"prompt":"goalAdjustment"`)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestNewLoggerUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "chatty"}, &buf)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestNewLoggerPretty(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "info", Pretty: true}, &buf)

	logger.Info().Msg("hello")
	assert.NotContains(t, buf.String(), `"message"`)
	assert.Contains(t, buf.String(), "hello")
}
