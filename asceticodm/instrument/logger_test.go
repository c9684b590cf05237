package instrument

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/config"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.Log{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	logger, err = NewLogger(config.Log{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLoggerErrors(t *testing.T) {
	_, err := NewLogger(config.Log{Level: "loud", Format: "json"})
	assert.Error(t, err)

	_, err = NewLogger(config.Log{Level: "info", Format: "xml"})
	assert.EqualError(t, err, "unknown log format: xml")
}
