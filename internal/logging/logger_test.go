package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONEntryCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput(LevelInfo, FormatJSON, &buf)

	logger.WithField("wallet_id", 7).WithError(errors.New("no price")).Warn("volatility fallback")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry.Level)
	assert.Equal(t, "volatility fallback", entry.Message)
	assert.Equal(t, float64(7), entry.Fields["wallet_id"])
	assert.Equal(t, "no price", entry.Fields["error"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput(LevelWarn, FormatText, &buf)

	logger.Info("dropped")
	logger.Debug("dropped")
	logger.Error("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "error: kept")
	assert.Contains(t, out, "caller=")
}

func TestLogger_DerivedLoggersDoNotShareFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerWithOutput(LevelInfo, FormatText, &buf)

	_ = base.WithField("a", 1)
	base.Info("plain")

	assert.False(t, strings.Contains(buf.String(), "fields="))
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput(LevelInfo, FormatJSON, &buf).WithField("request_id", "abc")

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, LevelWarn, ParseLogLevel("WARNING"))
	assert.Equal(t, LevelInfo, ParseLogLevel("verbose"))
	assert.Equal(t, FormatText, ParseLogFormat("text"))
	assert.Equal(t, FormatJSON, ParseLogFormat("xml"))
}
