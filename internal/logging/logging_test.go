package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roach88/invitations/internal/config"
)

func TestNewWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWriter(config.LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("key accepted", zap.Int64("invitation_id", 7))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "key accepted", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.EqualValues(t, 7, entry["invitation_id"])
}

func TestNewWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWriter(config.LogConfig{Level: "debug", Format: "console"}, &buf)
	require.NoError(t, err)

	log.Debug("invitation added")
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "invitation added")
}

func TestNewWriter_Invalid(t *testing.T) {
	_, err := NewWriter(config.LogConfig{Level: "loud", Format: "json"}, &bytes.Buffer{})
	assert.Error(t, err)
	_, err = NewWriter(config.LogConfig{Level: "info", Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	assert.NotNil(t, Nop())
}
