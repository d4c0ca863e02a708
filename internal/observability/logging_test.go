package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Output: &buf})
	log.Info("hello", "k", "v")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "v", record["k"])
}

func TestWithContextAttachesSessionID(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Output: &buf, Format: "text"})
	ctx := WithSession(context.Background(), "session-1")

	log.WithContext(ctx).Info("tick")
	assert.True(t, strings.Contains(buf.String(), "session_id=session-1"))
}

func TestWithContextNoopsWithoutKnownKeys(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Output: &buf})
	got := log.WithContext(context.Background())
	assert.Same(t, log, got)
}
