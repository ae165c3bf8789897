package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeRedactsCredentials(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core))

	l.Info("provider configured", "provider", "anthropic", "api_key", "sk-123", "ANTHROPIC_TOKEN", "abc")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "anthropic", fields["provider"])
	assert.Equal(t, "[REDACTED]", fields["api_key"])
	assert.Equal(t, "[REDACTED]", fields["ANTHROPIC_TOKEN"])
}

func TestWithKeepsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core)).With("learner_id", "l-1").Named("engine")

	l.Warn("slow commit", "ms", 120)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "engine", entry.LoggerName)
	assert.Equal(t, "l-1", entry.ContextMap()["learner_id"])
	assert.EqualValues(t, 120, entry.ContextMap()["ms"])
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	l, err := New(Options{Mode: "prod", Level: "warn"})
	require.NoError(t, err)
	l.Sync()
}

func TestNop(t *testing.T) {
	Nop().Error("ignored", "k", "v")
}
