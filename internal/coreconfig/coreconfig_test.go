package coreconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "does-not-exist.yaml"), zaptest.NewLogger(t))
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4096, cfg.LiveClockQueueCapacity)
	assert.Equal(t, 10_000, cfg.BusPendingWarnThreshold)
}

func TestLoad_ReadsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	contents := "log_level: debug\nlog_color: true\nlive_clock_queue_capacity: 128\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	m := New(path, zaptest.NewLogger(t))
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogColor)
	assert.Equal(t, 128, cfg.LiveClockQueueCapacity)
	assert.Equal(t, 10_000, cfg.BusPendingWarnThreshold)
}
