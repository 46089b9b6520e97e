package corelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_SecondCallErrors(t *testing.T) {
	resetForTest()
	defer resetForTest()

	logger, err := Init(LevelInfo, false)
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = Init(LevelInfo, false)
	assert.Error(t, err)
}

func TestNew_IndependentInstances(t *testing.T) {
	a, err := New(LevelDebug, false)
	require.NoError(t, err)
	b, err := New(LevelError, true)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestColorize(t *testing.T) {
	out := Colorize(ColorRed, "boom")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "\033[31m")
}
