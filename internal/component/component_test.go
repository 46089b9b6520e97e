package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nautilus-go/nautilus-core/internal/bus"
	"github.com/nautilus-go/nautilus-core/internal/handler"
)

func newTestComponent(t *testing.T) *Component {
	reg := handler.NewRegistry()
	b := bus.New(reg, zaptest.NewLogger(t))
	return New("Test-001", b)
}

func TestComponent_HappyPathToRunning(t *testing.T) {
	c := newTestComponent(t)
	require.NoError(t, c.Trigger(Initialize))
	assert.Equal(t, Ready, c.State())
	require.NoError(t, c.Trigger(Start))
	assert.Equal(t, Starting, c.State())
	require.NoError(t, c.Trigger(StartCompleted))
	assert.Equal(t, Running, c.State())
}

// S6: STOPPED receiving START is illegal; state unchanged, error raised.
// Then RESET -> RESETTING -> RESET_COMPLETED -> READY -> START -> STARTING.
func TestComponent_S6_IllegalThenRecover(t *testing.T) {
	c := newTestComponent(t)
	require.NoError(t, c.Trigger(Initialize))
	require.NoError(t, c.Trigger(Start))
	require.NoError(t, c.Trigger(StartCompleted))
	require.NoError(t, c.Trigger(Stop))
	require.NoError(t, c.Trigger(StopCompleted))
	require.Equal(t, Stopped, c.State())

	err := c.Trigger(Start)
	assert.Error(t, err)
	assert.Equal(t, Stopped, c.State(), "illegal trigger must leave state unchanged")

	require.NoError(t, c.Trigger(Reset))
	assert.Equal(t, Resetting, c.State())
	require.NoError(t, c.Trigger(ResetCompleted))
	assert.Equal(t, Ready, c.State())
	require.NoError(t, c.Trigger(Start))
	assert.Equal(t, Starting, c.State())
}

func TestComponent_DisposeFromNonTerminal(t *testing.T) {
	c := newTestComponent(t)
	require.NoError(t, c.Trigger(Initialize))
	require.NoError(t, c.Trigger(Dispose))
	assert.Equal(t, Disposed, c.State())
}

func TestComponent_DisposeFromTerminalIsIllegal(t *testing.T) {
	c := newTestComponent(t)
	require.NoError(t, c.Trigger(Initialize))
	require.NoError(t, c.Trigger(Dispose))
	err := c.Trigger(Dispose)
	assert.Error(t, err)
	assert.Equal(t, Disposed, c.State())
}

func TestComponent_DegradeOnlyFromRunning(t *testing.T) {
	c := newTestComponent(t)
	err := c.Trigger(Degrade)
	assert.Error(t, err)

	require.NoError(t, c.Trigger(Initialize))
	require.NoError(t, c.Trigger(Start))
	require.NoError(t, c.Trigger(StartCompleted))
	require.NoError(t, c.Trigger(Degrade))
	assert.Equal(t, Degraded, c.State())

	// DEGRADED can RESET
	require.NoError(t, c.Trigger(Reset))
	assert.Equal(t, Resetting, c.State())
}

func TestComponent_FaultFromAnyNonTerminal(t *testing.T) {
	c := newTestComponent(t)
	require.NoError(t, c.Trigger(Fault))
	assert.Equal(t, Faulted, c.State())

	err := c.Trigger(Fault)
	assert.Error(t, err, "FAULT is illegal once already FAULTED")
}

func TestComponent_PublishesStateTransitionTopic(t *testing.T) {
	reg := handler.NewRegistry()
	b := bus.New(reg, zaptest.NewLogger(t))
	c := New("Test-002", b)

	var seen []any
	reg.Register(handler.ID("watcher"), handler.Func(func(msg any) { seen = append(seen, msg) }))
	require.NoError(t, b.Subscribe("events.system.component.Test-002.*", handler.ID("watcher"), 0))

	require.NoError(t, c.Trigger(Initialize))
	require.Len(t, seen, 1)
	assert.Equal(t, Ready, seen[0])
}
