package bus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nautilus-go/nautilus-core/internal/handler"
)

func newTestBus(t *testing.T) (*MessageBus, *handler.Registry) {
	reg := handler.NewRegistry()
	return New(reg, zaptest.NewLogger(t)), reg
}

// S1: subscribe A to data.*.BTCUSDT, B to data.quotes.*; publish to
// data.quotes.BTCUSDT. Both invoked once, pub == 1.
func TestBus_S1_WildcardFanOut(t *testing.T) {
	b, reg := newTestBus(t)
	var mu sync.Mutex
	var aCalls, bCalls int

	reg.Register(handler.ID("A"), handler.Func(func(msg any) {
		mu.Lock()
		aCalls++
		mu.Unlock()
	}))
	reg.Register(handler.ID("B"), handler.Func(func(msg any) {
		mu.Lock()
		bCalls++
		mu.Unlock()
	}))

	require.NoError(t, b.Subscribe("data.*.BTCUSDT", handler.ID("A"), 0))
	require.NoError(t, b.Subscribe("data.quotes.*", handler.ID("B"), 0))

	b.Publish("data.quotes.BTCUSDT", "tick")

	assert.Equal(t, 1, aCalls)
	assert.Equal(t, 1, bCalls)
	_, _, _, pub := b.Counters()
	assert.Equal(t, uint64(1), pub)
}

// S2: priority 9 fires before priority 5.
func TestBus_S2_PriorityOrdering(t *testing.T) {
	b, reg := newTestBus(t)
	var order []string
	var mu sync.Mutex

	reg.Register(handler.ID("low"), handler.Func(func(msg any) {
		mu.Lock()
		order = append(order, "low")
		mu.Unlock()
	}))
	reg.Register(handler.ID("high"), handler.Func(func(msg any) {
		mu.Lock()
		order = append(order, "high")
		mu.Unlock()
	}))

	require.NoError(t, b.Subscribe("events.order.X", handler.ID("low"), 5))
	require.NoError(t, b.Subscribe("events.order.X", handler.ID("high"), 9))

	b.Publish("events.order.X", "evt")

	require.Equal(t, []string{"high", "low"}, order)
}

// S4: request/response.
func TestBus_S4_RequestResponse(t *testing.T) {
	b, reg := newTestBus(t)
	var received any
	reg.Register(handler.ID("H"), handler.Func(func(msg any) { received = msg }))
	require.NoError(t, b.Register("Svc.lookup", handler.ID("H")))

	b.Request("Svc.lookup", "U", handler.ID("H"), "M")
	_, req, _, _ := b.Counters()
	assert.Equal(t, uint64(1), req)

	b.Response("U", "R")
	assert.Equal(t, "R", received)
	_, _, res, _ := b.Counters()
	assert.Equal(t, uint64(1), res)

	// second response for the same correlation id is a no-op
	received = nil
	b.Response("U", "R2")
	assert.Nil(t, received)
	_, _, res, _ = b.Counters()
	assert.Equal(t, uint64(1), res)
}

func TestBus_Request_PendingWarnThreshold(t *testing.T) {
	b, _ := newTestBus(t)
	b.SetPendingWarnThreshold(2)

	b.Request("E", "r1", handler.ID("h"), "m")
	assert.False(t, b.pendingWarnLogged)

	b.Request("E", "r2", handler.ID("h"), "m")
	assert.True(t, b.pendingWarnLogged, "warning should fire once pending reaches the threshold")

	// draining below the threshold clears the flag so it can fire again
	b.Response("r1", "reply")
	assert.False(t, b.pendingWarnLogged)
}

func TestBus_Response_UnknownCorrelation_NoOp(t *testing.T) {
	b, _ := newTestBus(t)
	assert.NotPanics(t, func() { b.Response("nope", "x") })
	_, _, res, _ := b.Counters()
	assert.Equal(t, uint64(0), res)
}

func TestBus_Endpoint_DuplicateRegisterErrors(t *testing.T) {
	b, _ := newTestBus(t)
	require.NoError(t, b.Register("E", handler.ID("h1")))
	err := b.Register("E", handler.ID("h2"))
	assert.Error(t, err)

	b.Deregister("E")
	assert.NoError(t, b.Register("E", handler.ID("h2")))
}

func TestBus_Send_UnknownEndpoint_IncrementsSentNoError(t *testing.T) {
	b, _ := newTestBus(t)
	assert.NotPanics(t, func() { b.Send("ghost", "x") })
	sent, _, _, _ := b.Counters()
	assert.Equal(t, uint64(1), sent)
}

func TestBus_Subscribe_EmptyPatternErrors(t *testing.T) {
	b, _ := newTestBus(t)
	err := b.Subscribe("", handler.ID("h"), 0)
	assert.Error(t, err)
}

func TestBus_Unsubscribe_UnknownPair_NoOp(t *testing.T) {
	b, _ := newTestBus(t)
	assert.NotPanics(t, func() { b.Unsubscribe("nope.*", handler.ID("h")) })
}

// Round-trip idempotence: subscribe; unsubscribe; subscribe leaves the
// subscription set equivalent to its post-first-subscribe state.
func TestBus_SubscribeUnsubscribeSubscribe_Idempotent(t *testing.T) {
	b, reg := newTestBus(t)
	calls := 0
	reg.Register(handler.ID("h"), handler.Func(func(msg any) { calls++ }))

	require.NoError(t, b.Subscribe("topic.a", handler.ID("h"), 0))
	b.Unsubscribe("topic.a", handler.ID("h"))
	require.NoError(t, b.Subscribe("topic.a", handler.ID("h"), 0))

	b.Publish("topic.a", "x")
	assert.Equal(t, 1, calls)
}

func TestBus_Subscribe_DuplicatePairIdempotent(t *testing.T) {
	b, reg := newTestBus(t)
	calls := 0
	reg.Register(handler.ID("h"), handler.Func(func(msg any) { calls++ }))

	require.NoError(t, b.Subscribe("topic.a", handler.ID("h"), 0))
	require.NoError(t, b.Subscribe("topic.a", handler.ID("h"), 0))

	b.Publish("topic.a", "x")
	assert.Equal(t, 1, calls)
}

// A handler with multiple matching patterns is invoked exactly once.
func TestBus_DedupeByHandlerAcrossMultiplePatterns(t *testing.T) {
	b, reg := newTestBus(t)
	calls := 0
	reg.Register(handler.ID("h"), handler.Func(func(msg any) { calls++ }))

	require.NoError(t, b.Subscribe("data.*", handler.ID("h"), 0))
	require.NoError(t, b.Subscribe("data.quotes.*", handler.ID("h"), 0))

	b.Publish("data.quotes.BTCUSDT", "tick")
	assert.Equal(t, 1, calls)
}

func TestBus_HandlerPanic_DoesNotSuppressSiblings(t *testing.T) {
	b, reg := newTestBus(t)
	var secondCalled bool

	reg.Register(handler.ID("boom"), handler.Func(func(msg any) { panic("kaboom") }))
	reg.Register(handler.ID("ok"), handler.Func(func(msg any) { secondCalled = true }))

	require.NoError(t, b.Subscribe("t", handler.ID("boom"), 9))
	require.NoError(t, b.Subscribe("t", handler.ID("ok"), 5))

	assert.NotPanics(t, func() { b.Publish("t", "x") })
	assert.True(t, secondCalled)
}

// Wildcard truth table (spec testable property 6).
func TestWildcardMatch_TruthTable(t *testing.T) {
	cases := []struct {
		pattern, topic string
		want           bool
	}{
		{"comp*", "comp", true},
		{"comp*", "complete", true},
		{"comp*", "computer", true},
		{"comp*", "com", false},
		{"c?mp", "camp", true},
		{"c?mp", "comp", true},
		{"c?mp", "cmp", false},
		{"c?mp", "champ", false},
		{"c*p", "cp", true},
		{"c*p", "comp", true},
		{"c*p", "clamp", true},
		{"c*p", "cx", false},
	}
	for _, tc := range cases {
		t.Run(tc.pattern+"_"+tc.topic, func(t *testing.T) {
			assert.Equal(t, tc.want, matchPattern(tc.pattern, tc.topic))
		})
	}
}
