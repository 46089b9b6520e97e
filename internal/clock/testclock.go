package clock

import (
	"sync"

	"github.com/nautilus-go/nautilus-core/internal/handler"
)

// TestClock is the deterministic, explicitly-advanced clock used by
// backtests. All mutation happens on the caller's goroutine; there is no
// background driver.
type TestClock struct {
	reg *registry

	mu  sync.Mutex
	now uint64
}

// NewTestClock creates a TestClock starting at the given nanosecond time.
func NewTestClock(startNs uint64) *TestClock {
	return &TestClock{
		reg: newRegistry("TestClock"),
		now: startNs,
	}
}

func (c *TestClock) TimestampNs() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *TestClock) TimestampUs() uint64       { return nsToUs(c.TimestampNs()) }
func (c *TestClock) TimestampMs() uint64       { return nsToMs(c.TimestampNs()) }
func (c *TestClock) TimestampSeconds() float64 { return nsToSeconds(c.TimestampNs()) }

func (c *TestClock) SetTimeAlert(name string, alertTimeNs uint64, callbackID handler.ID) error {
	return c.reg.setTimeAlert(name, alertTimeNs, callbackID)
}

func (c *TestClock) SetTimer(name string, intervalNs, startTimeNs, stopTimeNs uint64, callbackID handler.ID) error {
	return c.reg.setTimer(name, intervalNs, startTimeNs, stopTimeNs, callbackID)
}

func (c *TestClock) CancelTimer(name string)      { c.reg.cancelTimer(name) }
func (c *TestClock) CancelTimers()                { c.reg.cancelTimers() }
func (c *TestClock) NextTimeNs(name string) (uint64, bool) { return c.reg.nextTimeNs(name) }
func (c *TestClock) TimerCount() int              { return c.reg.timerCount() }
func (c *TestClock) TimerNames() []string         { return c.reg.timerNames() }
func (c *TestClock) CallbackID(name string) (handler.ID, bool) { return c.reg.callbackID(name) }

func (c *TestClock) RegisterDefaultHandler(callbackID handler.ID) {
	c.reg.registerDefaultHandler(callbackID)
}

func (c *TestClock) DefaultHandler() (handler.ID, bool) { return c.reg.defaultHandlerID() }

// SetTime jumps the clock to toNs without firing any timers or alerts due
// in between.
func (c *TestClock) SetTime(toNs uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = toNs
}

// AdvanceTime returns, in strict ts_event ascending order (ties broken by
// registration order), every timer/alert firing in (current, toNs], plus
// any alert whose time is at or before current (it is returned with its
// own alert time as ts_event). If
// setTime is true the clock's current time becomes toNs afterwards;
// otherwise it is left unchanged. Recurring timers may produce many
// firings in one call; alerts fire at most once and are removed
// immediately after.
func (c *TestClock) AdvanceTime(toNs uint64, setTime bool) []TimeEvent {
	c.mu.Lock()
	from := c.now
	c.mu.Unlock()

	events := c.reg.dueFirings(from, toNs)
	for i := range events {
		events[i].TsInit = toNs
	}

	if setTime {
		c.mu.Lock()
		c.now = toNs
		c.mu.Unlock()
	}
	return events
}
