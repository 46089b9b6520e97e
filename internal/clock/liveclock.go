package clock

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/nautilus-go/nautilus-core/internal/handler"
)

// LiveClock is bound to wall time. A background goroutine polls the timer
// registry and pushes due TimeEvents onto a bounded queue; the caller's
// dispatch loop drains that queue and invokes handlers serially (§5: "one
// background timer thread fires due alerts/timers into a bounded queue
// consumed by the main dispatch loop... core dispatch must not [block]").
type LiveClock struct {
	reg    *registry
	logger *zap.Logger

	queue chan TimeEvent
	tick  time.Duration

	lastCheckedNs atomic.Uint64
	stop          chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
}

// NewLiveClock creates a LiveClock. queueCapacity bounds the pending
// TimeEvent queue (grounded on coreconfig.Config.LiveClockQueueCapacity);
// tick controls how often the background driver polls for due
// timers/alerts.
func NewLiveClock(logger *zap.Logger, queueCapacity int, tick time.Duration) *LiveClock {
	c := &LiveClock{
		reg:    newRegistry("LiveClock"),
		logger: logger,
		queue:  make(chan TimeEvent, queueCapacity),
		tick:   tick,
		stop:   make(chan struct{}),
	}
	c.lastCheckedNs.Store(uint64(time.Now().UnixNano()))
	return c
}

func (c *LiveClock) TimestampNs() uint64       { return uint64(time.Now().UnixNano()) }
func (c *LiveClock) TimestampUs() uint64       { return nsToUs(c.TimestampNs()) }
func (c *LiveClock) TimestampMs() uint64       { return nsToMs(c.TimestampNs()) }
func (c *LiveClock) TimestampSeconds() float64 { return nsToSeconds(c.TimestampNs()) }

func (c *LiveClock) SetTimeAlert(name string, alertTimeNs uint64, callbackID handler.ID) error {
	return c.reg.setTimeAlert(name, alertTimeNs, callbackID)
}

func (c *LiveClock) SetTimer(name string, intervalNs, startTimeNs, stopTimeNs uint64, callbackID handler.ID) error {
	return c.reg.setTimer(name, intervalNs, startTimeNs, stopTimeNs, callbackID)
}

// CancelTimer is effective immediately: a timer canceled between the
// background driver computing its next firing and the queue delivering it
// cannot be un-canceled, but delivery of an event already placed on the
// queue is not retracted (the dispatch loop may still see one final
// event). Calling it twice is a no-op the second time.
func (c *LiveClock) CancelTimer(name string)                    { c.reg.cancelTimer(name) }
func (c *LiveClock) CancelTimers()                              { c.reg.cancelTimers() }
func (c *LiveClock) NextTimeNs(name string) (uint64, bool)      { return c.reg.nextTimeNs(name) }
func (c *LiveClock) TimerCount() int                            { return c.reg.timerCount() }
func (c *LiveClock) TimerNames() []string                       { return c.reg.timerNames() }
func (c *LiveClock) CallbackID(name string) (handler.ID, bool)  { return c.reg.callbackID(name) }
func (c *LiveClock) RegisterDefaultHandler(callbackID handler.ID) {
	c.reg.registerDefaultHandler(callbackID)
}
func (c *LiveClock) DefaultHandler() (handler.ID, bool) { return c.reg.defaultHandlerID() }

// Events returns the channel the dispatch loop drains TimeEvents from.
func (c *LiveClock) Events() <-chan TimeEvent { return c.queue }

// Start launches the background polling driver. Safe to call once; call
// Stop to terminate it.
func (c *LiveClock) Start() {
	c.wg.Add(1)
	go c.run()
}

func (c *LiveClock) run() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := c.TimestampNs()
			from := c.lastCheckedNs.Swap(now)
			for _, ev := range c.reg.dueFirings(from, now) {
				ev.TsInit = c.TimestampNs()
				select {
				case c.queue <- ev:
				default:
					c.logger.Error("live clock event queue full, dropping event",
						zap.String("name", ev.Name))
				}
			}
		}
	}
}

// Stop terminates the background driver and waits for it to exit.
// Idempotent.
func (c *LiveClock) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	c.wg.Wait()
}
