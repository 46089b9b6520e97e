// Package clock implements the two Clock variants used throughout the
// runtime: a deterministic TestClock advanced explicitly by a backtest
// driver, and a LiveClock bound to wall time. Both share the same timer
// and alert registry, grounded on the teacher's pattern of a small shared
// struct with injected *zap.Logger (internal/trading/lifecycle) plus the
// coroutine-free, queue-drained dispatch the design notes call for.
package clock

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nautilus-go/nautilus-core/internal/corerrors"
	"github.com/nautilus-go/nautilus-core/internal/handler"
)

// TimeEvent is produced by a firing timer or alert and routed to a
// handler by name.
type TimeEvent struct {
	Name    string
	EventID uuid.UUID
	TsEvent uint64
	TsInit  uint64
}

// Clock is the shared contract for TestClock and LiveClock.
type Clock interface {
	TimestampNs() uint64
	TimestampUs() uint64
	TimestampMs() uint64
	TimestampSeconds() float64

	SetTimeAlert(name string, alertTimeNs uint64, callbackID handler.ID) error
	SetTimer(name string, intervalNs, startTimeNs, stopTimeNs uint64, callbackID handler.ID) error
	CancelTimer(name string)
	CancelTimers()
	NextTimeNs(name string) (uint64, bool)
	TimerCount() int
	TimerNames() []string
	CallbackID(name string) (handler.ID, bool)

	RegisterDefaultHandler(callbackID handler.ID)
	DefaultHandler() (handler.ID, bool)
}

// entry is a single registered timer or alert. Both share the same
// name-space per spec §4.1 ("Alerts share the name-space of timers").
type entry struct {
	name        string
	isAlert     bool
	alertTimeNs uint64
	intervalNs  uint64
	startTimeNs uint64
	stopTimeNs  uint64
	callbackID  handler.ID
	seq         uint64 // registration order, used to break ts_event ties
}

// registry is the timer/alert bookkeeping shared by both clock variants.
type registry struct {
	mu             sync.Mutex
	entries        map[string]*entry
	nextSeq        uint64
	defaultHandler handler.ID
	hasDefault     bool
	component      string // for error tagging
}

func newRegistry(component string) *registry {
	return &registry{entries: make(map[string]*entry), component: component}
}

func (r *registry) setTimeAlert(name string, alertTimeNs uint64, callbackID handler.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return corerrors.Validationf(r.component, "SetTimeAlert", "timer %q already registered", name)
	}
	r.nextSeq++
	r.entries[name] = &entry{
		name:        name,
		isAlert:     true,
		alertTimeNs: alertTimeNs,
		callbackID:  callbackID,
		seq:         r.nextSeq,
	}
	return nil
}

func (r *registry) setTimer(name string, intervalNs, startTimeNs, stopTimeNs uint64, callbackID handler.ID) error {
	if intervalNs == 0 {
		return corerrors.Validationf(r.component, "SetTimer", "interval must be strictly positive, got %d", intervalNs)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return corerrors.Validationf(r.component, "SetTimer", "timer %q already registered", name)
	}
	r.nextSeq++
	r.entries[name] = &entry{
		name:        name,
		intervalNs:  intervalNs,
		startTimeNs: startTimeNs,
		stopTimeNs:  stopTimeNs,
		callbackID:  callbackID,
		seq:         r.nextSeq,
	}
	return nil
}

// cancelTimer is a silent no-op for an unknown name, per spec §7 (lookup
// miss). Idempotent: canceling twice is equivalent to canceling once.
func (r *registry) cancelTimer(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

func (r *registry) cancelTimers() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*entry)
}

func (r *registry) nextTimeNs(name string) (uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok {
		return 0, false
	}
	if e.isAlert {
		return e.alertTimeNs, true
	}
	return e.startTimeNs + e.intervalNs, true
}

func (r *registry) timerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *registry) timerNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *registry) callbackID(name string) (handler.ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok {
		return "", false
	}
	return e.callbackID, true
}

func (r *registry) registerDefaultHandler(callbackID handler.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultHandler = callbackID
	r.hasDefault = true
}

func (r *registry) defaultHandlerID() (handler.ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defaultHandler, r.hasDefault
}

// dueFirings returns every (entry, ts_event) pair firing in the window
// used by TestClock.advance_time and LiveClock's dispatch tick. Recurring
// timers use a strictly-greater-than-from, less-or-equal-to lower/upper
// bound so a stateless recompute across successive calls never repeats a
// firing already delivered. Alerts use only an upper bound: an alert
// whose alert_time_ns has already passed is still due "at the next
// dispatch opportunity" (spec §4.1), and since alerts are removed on
// firing there is no risk of a duplicate.
func (r *registry) dueFirings(fromExclusive, toInclusive uint64) []TimeEvent {
	r.mu.Lock()
	type due struct {
		ts  uint64
		seq uint64
		e   *entry
	}
	var candidates []due
	for _, e := range r.entries {
		if e.isAlert {
			if e.alertTimeNs <= toInclusive {
				candidates = append(candidates, due{ts: e.alertTimeNs, seq: e.seq, e: e})
			}
			continue
		}
		for _, ts := range timerFireTimes(e.startTimeNs, e.intervalNs, e.stopTimeNs, fromExclusive, toInclusive) {
			candidates = append(candidates, due{ts: ts, seq: e.seq, e: e})
		}
	}
	// remove fired alerts now, while still holding the lock
	for _, c := range candidates {
		if c.e.isAlert {
			delete(r.entries, c.e.name)
		}
	}
	r.mu.Unlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].ts != candidates[j].ts {
			return candidates[i].ts < candidates[j].ts
		}
		return candidates[i].seq < candidates[j].seq
	})

	events := make([]TimeEvent, 0, len(candidates))
	for _, c := range candidates {
		events = append(events, TimeEvent{
			Name:    c.e.name,
			EventID: uuid.New(),
			TsEvent: c.ts,
		})
	}
	return events
}

// timerFireTimes returns every fire time of the form
// start + k*interval (k = 1, 2, 3, ...) lying in (fromExclusive,
// toInclusive], bounded above by stopTimeNs when non-zero.
func timerFireTimes(start, interval, stop, fromExclusive, toInclusive uint64) []uint64 {
	if interval == 0 {
		return nil
	}
	var k uint64 = 1
	if fromExclusive >= start {
		diff := fromExclusive - start
		k = diff/interval + 1
	}
	var times []uint64
	for {
		t := start + k*interval
		if t > toInclusive {
			break
		}
		if stop != 0 && t > stop {
			break
		}
		times = append(times, t)
		k++
	}
	return times
}

func nsToUs(ns uint64) uint64       { return ns / uint64(time.Microsecond) }
func nsToMs(ns uint64) uint64       { return ns / uint64(time.Millisecond) }
func nsToSeconds(ns uint64) float64 { return float64(ns) / float64(time.Second) }
