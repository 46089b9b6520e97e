// Package bus implements the in-process message broker: point-to-point
// endpoints, wildcard pub/sub topics with priority-ordered handlers, and
// correlation-ID-tracked request/response. Grounded on the teacher's
// in-memory event bus (subscriber registry + synchronous fan-out) and its
// messaging package's endpoint-registration pattern, both mined before
// this package was written.
package bus

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/nautilus-go/nautilus-core/internal/corerrors"
	"github.com/nautilus-go/nautilus-core/internal/handler"
)

const component = "MessageBus"

// defaultPendingWarnThreshold mirrors coreconfig.Config's own default,
// applied until a caller sets a configured value via
// SetPendingWarnThreshold.
const defaultPendingWarnThreshold = 10_000

type subscription struct {
	pattern   string
	handlerID handler.ID
	priority  uint8
	seq       uint64
}

// MessageBus is the shared broker every Component borrows a handle to. It
// never owns Components or raw callables — only handler.ID tokens, per the
// non-ownership design in the handler indirection.
type MessageBus struct {
	registry *handler.Registry
	logger   *zap.Logger

	mu                   sync.RWMutex
	endpoints            map[string]handler.ID
	subscriptions        []subscription
	nextSubSeq           uint64
	patternsCache        map[string][]handler.ID
	pending              map[string]handler.ID
	pendingWarnThreshold int
	pendingWarnLogged    bool

	sentCount uint64
	reqCount  uint64
	resCount  uint64
	pubCount  uint64
}

// New creates a MessageBus. registry is the shared handler.Registry that
// owns the underlying callables; the bus only ever stores handler.ID.
func New(registry *handler.Registry, logger *zap.Logger) *MessageBus {
	return &MessageBus{
		registry:             registry,
		logger:               logger,
		endpoints:            make(map[string]handler.ID),
		patternsCache:        make(map[string][]handler.ID),
		pending:              make(map[string]handler.ID),
		pendingWarnThreshold: defaultPendingWarnThreshold,
	}
}

// SetPendingWarnThreshold configures the size of the pending
// request/response table at which Request logs a one-time warning,
// guarding against unanswered requests piling up with no built-in
// deadline (§5). Grounded on coreconfig.Config.BusPendingWarnThreshold.
func (b *MessageBus) SetPendingWarnThreshold(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pendingWarnThreshold = n
	b.pendingWarnLogged = false
}

// Register binds an endpoint name to exactly one handler. Re-registering
// an already-bound endpoint is an error (spec's chosen behavior over
// silent overwrite, see Open Questions).
func (b *MessageBus) Register(endpoint string, id handler.ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.endpoints[endpoint]; exists {
		return corerrors.State(component, "Register", "endpoint \""+endpoint+"\" already registered")
	}
	b.endpoints[endpoint] = id
	return nil
}

// Deregister removes an endpoint binding. Unknown endpoint is a silent
// no-op.
func (b *MessageBus) Deregister(endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.endpoints, endpoint)
}

// Send delivers msg to the single handler bound to endpoint. Unknown
// endpoint increments sent and returns with no delivery and no error.
func (b *MessageBus) Send(endpoint string, msg any) {
	b.mu.Lock()
	b.sentCount++
	id, ok := b.endpoints[endpoint]
	b.mu.Unlock()
	if !ok {
		return
	}
	b.invoke(id, msg, "Send")
}

// Subscribe adds (pattern, handlerID) at the given priority. Identical
// (pattern, handlerID) pairs are idempotent: re-subscribing does not
// duplicate the entry or change its original sequence number.
func (b *MessageBus) Subscribe(pattern string, id handler.ID, priority uint8) error {
	if len(pattern) == 0 {
		return corerrors.Validation(component, "Subscribe", "pattern must not be empty")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.subscriptions {
		if s.pattern == pattern && s.handlerID == id {
			return nil
		}
	}
	b.nextSubSeq++
	b.subscriptions = append(b.subscriptions, subscription{
		pattern:   pattern,
		handlerID: id,
		priority:  priority,
		seq:       b.nextSubSeq,
	})
	b.invalidateCacheLocked()
	return nil
}

// Unsubscribe removes (pattern, handlerID). Unknown pair is a silent
// no-op.
func (b *MessageBus) Unsubscribe(pattern string, id handler.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subscriptions {
		if s.pattern == pattern && s.handlerID == id {
			b.subscriptions = append(b.subscriptions[:i], b.subscriptions[i+1:]...)
			b.invalidateCacheLocked()
			return
		}
	}
}

// invalidateCacheLocked drops the entire patterns_cache; callers must
// already hold b.mu.
func (b *MessageBus) invalidateCacheLocked() {
	b.patternsCache = make(map[string][]handler.ID)
}

// Publish resolves the topic against every subscribed pattern, invokes
// each matching handler exactly once (deduped by handler ID) in
// (desc priority, asc subscription-seq) order, and increments pub.
func (b *MessageBus) Publish(topic string, msg any) {
	ids := b.resolve(topic)

	b.mu.Lock()
	b.pubCount++
	b.mu.Unlock()

	for _, id := range ids {
		b.invoke(id, msg, "Publish")
	}
}

// resolve returns the ordered, deduped handler list for topic, memoizing
// the result in patterns_cache.
func (b *MessageBus) resolve(topic string) []handler.ID {
	b.mu.RLock()
	if cached, ok := b.patternsCache[topic]; ok {
		defer b.mu.RUnlock()
		return cached
	}
	b.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	// Re-check under write lock in case another goroutine populated it.
	if cached, ok := b.patternsCache[topic]; ok {
		return cached
	}

	type matched struct {
		id       handler.ID
		priority uint8
		seq      uint64
	}
	best := make(map[handler.ID]matched)
	for _, s := range b.subscriptions {
		if !matchPattern(s.pattern, topic) {
			continue
		}
		// dedupe by handler ID: keep the highest-priority, lowest-seq match
		if existing, ok := best[s.handlerID]; ok {
			if s.priority < existing.priority || (s.priority == existing.priority && s.seq >= existing.seq) {
				continue
			}
		}
		best[s.handlerID] = matched{id: s.handlerID, priority: s.priority, seq: s.seq}
	}

	ordered := make([]matched, 0, len(best))
	for _, m := range best {
		ordered = append(ordered, m)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].priority != ordered[j].priority {
			return ordered[i].priority > ordered[j].priority
		}
		return ordered[i].seq < ordered[j].seq
	})

	ids := make([]handler.ID, 0, len(ordered))
	for _, m := range ordered {
		ids = append(ids, m.id)
	}
	b.patternsCache[topic] = ids
	return ids
}

// Request records pending[requestID] = handlerID, increments req, and
// sends msg to endpoint. Once the pending table reaches
// pendingWarnThreshold, logs a one-time warning until it drains back
// below the threshold (there is no built-in request/response deadline;
// the caller is expected to drive timeouts via a timer).
func (b *MessageBus) Request(endpoint, requestID string, id handler.ID, msg any) {
	b.mu.Lock()
	b.pending[requestID] = id
	b.reqCount++
	pendingSize := len(b.pending)
	shouldWarn := !b.pendingWarnLogged && pendingSize >= b.pendingWarnThreshold
	if shouldWarn {
		b.pendingWarnLogged = true
	}
	b.mu.Unlock()

	if shouldWarn {
		b.logger.Warn("pending request/response table reached warn threshold",
			zap.Int("pending_size", pendingSize),
			zap.Int("threshold", b.pendingWarnThreshold))
	}
	b.Send(endpoint, msg)
}

// Response looks up the handler for correlationID, delivers msg,
// removes the pending entry, and increments res. Unknown correlation ID
// is dropped silently; a second Response for an already-resolved
// correlation ID is likewise a no-op.
func (b *MessageBus) Response(correlationID string, msg any) {
	b.mu.Lock()
	id, ok := b.pending[correlationID]
	if ok {
		delete(b.pending, correlationID)
		b.resCount++
		if len(b.pending) < b.pendingWarnThreshold {
			b.pendingWarnLogged = false
		}
	}
	b.mu.Unlock()
	if !ok {
		return
	}
	b.invoke(id, msg, "Response")
}

// invoke calls the handler registered under id, recovering from and
// logging any panic so one handler's failure never suppresses its
// siblings within the same publish/send.
func (b *MessageBus) invoke(id handler.ID, msg any, operation string) {
	h, ok := b.registry.Lookup(id)
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			err := corerrors.WrapHandler(component, operation, panicToError(r))
			b.logger.Error("handler panicked", zap.String("handler_id", string(id)), zap.Error(err))
		}
	}()
	h.Invoke(msg)
}

func panicToError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return corerrors.State(component, "invoke", stringifyPanic(r))
}

func stringifyPanic(r any) string {
	if s, ok := r.(string); ok {
		return s
	}
	return "panic: non-string payload"
}

// Counters returns the current (sent, req, res, pub) monotonic counters.
func (b *MessageBus) Counters() (sent, req, res, pub uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sentCount, b.reqCount, b.resCount, b.pubCount
}

// matchPattern implements the glob-like, anchored, case-sensitive,
// byte-oriented matching from spec §4.2: '?' matches exactly one byte,
// '*' matches zero or more bytes, no other metacharacters.
func matchPattern(pattern, topic string) bool {
	return matchBytes([]byte(pattern), []byte(topic))
}

func matchBytes(pattern, text []byte) bool {
	var pIdx, tIdx int
	var starIdx = -1
	var matchIdx int

	for tIdx < len(text) {
		if pIdx < len(pattern) && (pattern[pIdx] == '?' || pattern[pIdx] == text[tIdx]) {
			pIdx++
			tIdx++
		} else if pIdx < len(pattern) && pattern[pIdx] == '*' {
			starIdx = pIdx
			matchIdx = tIdx
			pIdx++
		} else if starIdx != -1 {
			pIdx = starIdx + 1
			matchIdx++
			tIdx = matchIdx
		} else {
			return false
		}
	}
	for pIdx < len(pattern) && pattern[pIdx] == '*' {
		pIdx++
	}
	return pIdx == len(pattern)
}
