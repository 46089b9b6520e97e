// Package component implements the lifecycle state machine shared by
// every runtime component (execution clients, engines, strategies).
// Grounded on the teacher's lifecycle package pattern of a small struct
// carrying state plus a transition table, adapted to the trigger/state
// enums and topic-publishing side effect this spec defines.
package component

import (
	"sync"

	"github.com/nautilus-go/nautilus-core/internal/bus"
	"github.com/nautilus-go/nautilus-core/internal/corerrors"
)

const errComponent = "Component"

// State enumerates every lifecycle state a Component can occupy.
type State string

const (
	PreInitialized State = "PRE_INITIALIZED"
	Ready          State = "READY"
	Starting       State = "STARTING"
	Running        State = "RUNNING"
	Stopping       State = "STOPPING"
	Stopped        State = "STOPPED"
	Resuming       State = "RESUMING"
	Resetting      State = "RESETTING"
	Disposing      State = "DISPOSING"
	Disposed       State = "DISPOSED"
	Degrading      State = "DEGRADING"
	Degraded       State = "DEGRADED"
	Faulting       State = "FAULTING"
	Faulted        State = "FAULTED"
)

// Trigger enumerates every event that can drive a state transition.
type Trigger string

const (
	Initialize      Trigger = "INITIALIZE"
	Start           Trigger = "START"
	StartCompleted  Trigger = "START_COMPLETED"
	Stop            Trigger = "STOP"
	StopCompleted   Trigger = "STOP_COMPLETED"
	Resume          Trigger = "RESUME"
	ResumeCompleted Trigger = "RESUME_COMPLETED"
	Reset           Trigger = "RESET"
	ResetCompleted  Trigger = "RESET_COMPLETED"
	Dispose         Trigger = "DISPOSE"
	Degrade         Trigger = "DEGRADE"
	Fault           Trigger = "FAULT"
)

// terminal states admit no further transitions.
var terminal = map[State]bool{
	Disposed: true,
	Faulted:  true,
}

// transitions is the legal graph from spec §4.3 for the two-trigger
// steps (START/STOP/RESUME/RESET and their _COMPLETED halves). DISPOSE,
// DEGRADE and FAULT are not listed here: each is handled by twoHop below,
// which moves through the "-ING" state to the final state in one trigger.
var transitions = map[State]map[Trigger]State{
	PreInitialized: {Initialize: Ready},
	Ready:          {Start: Starting},
	Starting:       {StartCompleted: Running},
	Running:        {Stop: Stopping},
	Stopping:       {StopCompleted: Stopped},
	Stopped:        {Resume: Resuming, Reset: Resetting},
	Resuming:       {ResumeCompleted: Running},
	Resetting:      {ResetCompleted: Ready},
	Degraded:       {Reset: Resetting},
	Disposing:      {},
	Degrading:      {},
	Faulting:       {},
}

// disposeAllowed/degradeAllowed/faultAllowed report the states from which
// those triggers are legal ("any non-terminal" / "RUNNING" / "any
// non-terminal").
func disposeAllowed(s State) bool { return !terminal[s] && s != Disposing }
func degradeAllowed(s State) bool { return s == Running }
func faultAllowed(s State) bool   { return !terminal[s] }

// twoHop names the transient state a single DISPOSE/DEGRADE/FAULT
// trigger passes through on its way to the final state named in the
// table's single row (DISPOSED, DEGRADED or FAULTED) (unlike START/STOP/RESUME/RESET, which require a
// separate _COMPLETED trigger for the second hop).
var twoHop = map[Trigger][2]State{
	Dispose: {Disposing, Disposed},
	Degrade: {Degrading, Degraded},
	Fault:   {Faulting, Faulted},
}

// Component is the reusable lifecycle base every runtime unit embeds. It
// holds a non-owning MessageBus handle: the bus never references
// components back, only handler IDs (spec Design Notes §9).
type Component struct {
	id  string
	bus *bus.MessageBus

	mu    sync.Mutex
	state State
}

// New creates a Component in PRE_INITIALIZED state, identified by id for
// topic publishing and error tagging.
func New(id string, b *bus.MessageBus) *Component {
	return &Component{id: id, bus: b, state: PreInitialized}
}

func (c *Component) ID() string { return c.id }

func (c *Component) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Trigger attempts the transition for the current state. On success the
// new state (or, for DISPOSE/DEGRADE/FAULT, each of the two states
// traversed) is published to events.system.component.<id>.<new_state>.
// An illegal trigger leaves state unchanged and returns a State error.
func (c *Component) Trigger(t Trigger) error {
	c.mu.Lock()
	from := c.state

	if hops, ok := twoHop[t]; ok {
		if !c.hopAllowed(t, from) {
			c.mu.Unlock()
			return corerrors.Statef(errComponent, "Trigger", "illegal trigger %s from state %s", t, from)
		}
		c.state = hops[1]
		c.mu.Unlock()
		c.publish(hops[0])
		c.publish(hops[1])
		return nil
	}

	next, ok := transitions[from]
	if !ok {
		c.mu.Unlock()
		return corerrors.Statef(errComponent, "Trigger", "illegal trigger %s from state %s", t, from)
	}
	to, ok := next[t]
	if !ok {
		c.mu.Unlock()
		return corerrors.Statef(errComponent, "Trigger", "illegal trigger %s from state %s", t, from)
	}
	c.state = to
	c.mu.Unlock()
	c.publish(to)
	return nil
}

func (c *Component) hopAllowed(t Trigger, from State) bool {
	switch t {
	case Dispose:
		return disposeAllowed(from)
	case Degrade:
		return degradeAllowed(from)
	case Fault:
		return faultAllowed(from)
	default:
		return false
	}
}

func (c *Component) publish(state State) {
	if c.bus == nil {
		return
	}
	c.bus.Publish("events.system.component."+c.id+"."+string(state), state)
}
