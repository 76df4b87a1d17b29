package fsm

import (
	"context"

	"github.com/meridianlabs/agentfsm/clock"
	"github.com/meridianlabs/agentfsm/router"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

// TransitionFunc is the one function a machine's behavior author
// supplies. §6 "Transition function contract".
//
// The runtime calls it up to three times per dispatched event, with
// queryState/querySubstate walking the ladder (current state/substate)
// -> (current state, Any) -> (Any, Any), stopping at the first call
// that returns handled = true.
//
// For event == Probe, the function must not run handler bodies; it
// must instead call sm.Register for whichever of Enter/Exit/Update it
// declares at (queryState, querySubstate), and return true for the
// tier that matches its own declared scope so the ladder stops there.
type TransitionFunc func(sm *StateMachine, event vocabulary.EventKind, msg *router.Message, queryState vocabulary.StateId, querySubstate vocabulary.SubstateId) (handled bool)

// QueueHandle is the narrow slice of manager.Queue a StateMachine
// needs in order to request a machine-level change (push/pop/replace/
// queue/requeue/reset). Declared here, implemented by manager.Queue,
// to avoid fsm importing manager. §9 "Cyclic owner references".
type QueueHandle interface {
	RequestReset()
	RequestReplace(next *StateMachine)
	RequestQueue(next *StateMachine)
	RequestRequeue()
	RequestPush(next *StateMachine)
	RequestPop()
}

// stateChangeKind is the pending-transition discriminant. §3
// "state_change".
type stateChangeKind int

const (
	noChange stateChangeKind = iota
	changeChange
	popChange
)

// StateMachine is one behavior instance: current state/substate,
// scoped variables, and a TransitionFunc. §3 "State Machine".
type StateMachine struct {
	Name string // for logging/debug only; never compared by the runtime.

	owner vocabulary.AgentId
	queue vocabulary.QueueIndex

	router *router.Router
	clk    *clock.Clock
	handle QueueHandle // set by manager.Queue when this machine is activated

	transition TransitionFunc

	currentState    vocabulary.StateId
	currentSubstate vocabulary.SubstateId

	scopeState    uint32
	scopeSubstate uint32

	registered vocabulary.RegisteredEvents

	changeKind          stateChangeKind
	nextState           vocabulary.StateId
	nextSubstate        vocabulary.SubstateId
	changeAllowed       bool
	delayedStateQueued  bool
	delayedSubQueued    bool
	inExit              bool

	stateStack []vocabulary.StateId // capped at vocabulary.MaxStateStack; index 0 is oldest

	stateVars    map[int]vocabulary.VarValue
	substateVars map[int]vocabulary.VarValue

	timeOnEnterState    clock.Time
	timeOnEnterSubstate clock.Time

	broadcastList []vocabulary.AgentId

	ccReceiver    vocabulary.AgentId
	ccConfigured  bool

	tracer Tracer
}

// New creates a StateMachine bound to rtr/clk, with transition as its
// behavior function. It is inert (current_state = start, no Enter
// dispatched) until Reset is called, normally by manager.Queue when
// the machine is pushed with initialize=true. §4.5 "PushStateMachine
// takes an initialize flag".
func New(name string, transition TransitionFunc, rtr *router.Router, clk *clock.Clock, start vocabulary.StateId) *StateMachine {
	return &StateMachine{
		Name:            name,
		transition:      transition,
		router:          rtr,
		clk:             clk,
		currentState:    start,
		currentSubstate: vocabulary.NoSubstate,
		changeAllowed:   true,
	}
}

// Bind attaches the machine to its owner/queue/QueueHandle. Called by
// manager when the machine is placed in a queue.
func (sm *StateMachine) Bind(owner vocabulary.AgentId, queue vocabulary.QueueIndex, handle QueueHandle) {
	sm.owner = owner
	sm.queue = queue
	sm.handle = handle
}

// Owner, Queue report the machine's binding. Used by Manager.Scope and
// by send-API wrappers to address self-sends.
func (sm *StateMachine) Owner() vocabulary.AgentId   { return sm.owner }
func (sm *StateMachine) Queue() vocabulary.QueueIndex { return sm.queue }

// State, Substate report the machine's current position.
func (sm *StateMachine) State() vocabulary.StateId       { return sm.currentState }
func (sm *StateMachine) Substate() vocabulary.SubstateId { return sm.currentSubstate }

// ScopeState, ScopeSubstate report the current scope counters, for
// Manager.Scope (consulted by router.Target) and for tests asserting
// §8's scope-cancellation invariant.
func (sm *StateMachine) ScopeState() uint32    { return sm.scopeState }
func (sm *StateMachine) ScopeSubstate() uint32 { return sm.scopeSubstate }

// StateStackLen reports the current depth of state_stack, for tests
// and debug/inspector use.
func (sm *StateMachine) StateStackLen() int { return len(sm.stateStack) }

// TimeOnEnterState, TimeOnEnterSubstate report the Clock value
// captured at the most recent entry. §3.
func (sm *StateMachine) TimeOnEnterState() clock.Time    { return sm.timeOnEnterState }
func (sm *StateMachine) TimeOnEnterSubstate() clock.Time { return sm.timeOnEnterSubstate }

// now returns the bound Clock's current value, or 0 if unbound (tests
// that don't care about timing).
func (sm *StateMachine) now() clock.Time {
	if sm.clk == nil {
		return 0
	}
	return sm.clk.Now()
}

// Register is called by a TransitionFunc responding to a Probe event
// to declare that a handler body exists for the given event kind at
// the scope matching the (queryState, querySubstate) tier currently
// being probed. §4.1 "Probe".
func (sm *StateMachine) Register(kind vocabulary.EventKind, scope vocabulary.ScopeRule) {
	sm.registered |= registeredBit(kind, scope)
}

func registeredBit(kind vocabulary.EventKind, scope vocabulary.ScopeRule) vocabulary.RegisteredEvents {
	switch kind {
	case vocabulary.Enter:
		switch scope {
		case vocabulary.Substate:
			return vocabulary.EnterSubstate
		case vocabulary.State:
			return vocabulary.EnterState
		default:
			return vocabulary.EnterMachine
		}
	case vocabulary.Exit:
		switch scope {
		case vocabulary.Substate:
			return vocabulary.ExitSubstate
		case vocabulary.State:
			return vocabulary.ExitState
		default:
			return vocabulary.ExitMachine
		}
	case vocabulary.Update:
		switch scope {
		case vocabulary.Substate:
			return vocabulary.UpdateSubstate
		case vocabulary.State:
			return vocabulary.UpdateState
		default:
			return vocabulary.UpdateMachine
		}
	}
	return 0
}

// Has reports whether registeredBit(kind, scope) was declared by the
// most recent Probe.
func (sm *StateMachine) Has(kind vocabulary.EventKind, scope vocabulary.ScopeRule) bool {
	bit := registeredBit(kind, scope)
	return bit != 0 && sm.registered.Has(bit)
}

// dispatch walks the three-tier ladder: (current, current) ->
// (current, Any) -> (Any, Any), stopping at the first handled=true.
// §4.1.
func (sm *StateMachine) dispatch(ctx context.Context, event vocabulary.EventKind, msg *router.Message) bool {
	if sm.transition == nil {
		return false
	}
	if sm.transition(sm, event, msg, sm.currentState, sm.currentSubstate) {
		if event != vocabulary.Probe {
			sm.trace(TraceDispatch, event, nil)
		}
		return true
	}
	if sm.currentSubstate != vocabulary.NoSubstate {
		if sm.transition(sm, event, msg, sm.currentState, vocabulary.NoSubstate) {
			if event != vocabulary.Probe {
				sm.trace(TraceDispatch, event, nil)
			}
			return true
		}
	}
	handled := sm.transition(sm, event, msg, vocabulary.Any, vocabulary.NoSubstate)
	if handled && event != vocabulary.Probe {
		sm.trace(TraceDispatch, event, nil)
	}
	return handled
}

// probe dispatches Probe to (re)populate sm.registered for the
// current (state, substate), first resetting it to keep (the bits
// that survive this change) so the ladder only adds bits that apply
// to this position.
func (sm *StateMachine) probe(ctx context.Context, keep vocabulary.RegisteredEvents) {
	sm.registered = keep
	sm.dispatch(ctx, vocabulary.Probe, nil)
}

// Reset (re)initializes the machine: runs Probe + Enter for its
// current (state, substate) as if freshly pushed. §4.5.
func (sm *StateMachine) Reset(ctx context.Context) {
	sm.currentSubstate = vocabulary.NoSubstate
	sm.changeKind = noChange
	sm.changeAllowed = true
	sm.stateStack = nil
	sm.stateVars = nil
	sm.substateVars = nil
	sm.timeOnEnterState = sm.now()
	sm.timeOnEnterSubstate = sm.now()
	sm.probe(ctx, 0)
	if sm.Has(vocabulary.Enter, vocabulary.Machine) || sm.Has(vocabulary.Enter, vocabulary.State) || sm.Has(vocabulary.Enter, vocabulary.Substate) {
		sm.dispatch(ctx, vocabulary.Enter, nil)
	}
}

// Update dispatches Update (gated by registered Update handlers) then
// always runs PerformStateChanges. §4.1 "Update".
func (sm *StateMachine) Update(ctx context.Context) {
	if sm.Has(vocabulary.Update, vocabulary.Machine) || sm.Has(vocabulary.Update, vocabulary.State) || sm.Has(vocabulary.Update, vocabulary.Substate) {
		sm.dispatch(ctx, vocabulary.Update, nil)
	}
	sm.PerformStateChanges(ctx)
}

// Message dispatches a delivered router.Message, CC'ing it first if a
// CC receiver is configured, then always runs PerformStateChanges.
// §4.1 "Message".
//
// The self-addressed delayed-transition messages (§4.2) are
// intercepted here rather than handed to the TransitionFunc: they are
// a runtime mechanism, not part of the user-facing vocabulary.
func (sm *StateMachine) Message(ctx context.Context, msg *router.Message) {
	if msg.Name == vocabulary.ChangeStateDelayedMsg {
		if p, ok := msg.Payload.(delayedStatePayload); ok {
			sm.ChangeState(p.State)
			sm.PerformStateChanges(ctx)
			return
		}
	}
	if msg.Name == vocabulary.ChangeSubstateDelayedMsg {
		if p, ok := msg.Payload.(delayedSubstatePayload); ok {
			sm.ChangeSubstate(p.Substate)
			sm.PerformStateChanges(ctx)
			return
		}
	}
	if sm.ccConfigured && sm.router != nil && !msg.IsCC {
		sm.router.Send(0, sm.now(), msg.Name, sm.ccReceiver, sm.owner, vocabulary.Machine, 0, vocabulary.AllQueues, msg.Payload, false, true)
	}
	sm.dispatch(ctx, vocabulary.Message, msg)
	sm.PerformStateChanges(ctx)
}

// SetCCReceiver configures receiver to get a parallel copy of every
// Message this machine processes. ClearCCReceiver removes it. §4.6 "CC".
func (sm *StateMachine) SetCCReceiver(receiver vocabulary.AgentId) {
	sm.ccReceiver = receiver
	sm.ccConfigured = true
}

func (sm *StateMachine) ClearCCReceiver() {
	sm.ccConfigured = false
	sm.ccReceiver = 0
}

// BroadcastAddToList, BroadcastClearList manage the machine-local
// recipient set used by SendMsgBroadcastToList. §4.6 "Broadcast-to-list".
func (sm *StateMachine) BroadcastAddToList(id vocabulary.AgentId) {
	sm.broadcastList = append(sm.broadcastList, id)
}

func (sm *StateMachine) BroadcastClearList() {
	sm.broadcastList = nil
}
