package fsm

import "github.com/meridianlabs/agentfsm/vocabulary"

// TraceKind discriminates the events a Tracer receives. §4.9 (debug
// sink expansion): only dispatch attempts, successful transitions, and
// programmer-error rejections are traced - never delivery drops or
// lifecycle absorptions, which are expected and silent per §4.7.
type TraceKind int

const (
	TraceDispatch TraceKind = iota
	TraceTransition
	TraceRejected
)

// TraceEvent is one occurrence reported to a Tracer.
type TraceEvent struct {
	Kind      TraceKind
	Owner     vocabulary.AgentId
	Machine   string
	Event     vocabulary.EventKind
	State     vocabulary.StateId
	Substate  vocabulary.SubstateId
	Err       error // set only for TraceRejected
}

// Tracer receives TraceEvents as a StateMachine runs. Implemented by
// debug.LogSink and debug.WSSink; declared here (not in package debug)
// so fsm need not import it. §9 "Cyclic owner references" applies
// equally to observability seams.
type Tracer interface {
	Trace(TraceEvent)
}

// SetTracer attaches t to receive this machine's trace events. A nil
// Tracer (the default) disables tracing entirely with no overhead
// beyond the nil check.
func (sm *StateMachine) SetTracer(t Tracer) {
	sm.tracer = t
}

func (sm *StateMachine) trace(kind TraceKind, event vocabulary.EventKind, err error) {
	if sm.tracer == nil {
		return
	}
	sm.tracer.Trace(TraceEvent{
		Kind:     kind,
		Owner:    sm.owner,
		Machine:  sm.Name,
		Event:    event,
		State:    sm.currentState,
		Substate: sm.currentSubstate,
		Err:      err,
	})
}

// MultiTracer fans one machine's trace events out to several Tracers,
// for a host that wants to wire up a recorder, a debug sink, and a log
// sink on the same machine at once.
type MultiTracer []Tracer

func (m MultiTracer) Trace(ev TraceEvent) {
	for _, t := range m {
		t.Trace(ev)
	}
}

// reject runs assert(err) and, on a programmer-error rejection (assert
// returning false, meaning err != nil and we're in a release build, or
// the call site returning right after a debug-build panic never
// happens), reports it to the tracer. Callers keep their existing
// early-return behavior; reject only adds observability.
func (sm *StateMachine) reject(err error) bool {
	ok := assert(err)
	if !ok {
		sm.trace(TraceRejected, 0, err)
	}
	return ok
}
