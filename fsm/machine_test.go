package fsm_test

import (
	"context"
	"testing"

	"github.com/meridianlabs/agentfsm/clock"
	"github.com/meridianlabs/agentfsm/fsm"
	"github.com/meridianlabs/agentfsm/router"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

// noopHandle satisfies fsm.QueueHandle for machines not bound to a
// real manager.Queue in these unit tests.
type noopHandle struct{}

func (noopHandle) RequestReset()                    {}
func (noopHandle) RequestReplace(*fsm.StateMachine) {}
func (noopHandle) RequestQueue(*fsm.StateMachine)   {}
func (noopHandle) RequestRequeue()                  {}
func (noopHandle) RequestPush(*fsm.StateMachine)    {}
func (noopHandle) RequestPop()                      {}

// singleTarget adapts one *fsm.StateMachine to router.Target, with a
// single queue (0), for tests that exercise Router delivery without a
// full manager.MachineManager.
type singleTarget struct {
	sm  *fsm.StateMachine
	ctx context.Context
}

func (t *singleTarget) Scope(queue vocabulary.QueueIndex) (uint32, uint32, bool) {
	if queue != 0 {
		return 0, 0, false
	}
	return t.sm.ScopeState(), t.sm.ScopeSubstate(), true
}

func (t *singleTarget) Queues() []vocabulary.QueueIndex { return []vocabulary.QueueIndex{0} }

func (t *singleTarget) Deliver(ctx context.Context, queue vocabulary.QueueIndex, msg *router.Message) bool {
	if queue != 0 {
		return false
	}
	t.sm.Message(ctx, msg)
	return true
}

type singleLookup struct {
	id     vocabulary.AgentId
	target *singleTarget
}

func (l *singleLookup) Lookup(id vocabulary.AgentId) (router.Target, bool) {
	if id != l.id {
		return nil, false
	}
	return l.target, true
}

func (l *singleLookup) IDsByType(string) []vocabulary.AgentId { return nil }

const (
	stateInit vocabulary.StateId = iota
	stateIdle
	stateA
	stateB
	stateC
)

// ladderProbeFunc builds a TransitionFunc that records, via calls, which
// tier of the three-tier ladder actually handled each event.
func ladderProbeFunc(calls *[]string) fsm.TransitionFunc {
	return func(sm *fsm.StateMachine, event vocabulary.EventKind, msg *router.Message, qs vocabulary.StateId, qss vocabulary.SubstateId) bool {
		switch {
		case qs == stateInit && qss == vocabulary.NoSubstate:
			if event == vocabulary.Probe {
				sm.Register(vocabulary.Enter, vocabulary.State)
				return true
			}
			if event == vocabulary.Enter {
				*calls = append(*calls, "state-enter")
				return true
			}
		case qs == vocabulary.Any:
			if event == vocabulary.Probe {
				sm.Register(vocabulary.Enter, vocabulary.Machine)
				return true
			}
			if event == vocabulary.Enter {
				*calls = append(*calls, "global-enter")
				return true
			}
		}
		return false
	}
}

func TestLadderStopsAtFirstHandled(t *testing.T) {
	var calls []string
	clk := clock.New()
	sm := fsm.New("ladder", ladderProbeFunc(&calls), nil, clk, stateInit)
	sm.Bind(1, 0, noopHandle{})
	sm.Reset(context.Background())

	if len(calls) != 1 || calls[0] != "state-enter" {
		t.Fatalf("expected state-enter only, got %v", calls)
	}
}

// patrolTransition is a small two-state machine used across several
// tests: Init enters and (optionally) schedules a delayed transition
// to Idle; Idle counts Enter calls.
type patrolCounters struct {
	initEnters, idleEnters, idleExits int
}

func patrolTransition(c *patrolCounters, delayToIdle clock.Duration) fsm.TransitionFunc {
	return func(sm *fsm.StateMachine, event vocabulary.EventKind, msg *router.Message, qs vocabulary.StateId, qss vocabulary.SubstateId) bool {
		switch qs {
		case stateInit:
			switch event {
			case vocabulary.Probe:
				sm.Register(vocabulary.Enter, vocabulary.State)
				return true
			case vocabulary.Enter:
				c.initEnters++
				if delayToIdle > 0 {
					sm.ChangeStateDelayed(delayToIdle, stateIdle)
				}
				return true
			}
		case stateIdle:
			switch event {
			case vocabulary.Probe:
				sm.Register(vocabulary.Enter, vocabulary.State)
				sm.Register(vocabulary.Exit, vocabulary.State)
				return true
			case vocabulary.Enter:
				c.idleEnters++
				return true
			case vocabulary.Exit:
				c.idleExits++
				return true
			}
		case vocabulary.Any:
			if event == vocabulary.Probe {
				return true
			}
		}
		return false
	}
}

// TestDelayedTransitionHonored is seed scenario 1: Init's Enter
// schedules ChangeStateDelayed(1.0, Idle); at t=1.0 the machine is in
// Idle and Idle's Enter ran exactly once.
func TestDelayedTransitionHonored(t *testing.T) {
	clk := clock.New()
	var c patrolCounters
	lookup := &singleLookup{id: 1}
	r := router.New(lookup)
	sm := fsm.New("patrol", patrolTransition(&c, 1), r, clk, stateInit)
	sm.Bind(1, 0, noopHandle{})
	lookup.target = &singleTarget{sm: sm}

	sm.Reset(context.Background())
	if c.initEnters != 1 {
		t.Fatalf("expected 1 init enter, got %d", c.initEnters)
	}

	clk.Advance(1)
	r.Tick(context.Background(), clk.Now())

	if sm.State() != stateIdle {
		t.Fatalf("expected Idle, got %v", sm.State())
	}
	if c.idleEnters != 1 {
		t.Fatalf("expected exactly 1 idle enter, got %d", c.idleEnters)
	}
}

// TestDelayedTransitionCancelledByInterveningChange is seed scenario
// 2: an intervening ChangeState before the delayed message's deadline
// bumps scope_state, so the stale delayed message is dropped.
func TestDelayedTransitionCancelledByInterveningChange(t *testing.T) {
	clk := clock.New()
	var c patrolCounters
	lookup := &singleLookup{id: 1}
	r := router.New(lookup)
	sm := fsm.New("patrol", patrolTransition(&c, 2), r, clk, stateInit)
	sm.Bind(1, 0, noopHandle{})
	lookup.target = &singleTarget{sm: sm}

	sm.Reset(context.Background())

	clk.Advance(1)
	r.Tick(context.Background(), clk.Now())
	sm.ChangeState(stateC)
	sm.PerformStateChanges(context.Background())

	clk.Advance(1) // now at simulated t=2
	r.Tick(context.Background(), clk.Now())

	if sm.State() != stateC {
		t.Fatalf("expected state to remain C, got %v", sm.State())
	}
}

// TestPopStateUnderflow is seed scenario 3: PopState with an empty
// state_stack is absorbed in release builds: state unchanged.
func TestPopStateUnderflow(t *testing.T) {
	clk := clock.New()
	var c patrolCounters
	sm := fsm.New("patrol", patrolTransition(&c, 0), nil, clk, stateInit)
	sm.Bind(1, 0, noopHandle{})
	sm.Reset(context.Background())

	sm.PopState()
	sm.PerformStateChanges(context.Background())

	if sm.State() != stateInit {
		t.Fatalf("expected state unchanged at Init, got %v", sm.State())
	}
}

// TestSubstateChangePreservesStateVars checks §8's invariant: after a
// substate change, state-scoped variables survive and substate-scoped
// variables are wiped.
func TestSubstateChangePreservesStateVars(t *testing.T) {
	clk := clock.New()
	transition := func(sm *fsm.StateMachine, event vocabulary.EventKind, msg *router.Message, qs vocabulary.StateId, qss vocabulary.SubstateId) bool {
		if event == vocabulary.Probe {
			return true
		}
		return true
	}
	sm := fsm.New("vars", transition, nil, clk, stateInit)
	sm.Bind(1, 0, noopHandle{})
	sm.Reset(context.Background())

	sm.SetVariableInt(vocabulary.StateScope, 0, 42)
	sm.SetVariableInt(vocabulary.SubstateScope, 0, 7)

	sm.ChangeSubstate(1)
	sm.PerformStateChanges(context.Background())

	if v, ok := sm.GetVariableInt(vocabulary.StateScope, 0); !ok || v != 42 {
		t.Fatalf("state var should survive substate change, got %v, %v", v, ok)
	}
	if _, ok := sm.GetVariableInt(vocabulary.SubstateScope, 0); ok {
		t.Fatalf("substate var should be wiped by substate change")
	}
	if sm.Substate() != 1 {
		t.Fatalf("expected substate 1, got %v", sm.Substate())
	}
}

// TestStateChangeWipesBothScopes checks that a full state change wipes
// both state- and substate-scoped variables and that current_substate
// becomes none.
func TestStateChangeWipesBothScopes(t *testing.T) {
	clk := clock.New()
	transition := func(sm *fsm.StateMachine, event vocabulary.EventKind, msg *router.Message, qs vocabulary.StateId, qss vocabulary.SubstateId) bool {
		return true
	}
	sm := fsm.New("vars2", transition, nil, clk, stateInit)
	sm.Bind(1, 0, noopHandle{})
	sm.Reset(context.Background())

	sm.SetVariableInt(vocabulary.StateScope, 0, 42)
	sm.SetVariableInt(vocabulary.SubstateScope, 0, 7)
	sm.ChangeState(stateA)
	sm.PerformStateChanges(context.Background())

	if sm.Substate() != vocabulary.NoSubstate {
		t.Fatalf("expected no substate after full state change, got %v", sm.Substate())
	}
	if _, ok := sm.GetVariableInt(vocabulary.StateScope, 0); ok {
		t.Fatalf("state var should be wiped by a full state change")
	}
	if _, ok := sm.GetVariableInt(vocabulary.SubstateScope, 0); ok {
		t.Fatalf("substate var should be wiped by a full state change")
	}
}

// TestStateStackCap checks §8's invariant: state_stack never exceeds
// MAX_STATE_STACK.
func TestStateStackCap(t *testing.T) {
	clk := clock.New()
	transition := func(sm *fsm.StateMachine, event vocabulary.EventKind, msg *router.Message, qs vocabulary.StateId, qss vocabulary.SubstateId) bool {
		return true
	}
	sm := fsm.New("stack", transition, nil, clk, stateInit)
	sm.Bind(1, 0, noopHandle{})
	sm.Reset(context.Background())

	for i := 0; i < vocabulary.MaxStateStack+5; i++ {
		sm.ChangeState(vocabulary.StateId(i + 100))
		sm.PerformStateChanges(context.Background())
	}

	if got := sm.StateStackLen(); got > vocabulary.MaxStateStack {
		t.Fatalf("state_stack grew beyond cap: %d", got)
	}
}
