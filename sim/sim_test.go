package sim_test

import (
	"context"
	"testing"

	"github.com/meridianlabs/agentfsm/fsm"
	"github.com/meridianlabs/agentfsm/manager"
	"github.com/meridianlabs/agentfsm/registry"
	"github.com/meridianlabs/agentfsm/router"
	"github.com/meridianlabs/agentfsm/sim"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

const (
	stateX vocabulary.StateId = iota
	stateY
)

const tickMsg vocabulary.MessageName = "Tick"

// TestTimerSelfPerpetuatesStoppedByScopeChange is seed scenario 5:
// SetTimerState(0.5, Tick) fires at t=0.5,1.0,1.5; a ChangeState at
// t=1.6 bumps scope_state, so the timer's next re-armed copy (tagged
// with the old scope) is silently dropped at t=2.0.
func TestTimerSelfPerpetuatesStoppedByScopeChange(t *testing.T) {
	ctx := context.Background()
	s := sim.New()

	var ticks int
	transition := func(sm *fsm.StateMachine, event vocabulary.EventKind, msg *router.Message, qs vocabulary.StateId, qss vocabulary.SubstateId) bool {
		switch qs {
		case stateX:
			switch event {
			case vocabulary.Probe:
				sm.Register(vocabulary.Enter, vocabulary.State)
				sm.Register(vocabulary.Message, vocabulary.State)
				return true
			case vocabulary.Enter:
				sm.SetTimerState(0.5, tickMsg)
				return true
			case vocabulary.Message:
				if msg != nil && msg.Name == tickMsg {
					ticks++
					return true
				}
			}
		case vocabulary.Any:
			return event == vocabulary.Probe
		}
		return false
	}

	sm := fsm.New("x", transition, s.Router, s.Clock, stateX)
	mgr := manager.New(ctx, 1, s.Router, []*fsm.StateMachine{sm})
	s.Registry.Add(&registry.Agent{Id: 1, Type: "test", Manager: mgr})

	// Advance in 0.5s frames to t=1.5: three Tick deliveries (0.5, 1.0, 1.5).
	for i := 0; i < 3; i++ {
		s.Tick(ctx, 0.5)
	}
	if ticks != 3 {
		t.Fatalf("expected 3 ticks by t=1.5, got %d", ticks)
	}

	// At t=1.6 something drives a state change.
	s.Tick(ctx, 0.1) // now = 1.6
	sm.ChangeState(stateY)
	sm.PerformStateChanges(ctx)

	// t=2.0: the re-armed timer copy still carries the pre-change
	// scope value and must be dropped.
	s.Tick(ctx, 0.4)
	if ticks != 3 {
		t.Fatalf("expected no further ticks after scope change, got %d", ticks)
	}
	if sm.State() != stateY {
		t.Fatalf("expected state Y, got %v", sm.State())
	}
}
