package statetable_test

import (
	"context"
	"testing"

	"github.com/meridianlabs/agentfsm/clock"
	"github.com/meridianlabs/agentfsm/fsm"
	"github.com/meridianlabs/agentfsm/fsm/statetable"
	"github.com/meridianlabs/agentfsm/router"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

const (
	stateIdle vocabulary.StateId = iota
	stateActive
)

func TestBuildDispatchesEnterAndMessage(t *testing.T) {
	var entered bool
	var gotMsg *router.Message

	table := statetable.New().
		At(stateIdle, vocabulary.NoSubstate, statetable.Handlers{
			Enter: func(sm *fsm.StateMachine) { entered = true },
		}).
		At(stateActive, vocabulary.NoSubstate, statetable.Handlers{
			Message: func(sm *fsm.StateMachine, msg *router.Message) bool {
				gotMsg = msg
				return true
			},
		})

	clk := clock.New()
	sm := fsm.New("tabled", table.Build(), nil, clk, stateIdle)
	sm.Reset(context.Background())

	if !entered {
		t.Fatal("expected Enter handler for stateIdle to run on Reset")
	}

	sm.ChangeState(stateActive)
	sm.PerformStateChanges(context.Background())

	msg := &router.Message{Name: "ping"}
	sm.Message(context.Background(), msg)

	if gotMsg != msg {
		t.Fatal("expected Message handler for stateActive to receive the delivered message")
	}
}

func TestBuildReturnsFalseForUnregisteredState(t *testing.T) {
	table := statetable.New()
	clk := clock.New()
	sm := fsm.New("empty", table.Build(), nil, clk, stateIdle)

	// Reset should not panic even though no state is registered; it
	// simply never finds a handler to run.
	sm.Reset(context.Background())
	if sm.State() != stateIdle {
		t.Fatalf("expected state to remain %d, got %d", stateIdle, sm.State())
	}
}
