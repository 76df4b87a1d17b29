package debug_test

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/meridianlabs/agentfsm/clock"
	"github.com/meridianlabs/agentfsm/debug"
	"github.com/meridianlabs/agentfsm/fsm"
	"github.com/meridianlabs/agentfsm/router"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

const stateA vocabulary.StateId = 0

func TestLogSinkTracesEnter(t *testing.T) {
	ctx := context.Background()
	clk := clock.New()
	rtr := router.New(nil)

	transition := func(sm *fsm.StateMachine, event vocabulary.EventKind, msg *router.Message, qs vocabulary.StateId, qss vocabulary.SubstateId) bool {
		if event == vocabulary.Probe {
			sm.Register(vocabulary.Enter, vocabulary.Machine)
			return true
		}
		return event == vocabulary.Enter
	}

	sm := fsm.New("x", transition, rtr, clk, stateA)

	var buf bytes.Buffer
	sink := debug.NewLogSink(log.New(&buf, "", 0))
	sm.SetTracer(sink)

	sm.Reset(ctx)

	if buf.Len() == 0 {
		t.Fatal("expected LogSink to have written at least one line")
	}
}

func TestRejectedChangeIsTraced(t *testing.T) {
	ctx := context.Background()
	_ = ctx
	clk := clock.New()
	rtr := router.New(nil)

	transition := func(sm *fsm.StateMachine, event vocabulary.EventKind, msg *router.Message, qs vocabulary.StateId, qss vocabulary.SubstateId) bool {
		return true
	}
	sm := fsm.New("x", transition, rtr, clk, stateA)

	var got []fsm.TraceEvent
	sink := recordingSink(func(ev fsm.TraceEvent) { got = append(got, ev) })
	sm.SetTracer(sink)

	sm.ChangeState(stateA)
	sm.ChangeState(stateA) // second pending request: rejected in release builds

	found := false
	for _, ev := range got {
		if ev.Kind == fsm.TraceRejected {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a TraceRejected event for the second pending change request")
	}
}

type recordingSink func(fsm.TraceEvent)

func (r recordingSink) Trace(ev fsm.TraceEvent) { r(ev) }
