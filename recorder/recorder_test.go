package recorder_test

import (
	"testing"

	"github.com/meridianlabs/agentfsm/fsm"
	"github.com/meridianlabs/agentfsm/recorder"
	"github.com/meridianlabs/agentfsm/router"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

func TestCollectorFlushResetsAccumulators(t *testing.T) {
	c := recorder.NewCollector()

	c.Trace(fsm.TraceEvent{Kind: fsm.TraceTransition, Owner: 1, Machine: "npc", State: 2, Substate: vocabulary.NoSubstate})
	c.Trace(fsm.TraceEvent{Kind: fsm.TraceDispatch, Owner: 1, Machine: "npc"}) // not a transition, ignored
	c.OnDeliver(&router.Message{Name: "hello", Sender: 1, Receiver: 2, Queue: 0})

	rec := c.Flush(7, 1.5)
	if rec.Tick != 7 || rec.Time != 1.5 {
		t.Fatalf("unexpected tick/time in record: %+v", rec)
	}
	if len(rec.Transitions) != 1 || rec.Transitions[0].Owner != 1 {
		t.Fatalf("expected exactly 1 transition record, got %+v", rec.Transitions)
	}
	if len(rec.Delivered) != 1 || rec.Delivered[0].Name != "hello" {
		t.Fatalf("expected exactly 1 delivery record, got %+v", rec.Delivered)
	}

	empty := c.Flush(8, 2.0)
	if len(empty.Transitions) != 0 || len(empty.Delivered) != 0 {
		t.Fatalf("expected Flush to reset accumulators, got %+v", empty)
	}
}
