package registry_test

import (
	"context"
	"testing"

	"github.com/meridianlabs/agentfsm/clock"
	"github.com/meridianlabs/agentfsm/fsm"
	"github.com/meridianlabs/agentfsm/manager"
	"github.com/meridianlabs/agentfsm/registry"
	"github.com/meridianlabs/agentfsm/router"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

const stateIdle vocabulary.StateId = 0

const helloMsg vocabulary.MessageName = "hello"

type recvCounter struct{ n int }

func npcTransition(c *recvCounter) fsm.TransitionFunc {
	return func(sm *fsm.StateMachine, event vocabulary.EventKind, msg *router.Message, qs vocabulary.StateId, qss vocabulary.SubstateId) bool {
		if event == vocabulary.Probe {
			sm.Register(vocabulary.Message, vocabulary.Machine)
			return true
		}
		if event == vocabulary.Message && msg != nil && msg.Name == helloMsg {
			c.n++
			return true
		}
		return true
	}
}

// TestBroadcastByTypeExcludesSender is seed scenario 6: a broadcast
// by type reaches every other live agent of that type, never the
// sender. §4.6 "Broadcast".
func TestBroadcastByTypeExcludesSender(t *testing.T) {
	ctx := context.Background()
	clk := clock.New()
	reg := registry.New()
	rtr := router.New(reg)

	const n = 5
	counters := make([]*recvCounter, n)
	machines := make([]*fsm.StateMachine, n)
	for i := 0; i < n; i++ {
		counters[i] = &recvCounter{}
		sm := fsm.New("npc", npcTransition(counters[i]), rtr, clk, stateIdle)
		machines[i] = sm
		mgr := manager.New(ctx, vocabulary.AgentId(i+1), rtr, []*fsm.StateMachine{sm})
		reg.Add(&registry.Agent{Id: vocabulary.AgentId(i + 1), Type: "NPC", Manager: mgr})
	}

	sender := machines[0]
	sender.SendMsgBroadcastNow(helloMsg, "NPC", nil)
	rtr.Tick(ctx, clk.Now())

	if counters[0].n != 0 {
		t.Fatalf("sender should not receive its own broadcast, got %d", counters[0].n)
	}
	for i := 1; i < n; i++ {
		if counters[i].n != 1 {
			t.Fatalf("npc %d expected exactly 1 hello, got %d", i, counters[i].n)
		}
	}
}

// TestMarkedForDeletionIsUnreachable checks §3/§4.7: Lookup hides a
// deleted agent, so Router delivery is silently dropped.
func TestMarkedForDeletionIsUnreachable(t *testing.T) {
	ctx := context.Background()
	clk := clock.New()
	reg := registry.New()
	rtr := router.New(reg)

	c := &recvCounter{}
	sm := fsm.New("npc", npcTransition(c), rtr, clk, stateIdle)
	mgr := manager.New(ctx, 1, rtr, []*fsm.StateMachine{sm})
	reg.Add(&registry.Agent{Id: 1, Type: "NPC", Manager: mgr})
	reg.MarkForDeletion(1)

	rtr.Send(0, clk.Now(), helloMsg, 1, 2, vocabulary.Machine, 0, vocabulary.AllQueues, nil, false, false)
	rtr.Tick(ctx, clk.Now())

	if c.n != 0 {
		t.Fatalf("deleted agent should not receive messages, got %d", c.n)
	}
}
