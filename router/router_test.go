package router_test

import (
	"context"
	"testing"

	"github.com/meridianlabs/agentfsm/router"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

const helloName vocabulary.MessageName = "hello"

type fakeTarget struct {
	stateScope, substateScope uint32
	queues                    []vocabulary.QueueIndex
	delivered                 []*router.Message
}

func (t *fakeTarget) Scope(vocabulary.QueueIndex) (uint32, uint32, bool) {
	return t.stateScope, t.substateScope, true
}

func (t *fakeTarget) Queues() []vocabulary.QueueIndex { return t.queues }

func (t *fakeTarget) Deliver(ctx context.Context, queue vocabulary.QueueIndex, m *router.Message) bool {
	t.delivered = append(t.delivered, m)
	return true
}

type fakeLookup struct {
	agents map[vocabulary.AgentId]*fakeTarget
	types  map[string][]vocabulary.AgentId
}

func (l *fakeLookup) Lookup(id vocabulary.AgentId) (router.Target, bool) {
	t, ok := l.agents[id]
	return t, ok
}

func (l *fakeLookup) IDsByType(agentType string) []vocabulary.AgentId {
	return l.types[agentType]
}

func TestTickDeliversDueMessagesOnly(t *testing.T) {
	target := &fakeTarget{queues: []vocabulary.QueueIndex{0}}
	lookup := &fakeLookup{agents: map[vocabulary.AgentId]*fakeTarget{1: target}}
	r := router.New(lookup)

	r.Send(1.0, 0, helloName, 1, 2, vocabulary.Machine, 0, 0, nil, false, false)

	r.Tick(context.Background(), 0.5)
	if len(target.delivered) != 0 {
		t.Fatalf("expected no delivery before due time, got %d", len(target.delivered))
	}

	r.Tick(context.Background(), 1.0)
	if len(target.delivered) != 1 {
		t.Fatalf("expected 1 delivery at due time, got %d", len(target.delivered))
	}
}

func TestScopeClosedDropsDelivery(t *testing.T) {
	target := &fakeTarget{stateScope: 1, queues: []vocabulary.QueueIndex{0}}
	lookup := &fakeLookup{agents: map[vocabulary.AgentId]*fakeTarget{1: target}}
	r := router.New(lookup)

	var dropped string
	r.OnDrop = func(m *router.Message, reason string) { dropped = reason }

	r.Send(0, 0, helloName, 1, 2, vocabulary.State, 999, 0, nil, false, false)
	r.Tick(context.Background(), 0)

	if len(target.delivered) != 0 {
		t.Fatalf("expected scope-closed message to be dropped, got %d deliveries", len(target.delivered))
	}
	if dropped != "scope closed" {
		t.Fatalf("expected drop reason %q, got %q", "scope closed", dropped)
	}
}

func TestTimerRearmsAfterDelivery(t *testing.T) {
	target := &fakeTarget{queues: []vocabulary.QueueIndex{0}}
	lookup := &fakeLookup{agents: map[vocabulary.AgentId]*fakeTarget{1: target}}
	r := router.New(lookup)

	r.Send(1.0, 0, helloName, 1, 1, vocabulary.Machine, 0, 0, nil, true, false)

	r.Tick(context.Background(), 1.0)
	if len(target.delivered) != 1 {
		t.Fatalf("expected first timer delivery, got %d", len(target.delivered))
	}

	r.Tick(context.Background(), 1.9)
	if len(target.delivered) != 1 {
		t.Fatalf("timer fired early, delivered=%d", len(target.delivered))
	}

	r.Tick(context.Background(), 2.0)
	if len(target.delivered) != 2 {
		t.Fatalf("expected re-armed timer to fire at t=2.0, got %d", len(target.delivered))
	}
}

func TestStopTimerRemovesPendingSelfTimer(t *testing.T) {
	target := &fakeTarget{queues: []vocabulary.QueueIndex{0}}
	lookup := &fakeLookup{agents: map[vocabulary.AgentId]*fakeTarget{1: target}}
	r := router.New(lookup)

	r.Send(1.0, 0, helloName, 1, 1, vocabulary.Machine, 0, 0, nil, true, false)
	r.StopTimer(1, 0, helloName)

	r.Tick(context.Background(), 1.0)
	if len(target.delivered) != 0 {
		t.Fatalf("expected stopped timer to never fire, got %d deliveries", len(target.delivered))
	}
}

func TestPurgeScopedKeepsMachineScope(t *testing.T) {
	target := &fakeTarget{queues: []vocabulary.QueueIndex{0}}
	lookup := &fakeLookup{agents: map[vocabulary.AgentId]*fakeTarget{1: target}}
	r := router.New(lookup)

	r.Send(1.0, 0, helloName, 1, 2, vocabulary.State, 5, 0, nil, false, false)
	r.Send(1.0, 0, helloName, 1, 2, vocabulary.Machine, 0, 0, nil, false, false)

	r.PurgeScoped(1, 0)

	if len(r.Pending()) != 1 {
		t.Fatalf("expected only the Machine-scope message to survive purge, got %d pending", len(r.Pending()))
	}
	if r.Pending()[0].ScopeRule != vocabulary.Machine {
		t.Fatalf("expected surviving message to be Machine-scope")
	}
}

func TestBroadcastSkipsSender(t *testing.T) {
	a := &fakeTarget{queues: []vocabulary.QueueIndex{0}}
	b := &fakeTarget{queues: []vocabulary.QueueIndex{0}}
	lookup := &fakeLookup{
		agents: map[vocabulary.AgentId]*fakeTarget{1: a, 2: b},
		types:  map[string][]vocabulary.AgentId{"drone": {1, 2}},
	}
	r := router.New(lookup)

	r.Broadcast(0, helloName, 1, "drone", nil)
	r.Tick(context.Background(), 0)

	if len(a.delivered) != 0 {
		t.Fatalf("expected sender to be skipped, got %d deliveries", len(a.delivered))
	}
	if len(b.delivered) != 1 {
		t.Fatalf("expected the other agent to receive the broadcast, got %d", len(b.delivered))
	}
}
