package manager

import (
	"context"

	"github.com/meridianlabs/agentfsm/fsm"
	"github.com/meridianlabs/agentfsm/router"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

// MachineManager is one agent's bank of queues. It implements
// router.Target so a Router can deliver directly to it. §3 "Machine
// Manager".
type MachineManager struct {
	owner  vocabulary.AgentId
	router *router.Router
	queues []*Queue
}

// New creates a MachineManager for owner with one queue per entry in
// defaults; the queue count is len(defaults) and is not checked
// against vocabulary.NumQueues. Each default becomes its queue's bottom machine and is activated
// (Probe+Enter) immediately, per the invariant that a queue is never
// empty while the agent is alive.
func New(ctx context.Context, owner vocabulary.AgentId, rtr *router.Router, defaults []*fsm.StateMachine) *MachineManager {
	m := &MachineManager{owner: owner, router: rtr}
	m.queues = make([]*Queue, len(defaults))
	for i, d := range defaults {
		q := newQueue(vocabulary.QueueIndex(i), owner, rtr, d)
		q.init(ctx)
		m.queues[i] = q
	}
	return m
}

// Queue returns the queue at index, or nil if out of range.
func (m *MachineManager) Queue(index vocabulary.QueueIndex) *Queue {
	if int(index) < 0 || int(index) >= len(m.queues) {
		return nil
	}
	return m.queues[index]
}

// Tick applies each queue's pending change request (if any) and then
// ticks its active machine with an Update event. §2 "Control flow per
// tick".
func (m *MachineManager) Tick(ctx context.Context) {
	for _, q := range m.queues {
		q.applyPending(ctx)
		if top := q.Top(); top != nil {
			top.Update(ctx)
		}
	}
}

// --- router.Target ---

func (m *MachineManager) Scope(queue vocabulary.QueueIndex) (uint32, uint32, bool) {
	q := m.Queue(queue)
	if q == nil {
		return 0, 0, false
	}
	return q.Scope()
}

func (m *MachineManager) Queues() []vocabulary.QueueIndex {
	out := make([]vocabulary.QueueIndex, len(m.queues))
	for i := range m.queues {
		out[i] = vocabulary.QueueIndex(i)
	}
	return out
}

func (m *MachineManager) Deliver(ctx context.Context, queue vocabulary.QueueIndex, msg *router.Message) bool {
	q := m.Queue(queue)
	if q == nil {
		return false
	}
	top := q.Top()
	if top == nil {
		return false
	}
	top.Message(ctx, msg)
	return true
}
