package router

import (
	"context"
	"sync"

	"github.com/meridianlabs/agentfsm/clock"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

// Target is the delivery surface a Router needs from whatever owns a
// receiving agent's machines — implemented by manager.MachineManager.
type Target interface {
	// Scope reports the current (scope_state, scope_substate) of
	// the top machine on queue, and whether a machine is actually
	// there (ok is false for an empty/unknown queue).
	Scope(queue vocabulary.QueueIndex) (stateScope, substateScope uint32, ok bool)

	// Queues lists every queue this Target owns, for AllQueues
	// expansion.
	Queues() []vocabulary.QueueIndex

	// Deliver dispatches a Message event carrying msg.Payload to
	// the top machine of queue. Returns false if there was nothing
	// to deliver to.
	Deliver(ctx context.Context, queue vocabulary.QueueIndex, msg *Message) bool
}

// AgentLookup resolves receivers and enumerates agents by type for
// broadcast. Implemented by registry.Registry.
type AgentLookup interface {
	// Lookup returns the Target for id. ok is false if the agent
	// doesn't exist or is marked for deletion — both cases are
	// "discard silently" per §4.6/§4.7.
	Lookup(id vocabulary.AgentId) (Target, bool)

	// IDsByType returns the ids of every live, non-deleted agent of
	// the given type, for SendMsgBroadcast.
	IDsByType(agentType string) []vocabulary.AgentId
}

// Router holds every in-flight message. §4.6.
type Router struct {
	mu       sync.RWMutex
	pending  []*Message
	nextSeq  uint64
	lookup   AgentLookup
	OnDrop   func(m *Message, reason string) // optional debug hook, called for every dropped delivery (receiver gone, scope closed); nil by default
	OnDeliv  func(m *Message)                // optional trace hook for successful delivery
}

// New creates a Router that resolves receivers via lookup.
func New(lookup AgentLookup) *Router {
	return &Router{lookup: lookup}
}

// SetLookup (re)binds the AgentLookup, for harnesses that construct
// Router before Registry exists.
func (r *Router) SetLookup(lookup AgentLookup) {
	r.mu.Lock()
	r.lookup = lookup
	r.mu.Unlock()
}

// Schedule enqueues m for delivery at m.DeliverAt (possibly now).
func (r *Router) Schedule(m *Message) {
	r.mu.Lock()
	r.nextSeq++
	m.seq = r.nextSeq
	r.pending = append(r.pending, m)
	r.mu.Unlock()
}

// Send is the one funnel every convenience wrapper in fsm goes
// through. §4.3.
func (r *Router) Send(delay clock.Duration, now clock.Time, name vocabulary.MessageName, receiver, sender vocabulary.AgentId, scopeRule vocabulary.ScopeRule, scopeValue uint32, queue vocabulary.QueueIndex, payload interface{}, isTimer, isCC bool) {
	m := &Message{
		Name:       name,
		Sender:     sender,
		Receiver:   receiver,
		ScopeRule:  scopeRule,
		ScopeValue: scopeValue,
		Queue:      queue,
		Payload:    payload,
		DeliverAt:  now + clock.Time(delay),
		IsTimer:    isTimer,
		timerDelay: delay,
		IsCC:       isCC,
	}
	r.Schedule(m)
}

// Tick delivers every message due at or before now, then removes
// delivered and invalidated messages, re-arming timers that were
// successfully delivered. §4.6. Messages scheduled by handlers while
// Tick is delivering stay pending for a later Tick.
func (r *Router) Tick(ctx context.Context, now clock.Time) {
	r.mu.Lock()
	due := r.pending[:0:0]
	keep := r.pending[:0:0]
	for _, m := range r.pending {
		if m.DeliverAt <= now {
			due = append(due, m)
		} else {
			keep = append(keep, m)
		}
	}
	r.pending = keep
	lookup := r.lookup
	r.mu.Unlock()

	var rearm []*Message

	for _, m := range due {
		delivered := r.attemptDeliver(ctx, lookup, m)
		if delivered && m.IsTimer {
			rearm = append(rearm, m.copyAt(now+clock.Time(m.timerDelay)))
		}
	}

	for _, m := range rearm {
		r.Schedule(m)
	}
}

// attemptDeliver implements §4.6 step 1: existence/deletion check,
// queue fan-out, scope validation, dispatch.
func (r *Router) attemptDeliver(ctx context.Context, lookup AgentLookup, m *Message) bool {
	if lookup == nil {
		return false
	}
	target, ok := lookup.Lookup(m.Receiver)
	if !ok {
		r.drop(m, "receiver gone or deleted")
		return false
	}

	queues := []vocabulary.QueueIndex{m.Queue}
	if m.Queue == vocabulary.AllQueues {
		queues = target.Queues()
	}

	delivered := false
	for _, q := range queues {
		stateScope, substateScope, ok := target.Scope(q)
		if !ok {
			continue
		}
		if !scopeValid(m, stateScope, substateScope) {
			r.drop(m, "scope closed")
			continue
		}
		if target.Deliver(ctx, q, m) {
			delivered = true
			if r.OnDeliv != nil {
				r.OnDeliv(m)
			}
		}
	}
	return delivered
}

func scopeValid(m *Message, stateScope, substateScope uint32) bool {
	switch m.ScopeRule {
	case vocabulary.Substate:
		return m.ScopeValue == substateScope
	case vocabulary.State:
		return m.ScopeValue == stateScope
	default: // vocabulary.Machine
		return true
	}
}

func (r *Router) drop(m *Message, reason string) {
	// §7: delivery-dropped is expected and never logged by
	// default. OnDrop exists purely as an opt-in debug hook.
	if r.OnDrop != nil {
		r.OnDrop(m, reason)
	}
}

// PurgeScoped removes every pending message targeting (agent, queue)
// (or AllQueues) whose ScopeRule is State or Substate. Machine-scope
// self messages survive. §4.5, §4.6.
func (r *Router) PurgeScoped(agent vocabulary.AgentId, queue vocabulary.QueueIndex) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keep := r.pending[:0:0]
	for _, m := range r.pending {
		if m.Receiver == agent && (m.Queue == queue || m.Queue == vocabulary.AllQueues) &&
			(m.ScopeRule == vocabulary.State || m.ScopeRule == vocabulary.Substate) {
			continue
		}
		keep = append(keep, m)
	}
	r.pending = keep
}

// StopTimer removes every pending self-addressed (sender==receiver)
// timer message targeting (agent, queue) with the given name. §4.3.
func (r *Router) StopTimer(agent vocabulary.AgentId, queue vocabulary.QueueIndex, name vocabulary.MessageName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keep := r.pending[:0:0]
	for _, m := range r.pending {
		if m.IsTimer && m.Receiver == agent && m.Sender == agent &&
			(m.Queue == queue || m.Queue == vocabulary.AllQueues) && m.Name == name {
			continue
		}
		keep = append(keep, m)
	}
	r.pending = keep
}

// Broadcast schedules an immediate copy of a message to every live
// agent of agentType except sender. §4.6 "Broadcast".
func (r *Router) Broadcast(now clock.Time, name vocabulary.MessageName, sender vocabulary.AgentId, agentType string, payload interface{}) {
	r.mu.RLock()
	lookup := r.lookup
	r.mu.RUnlock()
	if lookup == nil {
		return
	}
	for _, id := range lookup.IDsByType(agentType) {
		if id == sender {
			continue
		}
		r.Send(0, now, name, id, sender, vocabulary.Machine, 0, vocabulary.AllQueues, payload, false, false)
	}
}

// BroadcastToList schedules an immediate copy of a message to every
// id in list except sender. §4.6 "Broadcast-to-list".
func (r *Router) BroadcastToList(now clock.Time, name vocabulary.MessageName, sender vocabulary.AgentId, list []vocabulary.AgentId, payload interface{}) {
	for _, id := range list {
		if id == sender {
			continue
		}
		r.Send(0, now, name, id, sender, vocabulary.Machine, 0, vocabulary.AllQueues, payload, false, false)
	}
}

// Pending returns a snapshot copy of the currently in-flight messages,
// for debug/inspection use only.
func (r *Router) Pending() []*Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := make([]*Message, len(r.pending))
	copy(cp, r.pending)
	return cp
}
