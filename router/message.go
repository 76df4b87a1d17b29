package router

import (
	"github.com/meridianlabs/agentfsm/clock"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

// Message is one in-flight message. §3 "Message".
type Message struct {
	Name     vocabulary.MessageName
	Sender   vocabulary.AgentId
	Receiver vocabulary.AgentId

	// ScopeRule and ScopeValue together make the message "valid at
	// delivery" conditional on the receiving machine's scope not
	// having moved on. ScopeValue is ignored when ScopeRule is
	// Machine.
	ScopeRule  vocabulary.ScopeRule
	ScopeValue uint32

	// Queue is the target queue, or vocabulary.AllQueues to reach
	// every queue the receiver owns.
	Queue vocabulary.QueueIndex

	Payload interface{}

	DeliverAt clock.Time

	// IsTimer marks a message that re-arms a fresh copy of itself
	// (same delay, same scope) every time it is successfully
	// delivered, until StopTimer purges it or its scope closes.
	IsTimer    bool
	timerDelay clock.Duration

	// IsCC marks a message as a parallel trace copy sent to a
	// machine's configured CC receiver; CC copies are never
	// themselves CC'd again.
	IsCC bool

	seq uint64 // insertion order, for FIFO delivery among equal DeliverAt
}

// copyAt returns a shallow copy of m with a fresh delivery time, used
// both for explicit resends and for timer re-arming.
func (m *Message) copyAt(at clock.Time) *Message {
	cp := *m
	cp.DeliverAt = at
	return &cp
}
