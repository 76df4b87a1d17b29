package fsm

import (
	"math/rand"

	"github.com/meridianlabs/agentfsm/clock"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

// OneFrame is the minimum positive delay representing "next tick".
// Every self-send that isn't a "Now" variant is clamped to at least
// this much. §4.3, §6 "ONE_FRAME".
var OneFrame clock.Duration = 1

// scopeValueFor returns the scope value to capture for a self-send at
// the given scope rule: scope_substate for Substate, scope_state for
// State, 0 (ignored by the Router) for Machine.
func (sm *StateMachine) scopeValueFor(scope vocabulary.ScopeRule) uint32 {
	switch scope {
	case vocabulary.Substate:
		return sm.scopeSubstate
	case vocabulary.State:
		return sm.scopeState
	default:
		return 0
	}
}

func clampDelay(delay, floor clock.Duration) clock.Duration {
	if delay < floor {
		return floor
	}
	return delay
}

func (sm *StateMachine) sendSelf(delay clock.Duration, scope vocabulary.ScopeRule, queue vocabulary.QueueIndex, name vocabulary.MessageName, payload interface{}, isTimer bool) {
	if sm.router == nil {
		return
	}
	sm.router.Send(delay, sm.now(), name, sm.owner, sm.owner, scope, sm.scopeValueFor(scope), queue, payload, isTimer, false)
}

// SendMsg sends name/payload to receiver (every queue it owns) at
// least ONE_FRAME from now. SendMsgNow bypasses the clamp and
// delivers within the current tick. SendMsgDelay sends after an
// explicit delay. External sends are always Machine scope: scope
// State/Substate only means something relative to the sender's own
// machine. §4.3 "Target: to another agent".
func (sm *StateMachine) SendMsg(receiver vocabulary.AgentId, name vocabulary.MessageName, payload interface{}) {
	sm.sendTo(OneFrame, receiver, name, payload)
}

func (sm *StateMachine) SendMsgNow(receiver vocabulary.AgentId, name vocabulary.MessageName, payload interface{}) {
	sm.sendTo(0, receiver, name, payload)
}

func (sm *StateMachine) SendMsgDelay(delay clock.Duration, receiver vocabulary.AgentId, name vocabulary.MessageName, payload interface{}) {
	sm.sendTo(delay, receiver, name, payload)
}

func (sm *StateMachine) sendTo(delay clock.Duration, receiver vocabulary.AgentId, name vocabulary.MessageName, payload interface{}) {
	if sm.router == nil {
		return
	}
	sm.router.Send(delay, sm.now(), name, receiver, sm.owner, vocabulary.Machine, 0, vocabulary.AllQueues, payload, false, false)
}

// SendMsgToSelf, SendMsgToSelfNow send a message to this machine's own
// queue, tagged with the given scope rule. §4.3 "Target: to self".
func (sm *StateMachine) SendMsgToSelf(scope vocabulary.ScopeRule, name vocabulary.MessageName, payload interface{}) {
	sm.sendSelf(OneFrame, scope, sm.queue, name, payload, false)
}

func (sm *StateMachine) SendMsgToSelfNow(scope vocabulary.ScopeRule, name vocabulary.MessageName, payload interface{}) {
	sm.sendSelf(0, scope, sm.queue, name, payload, false)
}

func (sm *StateMachine) SendMsgToSelfDelay(delay clock.Duration, scope vocabulary.ScopeRule, name vocabulary.MessageName, payload interface{}) {
	sm.sendSelf(clampDelay(delay, OneFrame), scope, sm.queue, name, payload, false)
}

// SendMsgToQueue, SendMsgToQueueNow address a named queue on self.
// §4.3 "Target: to named queue on self".
func (sm *StateMachine) SendMsgToQueue(queue vocabulary.QueueIndex, scope vocabulary.ScopeRule, name vocabulary.MessageName, payload interface{}) {
	sm.sendSelf(OneFrame, scope, queue, name, payload, false)
}

func (sm *StateMachine) SendMsgToQueueNow(queue vocabulary.QueueIndex, scope vocabulary.ScopeRule, name vocabulary.MessageName, payload interface{}) {
	sm.sendSelf(0, scope, queue, name, payload, false)
}

// SendMsgToAllQueues addresses every queue this agent owns. §4.3
// "Target: to all queues on self".
func (sm *StateMachine) SendMsgToAllQueues(scope vocabulary.ScopeRule, name vocabulary.MessageName, payload interface{}) {
	sm.sendSelf(OneFrame, scope, vocabulary.AllQueues, name, payload, false)
}

func (sm *StateMachine) SendMsgToAllQueuesNow(scope vocabulary.ScopeRule, name vocabulary.MessageName, payload interface{}) {
	sm.sendSelf(0, scope, vocabulary.AllQueues, name, payload, false)
}

// SendMsgToOtherQueues addresses every queue this agent owns except
// the sending machine's own. §4.3 "Target: to all other queues on
// self". vocabulary.AllQueues can't express "all but mine", so this
// fans out one Send per queue index instead.
func (sm *StateMachine) SendMsgToOtherQueues(scope vocabulary.ScopeRule, name vocabulary.MessageName, payload interface{}) {
	for q := vocabulary.QueueIndex(0); int(q) < vocabulary.NumQueues; q++ {
		if q == sm.queue {
			continue
		}
		sm.sendSelf(OneFrame, scope, q, name, payload, false)
	}
}

// SendMsgBroadcast, SendMsgBroadcastNow enumerate the agent registry
// by type (via the Router's AgentLookup) and schedule a copy per
// recipient, excluding the sender. §4.3, §4.6 "Broadcast".
func (sm *StateMachine) SendMsgBroadcast(name vocabulary.MessageName, agentType string, payload interface{}) {
	if sm.router == nil {
		return
	}
	sm.router.Broadcast(sm.now()+clock.Time(OneFrame), name, sm.owner, agentType, payload)
}

func (sm *StateMachine) SendMsgBroadcastNow(name vocabulary.MessageName, agentType string, payload interface{}) {
	if sm.router == nil {
		return
	}
	sm.router.Broadcast(sm.now(), name, sm.owner, agentType, payload)
}

// SendMsgBroadcastToList, SendMsgBroadcastToListNow send to this
// machine's broadcast_list (see BroadcastAddToList). §4.6
// "Broadcast-to-list".
func (sm *StateMachine) SendMsgBroadcastToList(name vocabulary.MessageName, payload interface{}) {
	if sm.router == nil {
		return
	}
	sm.router.BroadcastToList(sm.now()+clock.Time(OneFrame), name, sm.owner, sm.broadcastList, payload)
}

func (sm *StateMachine) SendMsgBroadcastToListNow(name vocabulary.MessageName, payload interface{}) {
	if sm.router == nil {
		return
	}
	sm.router.BroadcastToList(sm.now(), name, sm.owner, sm.broadcastList, payload)
}

// SetTimerSubstate, SetTimerState, SetTimerMachine arm a recurring
// self-message: the Router re-arms a fresh copy at the same delay
// every time one is successfully delivered, until StopTimer purges it
// or its scope closes. §4.3 "Timers".
//
// Per this specification's explicit text (§9 Open question (a)),
// SetTimerState uses State scope, not the source's apparent
// Substate copy-paste.
func (sm *StateMachine) SetTimerSubstate(delay clock.Duration, name vocabulary.MessageName) {
	sm.sendSelf(delay, vocabulary.Substate, sm.queue, name, nil, true)
}

func (sm *StateMachine) SetTimerState(delay clock.Duration, name vocabulary.MessageName) {
	sm.sendSelf(delay, vocabulary.State, sm.queue, name, nil, true)
}

func (sm *StateMachine) SetTimerMachine(delay clock.Duration, name vocabulary.MessageName) {
	sm.sendSelf(delay, vocabulary.Machine, sm.queue, name, nil, true)
}

// StopTimer purges every pending self-addressed timer message with
// name targeting this machine's queue.
func (sm *StateMachine) StopTimer(name vocabulary.MessageName) {
	if sm.router == nil {
		return
	}
	sm.router.StopTimer(sm.owner, sm.queue, name)
}

// RandDelay returns a value uniform in [min, max]. Requires
// 0 <= min <= max; an out-of-order range is a programmer error (§6
// "Numeric contracts") and returns min unchanged in release builds.
func (sm *StateMachine) RandDelay(min, max clock.Duration) clock.Duration {
	if min < 0 || max < min {
		sm.reject(&InvalidRandDelayRange{Min: min, Max: max})
		return min
	}
	if min == max {
		return min
	}
	span := float64(max - min)
	return min + clock.Duration(rand.Float64()*span)
}

// InvalidRandDelayRange occurs when RandDelay is called with max <
// min or a negative min.
type InvalidRandDelayRange struct {
	Min, Max clock.Duration
}

func (e *InvalidRandDelayRange) Error() string {
	return "invalid RandDelay range"
}
