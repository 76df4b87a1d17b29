package fsm

import (
	"context"

	"github.com/meridianlabs/agentfsm/clock"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

// delayedStatePayload/delayedSubstatePayload are the payloads carried
// by the self-addressed CHANGE_STATE_DELAYED/CHANGE_SUBSTATE_DELAYED
// messages. §4.2 "Delayed transitions".
type delayedStatePayload struct{ State vocabulary.StateId }
type delayedSubstatePayload struct{ Substate vocabulary.SubstateId }

// ChangeState requests a full state change, applied by the next
// PerformStateChanges. Rejected (§4.7) if called from Exit or while
// another change is already pending.
func (sm *StateMachine) ChangeState(next vocabulary.StateId) {
	if sm.inExit {
		sm.reject(&ChangeDuringExit{Owner: sm.Name})
		return
	}
	if sm.changeKind != noChange {
		sm.reject(&ChangeAlreadyPending{Owner: sm.Name})
		return
	}
	sm.changeKind = changeChange
	sm.nextState = next
	sm.nextSubstate = vocabulary.NoSubstate
}

// ChangeSubstate requests a substate-only change: current_state is
// unaffected, state-scoped variables survive.
func (sm *StateMachine) ChangeSubstate(next vocabulary.SubstateId) {
	if sm.inExit {
		sm.reject(&ChangeDuringExit{Owner: sm.Name})
		return
	}
	if sm.changeKind != noChange {
		sm.reject(&ChangeAlreadyPending{Owner: sm.Name})
		return
	}
	sm.changeKind = changeChange
	sm.nextState = sm.currentState
	sm.nextSubstate = next
}

// PopState requests restoring the most recently pushed state from
// state_stack. The stack-empty check happens at apply time (§3), not
// here.
func (sm *StateMachine) PopState() {
	if sm.inExit {
		sm.reject(&ChangeDuringExit{Owner: sm.Name})
		return
	}
	if sm.changeKind != noChange {
		sm.reject(&ChangeAlreadyPending{Owner: sm.Name})
		return
	}
	sm.changeKind = popChange
}

// ChangeStateDelayed, ChangeSubstateDelayed schedule a self-addressed
// message that requests the change when it is delivered. Because the
// message's scope is the current scope_state/scope_substate, an
// intervening change before delivery silently drops it. §4.2.
func (sm *StateMachine) ChangeStateDelayed(delay clock.Duration, next vocabulary.StateId) {
	sm.delayedStateQueued = true
	if sm.router == nil {
		return
	}
	sm.router.Send(delay, sm.now(), vocabulary.ChangeStateDelayedMsg, sm.owner, sm.owner,
		vocabulary.State, sm.scopeState, sm.queue, delayedStatePayload{State: next}, false, false)
}

func (sm *StateMachine) ChangeSubstateDelayed(delay clock.Duration, next vocabulary.SubstateId) {
	sm.delayedSubQueued = true
	if sm.router == nil {
		return
	}
	sm.router.Send(delay, sm.now(), vocabulary.ChangeSubstateDelayedMsg, sm.owner, sm.owner,
		vocabulary.Substate, sm.scopeSubstate, sm.queue, delayedSubstatePayload{Substate: next}, false, false)
}

// ResetStateMachine, {Replace,Queue,Requeue,Push,Pop}StateMachine
// request a Machine-Manager-level change, applied on the next Update
// tick. §4.5. They are no-ops if the machine hasn't been bound to a
// queue yet (handle == nil).
func (sm *StateMachine) ResetStateMachine() {
	if sm.handle != nil {
		sm.handle.RequestReset()
	}
}

func (sm *StateMachine) ReplaceStateMachine(next *StateMachine) {
	if sm.handle != nil {
		sm.handle.RequestReplace(next)
	}
}

func (sm *StateMachine) QueueStateMachine(next *StateMachine) {
	if sm.handle != nil {
		sm.handle.RequestQueue(next)
	}
}

func (sm *StateMachine) RequeueStateMachine() {
	if sm.handle != nil {
		sm.handle.RequestRequeue()
	}
}

func (sm *StateMachine) PushStateMachine(next *StateMachine) {
	if sm.handle != nil {
		sm.handle.RequestPush(next)
	}
}

func (sm *StateMachine) PopStateMachine() {
	if sm.handle != nil {
		sm.handle.RequestPop()
	}
}

// Destroy dispatches a machine-scope Exit, if one is declared, when
// the manager discards this machine outright (Pop/Replace). It is not
// part of PerformStateChanges: a machine being destroyed is not
// "changing state", it is going away.
func (sm *StateMachine) Destroy(ctx context.Context) {
	if sm.transition != nil && sm.Has(vocabulary.Exit, vocabulary.Machine) {
		sm.transition(sm, vocabulary.Exit, nil, vocabulary.Any, vocabulary.NoSubstate)
	}
}

func (sm *StateMachine) pushStateStack(s vocabulary.StateId) {
	if len(sm.stateStack) >= vocabulary.MaxStateStack {
		sm.stateStack = sm.stateStack[1:]
	}
	sm.stateStack = append(sm.stateStack, s)
}

// PerformStateChanges applies at most vocabulary.TransitionSafetyBound
// pending transitions, one per iteration, stopping as soon as nothing
// is pending. Called after every dispatched event. §4.2.
func (sm *StateMachine) PerformStateChanges(ctx context.Context) {
	bound := vocabulary.TransitionSafetyBound
	for i := 0; i < bound; i++ {
		if sm.changeKind == noChange {
			return
		}
		sm.applyOneChange(ctx)
	}
	if sm.changeKind != noChange {
		sm.reject(&FlipFlopExceeded{Owner: sm.Name, Bound: bound})
		sm.changeKind = noChange
		sm.changeAllowed = true
	}
}

// applyOneChange is one iteration of §4.2's ten numbered steps.
func (sm *StateMachine) applyOneChange(ctx context.Context) {
	kind := sm.changeKind
	nextState := sm.nextState
	nextSubstate := sm.nextSubstate

	// 1.
	sm.changeAllowed = false
	sm.delayedStateQueued = false
	sm.delayedSubQueued = false
	sm.changeKind = noChange

	substateOnly := kind == changeChange && nextState == sm.currentState && nextSubstate != vocabulary.NoSubstate
	fullStateChange := !substateOnly // covers changeChange-to-new-state and popChange
	leavingSubstate := sm.currentSubstate != vocabulary.NoSubstate

	// A Pop with an empty state_stack is rejected before any Exit runs,
	// so the machine is left exactly as it was.
	if kind == popChange && len(sm.stateStack) == 0 {
		sm.reject(&StackUnderflow{Owner: sm.Name})
		sm.changeAllowed = true
		return
	}

	// 2. Exit dispatch, teardown-only.
	sm.inExit = true
	if leavingSubstate && sm.Has(vocabulary.Exit, vocabulary.Substate) {
		sm.transition(sm, vocabulary.Exit, nil, sm.currentState, sm.currentSubstate)
	}
	if fullStateChange && sm.Has(vocabulary.Exit, vocabulary.State) {
		sm.transition(sm, vocabulary.Exit, nil, sm.currentState, vocabulary.NoSubstate)
	}
	sm.inExit = false

	// 3. Apply the change.
	switch {
	case kind == popChange:
		top :=sm.stateStack[len(sm.stateStack)-1]
		sm.stateStack = sm.stateStack[:len(sm.stateStack)-1]
		sm.currentState = top
		sm.currentSubstate = vocabulary.NoSubstate
	case substateOnly:
		sm.currentSubstate = nextSubstate
	default:
		sm.pushStateStack(sm.currentState)
		sm.currentState = nextState
		sm.currentSubstate = nextSubstate
	}

	// 4. Bump scope counters; this is what invalidates in-flight
	// scoped messages tagged with the prior scope.
	sm.scopeSubstate++
	if fullStateChange {
		sm.scopeState++
	}

	// 5. Wipe scoped variables.
	sm.substateVars = nil
	if fullStateChange {
		sm.stateVars = nil
	}

	// 6. Capture entry timestamps.
	sm.timeOnEnterSubstate = sm.now()
	if fullStateChange {
		sm.timeOnEnterState = sm.now()
	}

	// 7. Preserve only the appropriate registered-event bits.
	var keep vocabulary.RegisteredEvents
	if fullStateChange {
		keep = sm.registered.KeepAcrossStateChange()
	} else {
		keep = sm.registered.KeepAcrossSubstateChange()
	}

	// 8. Probe the new position.
	sm.probe(ctx, keep)

	// 9. Enter, if declared.
	if sm.Has(vocabulary.Enter, vocabulary.Substate) || sm.Has(vocabulary.Enter, vocabulary.State) || sm.Has(vocabulary.Enter, vocabulary.Machine) {
		sm.dispatch(ctx, vocabulary.Enter, nil)
	}

	// 10.
	sm.changeAllowed = true

	sm.trace(TraceTransition, vocabulary.Enter, nil)
}
