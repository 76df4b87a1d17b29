package manager

import (
	"context"

	"github.com/meridianlabs/agentfsm/fsm"
	"github.com/meridianlabs/agentfsm/router"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

// changeKind enumerates the six pending-change shapes a queue can
// carry. §4.5.
type changeKind int

const (
	noChange changeKind = iota
	resetChange
	replaceChange
	queueChange
	requeueChange
	pushChange
	popChange
)

type changeRequest struct {
	kind changeKind
	next *fsm.StateMachine
}

// entry wraps a stacked machine with whether it has ever been
// Reset (Probe+Enter'd). A machine inserted via QueueStateMachine
// starts uninitialized and stays dormant until it is promoted to the
// top of the stack. §4.5 "PushStateMachine takes an initialize flag".
type entry struct {
	sm          *fsm.StateMachine
	initialized bool
}

// Queue is one slot of a MachineManager: an ordered stack of state
// machines (index 0 = bottom/default, last = top/active) plus at most
// one pending ChangeRequest.
type Queue struct {
	index  vocabulary.QueueIndex
	owner  vocabulary.AgentId
	router *router.Router

	stack   []*entry
	pending *changeRequest
}

func newQueue(index vocabulary.QueueIndex, owner vocabulary.AgentId, rtr *router.Router, bottom *fsm.StateMachine) *Queue {
	q := &Queue{index: index, owner: owner, router: rtr}
	bottom.Bind(owner, index, q)
	q.stack = []*entry{{sm: bottom}}
	return q
}

// init activates the bottom/default machine: it is the queue's first
// active machine and is always initialized, never left dormant.
func (q *Queue) init(ctx context.Context) {
	q.activateTop(ctx)
}

func (q *Queue) top() *entry {
	if len(q.stack) == 0 {
		return nil
	}
	return q.stack[len(q.stack)-1]
}

// Top returns the active machine, or nil if the queue is somehow
// empty (never supposed to happen while the agent is alive).
func (q *Queue) Top() *fsm.StateMachine {
	e := q.top()
	if e == nil {
		return nil
	}
	return e.sm
}

// Scope reports the active machine's scope counters, for
// MachineManager.Scope / router.Target.
func (q *Queue) Scope() (stateScope, substateScope uint32, ok bool) {
	e := q.top()
	if e == nil {
		return 0, 0, false
	}
	return e.sm.ScopeState(), e.sm.ScopeSubstate(), true
}

// --- fsm.QueueHandle ---

func (q *Queue) request(kind changeKind, next *fsm.StateMachine) {
	if q.pending != nil {
		assert(&ChangeAlreadyPending{Queue: int(q.index)})
		return
	}
	q.pending = &changeRequest{kind: kind, next: next}
}

func (q *Queue) RequestReset()                      { q.request(resetChange, nil) }
func (q *Queue) RequestReplace(next *fsm.StateMachine) { q.request(replaceChange, next) }
func (q *Queue) RequestQueue(next *fsm.StateMachine)   { q.request(queueChange, next) }
func (q *Queue) RequestRequeue()                       { q.request(requeueChange, nil) }
func (q *Queue) RequestPush(next *fsm.StateMachine)    { q.request(pushChange, next) }
func (q *Queue) RequestPop()                           { q.request(popChange, nil) }

// applyPending runs at most vocabulary.TransitionSafetyBound
// iterations of "apply one pending change", matching the bound used
// by fsm.PerformStateChanges: applying a change can synchronously
// provoke another request (e.g. a newly activated machine's Enter
// handler immediately requesting another push). §4.5.
func (q *Queue) applyPending(ctx context.Context) {
	bound := vocabulary.TransitionSafetyBound
	for i := 0; i < bound && q.pending != nil; i++ {
		req := q.pending
		q.pending = nil
		q.applyOne(ctx, req)
	}
}

func (q *Queue) purge() {
	if q.router != nil {
		q.router.PurgeScoped(q.owner, q.index)
	}
}

func (q *Queue) applyOne(ctx context.Context, req *changeRequest) {
	switch req.kind {
	case resetChange:
		q.purge()
		if e := q.top(); e != nil {
			e.initialized = true
			e.sm.Reset(ctx)
		}

	case replaceChange:
		q.purge()
		if len(q.stack) < 1 {
			return
		}
		old := q.stack[len(q.stack)-1]
		if len(q.stack) == 1 {
			// Replacing the bottom/default is allowed (it's a
			// substitution, not a pop): the new machine becomes the
			// new bottom.
			old.sm.Destroy(ctx)
			q.stack[len(q.stack)-1] = q.bind(req.next)
		} else {
			old.sm.Destroy(ctx)
			q.stack = q.stack[:len(q.stack)-1]
			q.stack = append(q.stack, q.bind(req.next))
		}
		q.activateTop(ctx)

	case queueChange:
		if len(q.stack) == 0 {
			assert(&NoDefaultMachine{Queue: int(q.index)})
			return
		}
		e := q.bind(req.next)
		// Insert just above the bottom default; no purge (§4.5: "the
		// machine being queued will start later").
		next := make([]*entry, 0, len(q.stack)+1)
		next = append(next, q.stack[0], e)
		next = append(next, q.stack[1:]...)
		q.stack = next

	case requeueChange:
		q.purge()
		if len(q.stack) < 2 {
			assert(&EmptyQueueOnRequeue{Queue: int(q.index)})
			return
		}
		// Move the current top to just above the bottom default; the
		// machine that was below it becomes the new top.
		n := len(q.stack)
		cur := q.stack[n-1]
		next := make([]*entry, 0, n)
		next = append(next, q.stack[0], cur)
		next = append(next, q.stack[1:n-1]...)
		q.stack = next
		q.activateTop(ctx)

	case pushChange:
		q.purge()
		q.stack = append(q.stack, q.bind(req.next))
		q.activateTop(ctx)

	case popChange:
		q.purge()
		if len(q.stack) <= 1 {
			assert(&BottomPopped{Queue: int(q.index)})
			return
		}
		old := q.stack[len(q.stack)-1]
		old.sm.Destroy(ctx)
		q.stack = q.stack[:len(q.stack)-1]
		q.activateTop(ctx)
	}
}

func (q *Queue) bind(sm *fsm.StateMachine) *entry {
	sm.Bind(q.owner, q.index, q)
	return &entry{sm: sm}
}

// activateTop initializes the current top machine (Probe+Enter) if it
// has never been activated, e.g. a dormant machine just promoted by
// Requeue or exposed by Pop. §4.5 "it remains dormant until promoted".
func (q *Queue) activateTop(ctx context.Context) {
	e := q.top()
	if e == nil || e.initialized {
		return
	}
	e.initialized = true
	e.sm.Reset(ctx)
}
