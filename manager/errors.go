package manager

// BottomPopped occurs when a queue's only remaining machine (the
// default) is asked to Pop. Replacing the bottom machine is a
// substitution and does not raise it. §3 "the bottom machine ... is
// never popped".
type BottomPopped struct {
	Queue int
}

func (e *BottomPopped) Error() string {
	return "attempted to pop a queue's bottom (default) machine"
}

// ChangeAlreadyPending occurs when a queue already has a pending
// ChangeRequest and a second one is requested before the first
// applies. §9 Open question (b): the second request is dropped.
type ChangeAlreadyPending struct {
	Queue int
}

func (e *ChangeAlreadyPending) Error() string {
	return "a machine-change request is already pending on this queue"
}

// EmptyQueueOnRequeue occurs when RequeueStateMachine is requested on
// a queue with fewer than two machines.
type EmptyQueueOnRequeue struct {
	Queue int
}

func (e *EmptyQueueOnRequeue) Error() string {
	return "requeue needs at least two machines on the queue"
}

// NoDefaultMachine occurs when QueueStateMachine is requested on a
// queue with no bottom/default machine yet (a construction error: a
// queue should never be built without one).
type NoDefaultMachine struct {
	Queue int
}

func (e *NoDefaultMachine) Error() string {
	return "queue has no default (bottom) machine"
}
