package vocabulary

// MessageName identifies what a message means to the receiving
// machine's transition function. The vocabulary of names is
// application-defined; the runtime only ever compares names for
// equality (e.g. StopTimer purges by name) and never interprets them.
type MessageName string

// ChangeStateDelayedMsg and ChangeSubstateDelayedMsg are the
// self-addressed message names used to implement delayed transitions
// (§4.2 "Delayed transitions"). They are reserved: a TransitionFunc
// should not also use these names for its own messages.
const (
	ChangeStateDelayedMsg    MessageName = "fsm:change-state-delayed"
	ChangeSubstateDelayedMsg MessageName = "fsm:change-substate-delayed"
)
