package vocabulary

// EventKind enumerates the events a TransitionFunc can be asked to
// handle.  §4.1.
type EventKind int

const (
	// Probe asks the transition function to declare, for the
	// current (state, substate), which of Enter/Exit/Update it
	// has handlers for. No handler body runs.
	Probe EventKind = iota

	// Enter is dispatched once a state/substate change has been
	// applied, if a matching handler was declared at Probe time.
	Enter

	// Exit is dispatched just before a state/substate change is
	// applied, if a matching handler was declared. Teardown only:
	// a transition requested from within Exit is rejected.
	Exit

	// Update is ticked once per simulation tick by the Manager.
	Update

	// Message carries a delivered router.Message's payload.
	Message
)

func (k EventKind) String() string {
	switch k {
	case Probe:
		return "Probe"
	case Enter:
		return "Enter"
	case Exit:
		return "Exit"
	case Update:
		return "Update"
	case Message:
		return "Message"
	default:
		return "EventKind(?)"
	}
}

// RegisteredEvents is the bitset populated by Probe: which of
// {Enter,Exit,Update} x {Machine,State,Substate} actually have
// declared handler bodies in the current (state, substate).
type RegisteredEvents uint32

const (
	EnterMachine RegisteredEvents = 1 << iota
	EnterState
	EnterSubstate
	ExitMachine
	ExitState
	ExitSubstate
	UpdateMachine
	UpdateState
	UpdateSubstate
)

// Has reports whether all of the given bits are set.
func (r RegisteredEvents) Has(bits RegisteredEvents) bool {
	return r&bits == bits
}

// machineBits and substateBits are used by the KeepAcross* helpers
// below (called from PerformStateChanges) to preserve only the
// appropriate bits of RegisteredEvents across a transition. §4.2
// step 7.
const (
	machineBits  = EnterMachine | ExitMachine | UpdateMachine
	stateBits    = EnterState | ExitState | UpdateState
	substateBits = EnterSubstate | ExitSubstate | UpdateSubstate
)

// KeepAcrossStateChange clears everything except the global
// (Machine-scope) bits.
func (r RegisteredEvents) KeepAcrossStateChange() RegisteredEvents {
	return r & machineBits
}

// KeepAcrossSubstateChange clears only the substate bits.
func (r RegisteredEvents) KeepAcrossSubstateChange() RegisteredEvents {
	return r &^ substateBits
}
