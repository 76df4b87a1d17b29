package vocabulary

// AgentId identifies an Agent.  Process-unique; assigned by a
// Registry and never reused while the process is alive.
type AgentId uint64

// NoAgent is the zero value, never assigned to a live agent.
const NoAgent AgentId = 0

// StateId identifies a state within a machine's transition function.
// Small non-negative integers are expected; negative values are
// reserved (see Any).
type StateId int32

// SubstateId identifies a substate.  NoSubstate means "no substate".
type SubstateId int32

// Any is the sentinel query value meaning "the global scope" when
// querying a StateId, or "no substate" when querying a SubstateId.
const Any StateId = -1

// NoSubstate is the SubstateId meaning "the machine has no current
// substate".  Equal to Any so that a substate query of NoSubstate
// also reads as "don't care" when used as a query value.
const NoSubstate SubstateId = -1

// QueueIndex identifies one of an agent's Machine Manager queues.
type QueueIndex int

// AllQueues is the sentinel QueueIndex meaning "every queue owned by
// the receiver", used by self-sends and by Message.Queue.
const AllQueues QueueIndex = -1

// NumQueues is the number of queue indexes SendMsgToOtherQueues fans
// out over. manager.New does not read it: a Machine Manager has one
// queue per default machine it is built with.
// §6: "NUM_QUEUES=3 ... fixed constants unless the host overrides
// them at compile time."
var NumQueues = 3

// MaxStateStack caps the size of a state machine's PopState history.
var MaxStateStack = 10

// TransitionSafetyBound caps the number of PerformStateChanges
// iterations taken in a single call, to catch flip-flopping
// transition requests.
var TransitionSafetyBound = 20
