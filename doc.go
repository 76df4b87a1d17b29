// Package agentfsm provides a message-driven hierarchical state machine
// runtime for autonomous agents: scoped, delayed message routing, and
// per-agent machine stacks with pending transition requests.
//
// The core code is in package fsm; the per-agent machine stack lives in
// manager; delivery lives in router. See the other packages (clock,
// registry, sim, scenario, scripting, recorder, debug, bridge, docs)
// for the rest of the runtime, and the cmd/ directory for entry points.
package agentfsm
