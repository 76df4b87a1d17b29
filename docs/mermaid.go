package docs

import (
	"fmt"
	"io"

	"github.com/meridianlabs/agentfsm/recorder"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

// MermaidOpts controls diagram rendering, mirroring the teacher's
// tools.MermaidOpts subset that still applies once "nodes" are states
// rather than sheens spec nodes.
type MermaidOpts struct {
	// OwnerFilter, if non-zero, restricts the diagram to transitions
	// belonging to that one agent.
	OwnerFilter vocabulary.AgentId
}

// Mermaid renders a https://mermaidjs.github.io/ graph of the state
// transitions observed across records: one node per (owner, state)
// seen, one edge per consecutive transition for that owner. Grounded
// on tools.Mermaid, reshaped from a sheens Spec's static node/branch
// graph onto this module's recorded, runtime-observed transitions.
func Mermaid(records []recorder.TickRecord, opts *MermaidOpts, w io.Writer) error {
	if opts == nil {
		opts = &MermaidOpts{}
	}

	fmt.Fprintf(w, "graph TB\n")

	nids := make(map[string]string)
	num := 0
	nodeID := func(owner vocabulary.AgentId, state vocabulary.StateId) string {
		key := fmt.Sprintf("%d/%d", owner, state)
		if nid, ok := nids[key]; ok {
			return nid
		}
		num++
		nid := fmt.Sprintf("n%d", num)
		nids[key] = nid
		fmt.Fprintf(w, "  %s[\"agent %d: state %d\"]\n", nid, owner, state)
		return nid
	}

	last := map[vocabulary.AgentId]vocabulary.StateId{}
	seen := map[vocabulary.AgentId]bool{}

	for _, rec := range records {
		for _, tr := range rec.Transitions {
			if opts.OwnerFilter != 0 && tr.Owner != opts.OwnerFilter {
				continue
			}
			to := nodeID(tr.Owner, tr.State)
			if seen[tr.Owner] {
				from := nodeID(tr.Owner, last[tr.Owner])
				if from != to {
					fmt.Fprintf(w, "  %s --> %s\n", from, to)
				}
			}
			last[tr.Owner] = tr.State
			seen[tr.Owner] = true
		}
	}

	return nil
}
