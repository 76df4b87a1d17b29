package scenario

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v2"

	"github.com/meridianlabs/agentfsm/clock"
	"github.com/meridianlabs/agentfsm/fsm"
	"github.com/meridianlabs/agentfsm/manager"
	"github.com/meridianlabs/agentfsm/match"
	"github.com/meridianlabs/agentfsm/registry"
	"github.com/meridianlabs/agentfsm/scripting"
	"github.com/meridianlabs/agentfsm/sim"
	"github.com/meridianlabs/agentfsm/util/testutil"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

// AgentSpec describes one agent to create during Boot: its id, its
// type (used for broadcast-by-type and for selecting a Factory), and
// nothing about its behavior - that's the Factory's job.
type AgentSpec struct {
	Id   vocabulary.AgentId `yaml:"id"`
	Type string             `yaml:"type"`
}

// InjectOp schedules a message via the Router, the YAML equivalent of
// the teacher's boot-file "inject" op.
type InjectOp struct {
	Delay    clock.Duration         `yaml:"delay"`
	Name     vocabulary.MessageName `yaml:"name"`
	Receiver vocabulary.AgentId     `yaml:"receiver"`
	Sender   vocabulary.AgentId     `yaml:"sender,omitempty"`
	Payload  interface{}            `yaml:"payload,omitempty"`
}

// AdvanceOp advances the simulation clock by Frame and drives one Tick.
type AdvanceOp struct {
	Frame clock.Duration `yaml:"frame"`
}

// AssertOp checks that an agent's active machine is in the expected
// (state, substate), optionally also checking Pattern against Against
// via the trimmed match/ package. A Substate of 0 (the value when the
// field is omitted) is not checked.
type AssertOp struct {
	Owner    vocabulary.AgentId    `yaml:"owner"`
	Queue    vocabulary.QueueIndex `yaml:"queue,omitempty"`
	State    vocabulary.StateId   `yaml:"state"`
	Substate vocabulary.SubstateId `yaml:"substate,omitempty"`
	Pattern  interface{}           `yaml:"pattern,omitempty"`
	Against  interface{}           `yaml:"against,omitempty"`
}

// Op is one boot-sequence step; exactly one field should be set.
type Op struct {
	Inject  *InjectOp  `yaml:"inject,omitempty"`
	Advance *AdvanceOp `yaml:"advance,omitempty"`
	Assert  *AssertOp  `yaml:"assert,omitempty"`
}

// Behavior describes one agent type's scripted default machine: its
// starting state, and one ECMAScript source body per state id (run
// through package scripting). A scenario with no Behaviors entry for
// a type relies on the caller's own Factory instead.
type Behavior struct {
	Start   vocabulary.StateId            `yaml:"start"`
	Scripts map[vocabulary.StateId]string `yaml:"scripts"`
}

// Scenario is a complete boot document: the agents to create, the
// scripted behavior (if any) for each agent type, then the ops to run
// against them.
type Scenario struct {
	Agents    []AgentSpec         `yaml:"agents"`
	Behaviors map[string]Behavior `yaml:"behaviors,omitempty"`
	Ops       []Op                `yaml:"ops"`
}

// Load decodes a Scenario from r.
func Load(r io.Reader) (*Scenario, error) {
	var s Scenario
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Factory builds the default machine stack for one AgentSpec; a nil
// or empty return skips that agent (no Manager is created for it).
type Factory func(spec AgentSpec) []*fsm.StateMachine

// ScriptedFactory builds a Factory entirely from s.Behaviors, compiling
// each type's per-state script source once up front. An agent whose
// Type has no Behaviors entry is skipped with a nil return, same as
// any other Factory.
func ScriptedFactory(s *Scenario, interp *scripting.Interpreter, sn *sim.Simulation) (Factory, error) {
	compiled := make(map[string]struct {
		start   vocabulary.StateId
		scripts map[vocabulary.StateId]*scripting.Script
	}, len(s.Behaviors))

	for typ, b := range s.Behaviors {
		scripts := make(map[vocabulary.StateId]*scripting.Script, len(b.Scripts))
		for state, src := range b.Scripts {
			script, err := interp.Compile(src)
			if err != nil {
				return nil, fmt.Errorf("scenario: behavior %q state %d: %w", typ, state, err)
			}
			scripts[state] = script
		}
		compiled[typ] = struct {
			start   vocabulary.StateId
			scripts map[vocabulary.StateId]*scripting.Script
		}{start: b.Start, scripts: scripts}
	}

	return func(spec AgentSpec) []*fsm.StateMachine {
		c, ok := compiled[spec.Type]
		if !ok {
			return nil
		}
		transition := scripting.Build(interp, c.scripts)
		return []*fsm.StateMachine{fsm.New(spec.Type, transition, sn.Router, sn.Clock, c.start)}
	}, nil
}

// Boot creates and registers every agent named in s.Agents, using
// factory to build each one's default queues.
func Boot(ctx context.Context, s *Scenario, sn *sim.Simulation, factory Factory) error {
	for _, a := range s.Agents {
		machines := factory(a)
		if len(machines) == 0 {
			continue
		}
		mgr := manager.New(ctx, a.Id, sn.Router, machines)
		sn.Registry.Add(&registry.Agent{Id: a.Id, Type: a.Type, Manager: mgr})
	}
	return nil
}

// Run plays s.Ops in order against sn, stopping at the first failed
// AssertOp or empty Op.
func Run(ctx context.Context, s *Scenario, sn *sim.Simulation) error {
	for i, op := range s.Ops {
		switch {
		case op.Inject != nil:
			in := op.Inject
			sn.Router.Send(in.Delay, sn.Clock.Now(), in.Name, in.Receiver, in.Sender,
				vocabulary.Machine, 0, vocabulary.AllQueues, in.Payload, false, false)
		case op.Advance != nil:
			sn.Tick(ctx, op.Advance.Frame)
		case op.Assert != nil:
			if err := checkAssert(sn, op.Assert); err != nil {
				return fmt.Errorf("scenario: op %d: %w", i, err)
			}
		default:
			return fmt.Errorf("scenario: op %d: empty op", i)
		}
	}
	return nil
}

func checkAssert(sn *sim.Simulation, a *AssertOp) error {
	agent, ok := sn.Registry.Get(a.Owner)
	if !ok || agent.Manager == nil {
		return fmt.Errorf("assert: unknown or manager-less agent %d", a.Owner)
	}
	q := agent.Manager.Queue(a.Queue)
	if q == nil {
		return fmt.Errorf("assert: agent %d has no queue %d", a.Owner, a.Queue)
	}
	top := q.Top()
	if top == nil {
		return fmt.Errorf("assert: agent %d queue %d is empty", a.Owner, a.Queue)
	}
	if top.State() != a.State {
		return fmt.Errorf("assert: agent %d expected state %d, got %d", a.Owner, a.State, top.State())
	}
	if a.Substate != 0 && top.Substate() != a.Substate {
		return fmt.Errorf("assert: agent %d expected substate %d, got %d", a.Owner, a.Substate, top.Substate())
	}
	if a.Pattern != nil {
		bss, err := match.NewMatcher().Match(a.Pattern, a.Against, match.NewBindings())
		if err != nil {
			return fmt.Errorf("assert: pattern match error: %w", err)
		}
		if len(bss) == 0 {
			return fmt.Errorf("assert: pattern %s did not match %s", testutil.JS(a.Pattern), testutil.JS(a.Against))
		}
	}
	return nil
}
