package scripting

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"

	"github.com/meridianlabs/agentfsm/fsm"
	"github.com/meridianlabs/agentfsm/router"
	"github.com/meridianlabs/agentfsm/util"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

// Interpreter compiles and runs scripted bodies. Testing mirrors the
// teacher's Interpreter.Testing flag: it exposes "sleep" for tests
// only.
type Interpreter struct {
	Testing bool
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

// Script is one state's compiled scripted body. It is invoked for
// every event dispatched at that (state, Any) tier: Probe, Enter,
// Exit, Update, Message.
type Script struct {
	program *goja.Program
}

// Compile parses src (ECMAScript 5.1+ via goja) into a reusable
// Script. The source runs wrapped in an IIFE, same as the teacher's
// Interpreter.Compile.
func (i *Interpreter) Compile(src string) (*Script, error) {
	p, err := goja.Compile("", wrapSrc(src), true)
	if err != nil {
		return nil, fmt.Errorf("scripting: compile error: %w: %s", err, src)
	}
	return &Script{program: p}, nil
}

// Run executes the script once for one dispatched event, exposing the
// same "_" environment convention the teacher's goja.Exec uses: the
// bindings (_.event, _.msg, _.state, _.substate) and a handful of
// host functions (_.fn(...)) all live on the "_" object.
//
// The script signals "I handled this" by setting _.handled = true (or
// by returning the boolean true); anything else is treated as
// unhandled, so the dispatch ladder keeps walking.
func (i *Interpreter) Run(ctx context.Context, sm *fsm.StateMachine, s *Script, event vocabulary.EventKind, msg *router.Message, queryState vocabulary.StateId, querySubstate vocabulary.SubstateId) bool {
	o := goja.New()

	env := map[string]interface{}{
		"event":    event.String(),
		"state":    int(queryState),
		"substate": int(querySubstate),
		"handled":  false,
	}
	if msg != nil {
		env["msg"] = map[string]interface{}{
			"name":    string(msg.Name),
			"sender":  int64(msg.Sender),
			"payload": msg.Payload,
		}
	}

	env["register"] = func(kind, scope string) {
		sm.Register(parseEventKind(kind), parseScopeRule(scope))
	}
	env["changeState"] = func(next int) {
		sm.ChangeState(vocabulary.StateId(next))
	}
	env["changeSubstate"] = func(next int) {
		sm.ChangeSubstate(vocabulary.SubstateId(next))
	}
	env["popState"] = func() {
		sm.PopState()
	}
	env["sendMsgToSelf"] = func(name string, payload interface{}) {
		sm.SendMsgToSelfNow(vocabulary.Machine, vocabulary.MessageName(name), payload)
	}
	env["gensym"] = func() interface{} {
		return util.Gensym(32)
	}
	env["cronNext"] = func(expr string) interface{} {
		c, err := cronexpr.Parse(expr)
		if err != nil {
			panic(o.ToValue(err.Error()))
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	}
	env["log"] = func(x interface{}) {
		log.Printf("scripting: %s %v", sm.Name, x)
	}

	if i.Testing {
		env["sleep"] = func(ms int) { time.Sleep(time.Duration(ms) * time.Millisecond) }
	}

	o.Set("_", env)

	v, err := o.RunProgram(s.program)
	if err != nil {
		log.Printf("scripting: %s run error: %v", sm.Name, err)
		return false
	}

	if b, ok := env["handled"].(bool); ok && b {
		return true
	}
	if v != nil {
		if b, ok := v.Export().(bool); ok {
			return b
		}
	}
	return false
}

func parseEventKind(s string) vocabulary.EventKind {
	switch s {
	case "Enter":
		return vocabulary.Enter
	case "Exit":
		return vocabulary.Exit
	case "Update":
		return vocabulary.Update
	case "Message":
		return vocabulary.Message
	default:
		return vocabulary.Probe
	}
}

func parseScopeRule(s string) vocabulary.ScopeRule {
	switch s {
	case "Substate":
		return vocabulary.Substate
	case "State":
		return vocabulary.State
	default:
		return vocabulary.Machine
	}
}

// Build returns a fsm.TransitionFunc that runs scripts[queryState] for
// every (queryState, vocabulary.Any) dispatch, leaving states with no
// entry unhandled. It never matches a specific substate tier: scripted
// behavior is a per-state, not per-substate, affordance.
func Build(i *Interpreter, scripts map[vocabulary.StateId]*Script) fsm.TransitionFunc {
	return func(sm *fsm.StateMachine, event vocabulary.EventKind, msg *router.Message, queryState vocabulary.StateId, querySubstate vocabulary.SubstateId) bool {
		if querySubstate != vocabulary.NoSubstate {
			return false
		}
		s, ok := scripts[queryState]
		if !ok {
			return false
		}
		return i.Run(context.Background(), sm, s, event, msg, queryState, querySubstate)
	}
}
