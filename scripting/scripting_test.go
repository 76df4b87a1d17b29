package scripting_test

import (
	"context"
	"testing"

	"github.com/meridianlabs/agentfsm/clock"
	"github.com/meridianlabs/agentfsm/fsm"
	"github.com/meridianlabs/agentfsm/router"
	"github.com/meridianlabs/agentfsm/scripting"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

const stateLit vocabulary.StateId = 0

func TestScriptedEnterRegistersAndRuns(t *testing.T) {
	ctx := context.Background()
	clk := clock.New()
	rtr := router.New(nil)

	i := scripting.NewInterpreter()
	src := `
if (_.event === "Probe") {
    _.register("Enter", "State");
    _.handled = true;
} else if (_.event === "Enter") {
    _.gensym();
    _.handled = true;
}
`
	script, err := i.Compile(src)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	transition := scripting.Build(i, map[vocabulary.StateId]*scripting.Script{stateLit: script})
	sm := fsm.New("scripted", transition, rtr, clk, stateLit)

	sm.Reset(ctx)

	if !sm.Has(vocabulary.Enter, vocabulary.State) {
		t.Fatal("expected script's Probe branch to have registered Enter at State scope")
	}
}
