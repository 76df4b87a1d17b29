package vocabulary_test

import (
	"testing"

	"github.com/meridianlabs/agentfsm/vocabulary"
)

func TestRegisteredEventsHas(t *testing.T) {
	r := vocabulary.EnterState | vocabulary.UpdateMachine
	if !r.Has(vocabulary.EnterState) {
		t.Fatal("expected EnterState bit set")
	}
	if r.Has(vocabulary.ExitSubstate) {
		t.Fatal("did not expect ExitSubstate bit set")
	}
	if !r.Has(vocabulary.EnterState | vocabulary.UpdateMachine) {
		t.Fatal("expected both set bits to be reported present together")
	}
}

func TestKeepAcrossStateChangeClearsStateAndSubstateBits(t *testing.T) {
	r := vocabulary.EnterMachine | vocabulary.EnterState | vocabulary.ExitSubstate
	kept := r.KeepAcrossStateChange()
	if !kept.Has(vocabulary.EnterMachine) {
		t.Fatal("expected Machine-scope bit to survive a state change")
	}
	if kept.Has(vocabulary.EnterState) || kept.Has(vocabulary.ExitSubstate) {
		t.Fatal("expected State/Substate bits to be cleared by a state change")
	}
}

func TestKeepAcrossSubstateChangeClearsOnlySubstateBits(t *testing.T) {
	r := vocabulary.EnterMachine | vocabulary.EnterState | vocabulary.ExitSubstate
	kept := r.KeepAcrossSubstateChange()
	if !kept.Has(vocabulary.EnterMachine) || !kept.Has(vocabulary.EnterState) {
		t.Fatal("expected Machine- and State-scope bits to survive a substate change")
	}
	if kept.Has(vocabulary.ExitSubstate) {
		t.Fatal("expected Substate bit to be cleared by a substate change")
	}
}

func TestEventKindString(t *testing.T) {
	cases := map[vocabulary.EventKind]string{
		vocabulary.Probe:   "Probe",
		vocabulary.Enter:   "Enter",
		vocabulary.Exit:    "Exit",
		vocabulary.Update:  "Update",
		vocabulary.Message: "Message",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", k, got, want)
		}
	}
}

func TestScopeRuleString(t *testing.T) {
	cases := map[vocabulary.ScopeRule]string{
		vocabulary.Machine:  "Machine",
		vocabulary.State:    "State",
		vocabulary.Substate: "Substate",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", k, got, want)
		}
	}
}
