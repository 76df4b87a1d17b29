package bridge_test

import (
	"encoding/json"
	"testing"

	"github.com/meridianlabs/agentfsm/bridge"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	env := bridge.Envelope{Name: "hello", Payload: map[string]interface{}{"x": 1.0}}
	js, err := json.Marshal(&env)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	var got bridge.Envelope
	if err := json.Unmarshal(js, &got); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if got.Name != vocabulary.MessageName("hello") {
		t.Fatalf("expected name hello, got %s", got.Name)
	}
}
