package docs_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/meridianlabs/agentfsm/docs"
	"github.com/meridianlabs/agentfsm/recorder"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

func TestRenderVocabularyProducesHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := docs.RenderVocabulary("# Hello\n\nSome *text*.", &buf); err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.Contains(buf.String(), "<h1>Hello</h1>") {
		t.Fatalf("expected rendered heading, got %s", buf.String())
	}
}

func TestMermaidEmitsTransitionEdges(t *testing.T) {
	records := []recorder.TickRecord{
		{Tick: 1, Transitions: []recorder.TransitionRecord{{Owner: 1, Machine: "npc", State: 0}}},
		{Tick: 2, Transitions: []recorder.TransitionRecord{{Owner: 1, Machine: "npc", State: 1}}},
	}

	var buf bytes.Buffer
	if err := docs.Mermaid(records, nil, &buf); err != nil {
		t.Fatalf("mermaid error: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "graph TB\n") {
		t.Fatalf("expected graph header, got %s", out)
	}
	if !strings.Contains(out, "-->") {
		t.Fatalf("expected at least one transition edge, got %s", out)
	}
	_ = vocabulary.AgentId(1)
}
