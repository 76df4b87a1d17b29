/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package statetable is the design-note-9 table-driven alternative to
// hand-writing a nested (query_state, query_substate, event) match as
// a TransitionFunc. A Table is keyed by StateId the same way
// core.Spec.Nodes is keyed by node name in the teacher package: a flat
// map a caller builds once, rather than a big switch.
//
// Because handler presence is a static property of the table, the
// Probe event needs no bookkeeping of its own here — Table.Build
// answers it directly from which Handlers fields are non-nil. Probe
// is still dispatched through the built TransitionFunc for parity
// with hand-written transition functions elsewhere in this module.
package statetable

import (
	"github.com/meridianlabs/agentfsm/fsm"
	"github.com/meridianlabs/agentfsm/router"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

// Handlers is the set of optional handler bodies for one (state,
// substate) position, or for a state-level/global position (see
// Table).
type Handlers struct {
	Enter   func(sm *fsm.StateMachine)
	Exit    func(sm *fsm.StateMachine)
	Update  func(sm *fsm.StateMachine)
	Message func(sm *fsm.StateMachine, msg *router.Message) bool
}

func (h Handlers) empty() bool {
	return h.Enter == nil && h.Exit == nil && h.Update == nil && h.Message == nil
}

// Table is a two-level map from (state, substate) to Handlers.
// vocabulary.NoSubstate is the state-level bucket (no substate
// declared); vocabulary.Any as the outer key is the global bucket.
type Table struct {
	States map[vocabulary.StateId]map[vocabulary.SubstateId]Handlers
}

// New creates an empty Table.
func New() *Table {
	return &Table{States: map[vocabulary.StateId]map[vocabulary.SubstateId]Handlers{}}
}

// At registers h for (state, substate). Use vocabulary.NoSubstate for
// a state-level entry and vocabulary.Any for the global entry.
func (t *Table) At(state vocabulary.StateId, substate vocabulary.SubstateId, h Handlers) *Table {
	bucket, ok := t.States[state]
	if !ok {
		bucket = map[vocabulary.SubstateId]Handlers{}
		t.States[state] = bucket
	}
	bucket[substate] = h
	return t
}

func (t *Table) lookup(state vocabulary.StateId, substate vocabulary.SubstateId) (Handlers, bool) {
	bucket, ok := t.States[state]
	if !ok {
		return Handlers{}, false
	}
	h, ok := bucket[substate]
	if !ok || h.empty() {
		return Handlers{}, false
	}
	return h, true
}

func scopeOf(state vocabulary.StateId, substate vocabulary.SubstateId) vocabulary.ScopeRule {
	if state == vocabulary.Any {
		return vocabulary.Machine
	}
	if substate == vocabulary.NoSubstate {
		return vocabulary.State
	}
	return vocabulary.Substate
}

// Build returns the fsm.TransitionFunc that dispatches through t. The
// returned function is stateless and safe to share across every
// StateMachine built from the same table.
func (t *Table) Build() fsm.TransitionFunc {
	return func(sm *fsm.StateMachine, event vocabulary.EventKind, msg *router.Message, qs vocabulary.StateId, qss vocabulary.SubstateId) bool {
		h, ok := t.lookup(qs, qss)
		if !ok {
			return false
		}
		scope := scopeOf(qs, qss)
		switch event {
		case vocabulary.Probe:
			if h.Enter != nil {
				sm.Register(vocabulary.Enter, scope)
			}
			if h.Exit != nil {
				sm.Register(vocabulary.Exit, scope)
			}
			if h.Update != nil {
				sm.Register(vocabulary.Update, scope)
			}
			return true
		case vocabulary.Enter:
			if h.Enter == nil {
				return false
			}
			h.Enter(sm)
			return true
		case vocabulary.Exit:
			if h.Exit == nil {
				return false
			}
			h.Exit(sm)
			return true
		case vocabulary.Update:
			if h.Update == nil {
				return false
			}
			h.Update(sm)
			return true
		case vocabulary.Message:
			if h.Message == nil {
				return false
			}
			return h.Message(sm, msg)
		default:
			return false
		}
	}
}
