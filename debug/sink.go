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

package debug

import (
	"log"

	"github.com/meridianlabs/agentfsm/fsm"
)

// Sink is the narrow interface the rest of this package implements.
// It is also exactly fsm.Tracer; kept as its own name so callers don't
// have to import fsm just to spell the type out.
type Sink = fsm.Tracer

// traceOp is the JSON-shaped wire form of a fsm.TraceEvent, following
// the teacher's SOp convention of one struct with omitempty fields
// describing "what happened".
type traceOp struct {
	Kind     string `json:"kind"`
	Owner    int64  `json:"owner"`
	Machine  string `json:"machine"`
	Event    string `json:"event,omitempty"`
	State    int    `json:"state"`
	Substate int    `json:"substate"`
	Err      string `json:"err,omitempty"`
}

func traceKindString(k fsm.TraceKind) string {
	switch k {
	case fsm.TraceDispatch:
		return "dispatch"
	case fsm.TraceTransition:
		return "transition"
	case fsm.TraceRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

func toOp(ev fsm.TraceEvent) traceOp {
	op := traceOp{
		Kind:     traceKindString(ev.Kind),
		Owner:    int64(ev.Owner),
		Machine:  ev.Machine,
		Event:    ev.Event.String(),
		State:    int(ev.State),
		Substate: int(ev.Substate),
	}
	if ev.Err != nil {
		op.Err = ev.Err.Error()
	}
	return op
}

// LogSink renders every fsm.TraceEvent through a *log.Logger, in the
// same spirit as the teacher's util.Logf gate.
type LogSink struct {
	Logger *log.Logger
}

// NewLogSink wraps logger, or the standard logger if nil.
func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSink{Logger: logger}
}

func (s *LogSink) Trace(ev fsm.TraceEvent) {
	op := toOp(ev)
	s.Logger.Printf("agentfsm %s machine=%s owner=%d state=%d/%d event=%s err=%s",
		op.Kind, op.Machine, op.Owner, op.State, op.Substate, op.Event, op.Err)
}
