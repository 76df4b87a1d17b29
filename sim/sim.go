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

// Package sim is the simulation orchestrator: it wires Clock ->
// Registry -> Router -> each Agent's MachineManager in the
// initialization order §5 requires, and drives one Tick() per
// simulated step. §2 "Control flow per tick".
package sim

import (
	"context"

	"github.com/meridianlabs/agentfsm/clock"
	"github.com/meridianlabs/agentfsm/registry"
	"github.com/meridianlabs/agentfsm/router"
)

// Simulation owns the process-wide singletons and the per-tick driving
// loop. A Service (the teacher's cmd/mservice/service.go shape) that
// wants to add a debug sink, a recorder, or a bridge wraps a
// Simulation rather than replacing it.
type Simulation struct {
	Clock    *clock.Clock
	Registry *registry.Registry
	Router   *router.Router

	// OnTick, if set, is called after every completed Tick with the
	// tick number and the time it advanced to. Used by the recorder
	// (§4.10); never called for the
	// in-flight messages still pending, since persisting those is an
	// explicit non-goal.
	OnTick func(tick uint64, now clock.Time)
}

// New creates a Simulation: Clock first, then Registry, then Router
// bound to that Registry. §5 "Clock -> Registry -> Router -> Managers".
func New() *Simulation {
	clk := clock.New()
	reg := registry.New()
	rtr := router.New(reg)
	return &Simulation{Clock: clk, Registry: reg, Router: rtr}
}

// Tick advances the Clock by one frame, delivers due messages, then
// ticks every live agent's MachineManager (applying pending change
// requests and dispatching Update). §2.
func (s *Simulation) Tick(ctx context.Context, frame clock.Duration) {
	now := s.Clock.Advance(frame)
	s.Router.Tick(ctx, now)
	for _, a := range s.Registry.All() {
		if a.MarkedForDeletion || a.Manager == nil {
			continue
		}
		a.Manager.Tick(ctx)
	}
	if s.OnTick != nil {
		s.OnTick(s.Clock.Tick(), now)
	}
}

// A host wanting tracing/recording wires it up directly: call
// sm.SetTracer on each machine it constructs (debug.LogSink,
// debug.WSSink, or a recorder.Collector all implement fsm.Tracer),
// set s.Router.OnDeliv = collector.OnDeliver for delivery records, and
// set s.OnTick to flush + recorder.Append the completed tick.

