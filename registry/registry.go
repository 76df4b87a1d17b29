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

// Package registry is the Agent Registry: an id -> agent map,
// iteration by type for broadcast, and the router.AgentLookup
// implementation the Router consults on every delivery attempt. §3
// "Agent", §4.6 "Broadcast".
package registry

import (
	"sync"

	"github.com/meridianlabs/agentfsm/manager"
	"github.com/meridianlabs/agentfsm/router"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

// Agent is a simulation entity: a stable id, a type used by
// broadcast-by-type, its Machine Manager, and whatever opaque
// subsystem handles the host attaches (body/movement - never touched
// by this module). §3 "Agent".
type Agent struct {
	Id                vocabulary.AgentId
	Type              string
	MarkedForDeletion bool
	Tags              []string
	Manager           *manager.MachineManager

	// Body is an opaque handle to the movement/body component the
	// host registers; the runtime never reads or writes it. §1
	// "Excluded as external collaborators".
	Body interface{}
}

// Registry is the process-wide id -> Agent map, guarded by an
// RWMutex in the same style as the teacher's crew.Crew. §5 "Shared
// resources".
type Registry struct {
	mu     sync.RWMutex
	agents map[vocabulary.AgentId]*Agent
	nextId vocabulary.AgentId
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{agents: map[vocabulary.AgentId]*Agent{}}
}

// NextId allocates a fresh, never-reused AgentId.
func (r *Registry) NextId() vocabulary.AgentId {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextId++
	return r.nextId
}

// Add registers agent under its Id. A second Add with the same Id
// replaces the prior entry.
func (r *Registry) Add(agent *Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[agent.Id] = agent
}

// Get returns the Agent for id, or ok=false if unknown. Unlike
// Lookup, Get does not hide agents marked for deletion: callers that
// need the routing rule ("deleted agents are unreachable") should use
// Lookup instead.
func (r *Registry) Get(id vocabulary.AgentId) (*Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	return a, ok
}

// MarkForDeletion flags id so the Router stops dispatching to it.
// §3 "marked-for-deletion".
func (r *Registry) MarkForDeletion(id vocabulary.AgentId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.agents[id]; ok {
		a.MarkedForDeletion = true
	}
}

// Remove drops id from the registry outright.
func (r *Registry) Remove(id vocabulary.AgentId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.agents, id)
}

// ByType returns a snapshot of every live (non-deleted) agent of the
// given type.
func (r *Registry) ByType(agentType string) []*Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Agent
	for _, a := range r.agents {
		if a.Type == agentType && !a.MarkedForDeletion {
			out = append(out, a)
		}
	}
	return out
}

// All returns a snapshot of every agent, including ones marked for
// deletion, for debug/inspector use.
func (r *Registry) All() []*Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Agent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a)
	}
	return out
}

// --- router.AgentLookup ---

// Lookup resolves id to its MachineManager, returning ok=false if the
// agent doesn't exist or is marked for deletion - both are "discard
// silently" per §4.6/§4.7.
func (r *Registry) Lookup(id vocabulary.AgentId) (router.Target, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	if !ok || a.MarkedForDeletion || a.Manager == nil {
		return nil, false
	}
	return a.Manager, true
}

// IDsByType lists the ids of every live agent of agentType, for
// SendMsgBroadcast.
func (r *Registry) IDsByType(agentType string) []vocabulary.AgentId {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []vocabulary.AgentId
	for _, a := range r.agents {
		if a.Type == agentType && !a.MarkedForDeletion {
			out = append(out, a.Id)
		}
	}
	return out
}
