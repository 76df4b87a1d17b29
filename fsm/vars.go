package fsm

import "github.com/meridianlabs/agentfsm/vocabulary"

// DeclareVariable grows the given scope's slot vector to include id,
// if it doesn't already have a slot. §4.4.
func (sm *StateMachine) DeclareVariable(scope vocabulary.VarScope, id int) {
	m := sm.varMap(scope)
	if _, ok := (*m)[id]; !ok {
		(*m)[id] = vocabulary.VarValue{}
	}
}

func (sm *StateMachine) varMap(scope vocabulary.VarScope) *map[int]vocabulary.VarValue {
	if scope == vocabulary.SubstateScope {
		if sm.substateVars == nil {
			sm.substateVars = map[int]vocabulary.VarValue{}
		}
		return &sm.substateVars
	}
	if sm.stateVars == nil {
		sm.stateVars = map[int]vocabulary.VarValue{}
	}
	return &sm.stateVars
}

// SetVariable and GetVariable are the untyped form every typed
// accessor below funnels through. It is the caller's contract (§3,
// §9 "Typed state variables") to read back with the accessor matching
// the Kind written; GetVariable* helpers below validate the tag and
// report ok=false on mismatch rather than returning garbage.
func (sm *StateMachine) SetVariable(scope vocabulary.VarScope, id int, v vocabulary.VarValue) {
	m := sm.varMap(scope)
	(*m)[id] = v
}

func (sm *StateMachine) GetVariable(scope vocabulary.VarScope, id int) (vocabulary.VarValue, bool) {
	m := sm.varMap(scope)
	v, ok := (*m)[id]
	return v, ok
}

func (sm *StateMachine) SetVariableInt(scope vocabulary.VarScope, id int, v int64) {
	sm.SetVariable(scope, id, vocabulary.VarValue{Kind: vocabulary.IntValue, Int: v})
}

func (sm *StateMachine) GetVariableInt(scope vocabulary.VarScope, id int) (int64, bool) {
	v, ok := sm.GetVariable(scope, id)
	if !ok || v.Kind != vocabulary.IntValue {
		return 0, false
	}
	return v.Int, true
}

func (sm *StateMachine) SetVariableFloat(scope vocabulary.VarScope, id int, v float64) {
	sm.SetVariable(scope, id, vocabulary.VarValue{Kind: vocabulary.FloatValue, Float: v})
}

func (sm *StateMachine) GetVariableFloat(scope vocabulary.VarScope, id int) (float64, bool) {
	v, ok := sm.GetVariable(scope, id)
	if !ok || v.Kind != vocabulary.FloatValue {
		return 0, false
	}
	return v.Float, true
}

func (sm *StateMachine) SetVariableBool(scope vocabulary.VarScope, id int, v bool) {
	sm.SetVariable(scope, id, vocabulary.VarValue{Kind: vocabulary.BoolValue, Bool: v})
}

func (sm *StateMachine) GetVariableBool(scope vocabulary.VarScope, id int) (bool, bool) {
	v, ok := sm.GetVariable(scope, id)
	if !ok || v.Kind != vocabulary.BoolValue {
		return false, false
	}
	return v.Bool, true
}

func (sm *StateMachine) SetVariableAgent(scope vocabulary.VarScope, id int, v vocabulary.AgentId) {
	sm.SetVariable(scope, id, vocabulary.VarValue{Kind: vocabulary.AgentValue, Agent: v})
}

func (sm *StateMachine) GetVariableAgent(scope vocabulary.VarScope, id int) (vocabulary.AgentId, bool) {
	v, ok := sm.GetVariable(scope, id)
	if !ok || v.Kind != vocabulary.AgentValue {
		return vocabulary.NoAgent, false
	}
	return v.Agent, true
}

func (sm *StateMachine) SetVariablePointer(scope vocabulary.VarScope, id int, v interface{}) {
	sm.SetVariable(scope, id, vocabulary.VarValue{Kind: vocabulary.PointerValue, Pointer: v})
}

func (sm *StateMachine) GetVariablePointer(scope vocabulary.VarScope, id int) (interface{}, bool) {
	v, ok := sm.GetVariable(scope, id)
	if !ok || v.Kind != vocabulary.PointerValue {
		return nil, false
	}
	return v.Pointer, true
}

func (sm *StateMachine) SetVariableVec2(scope vocabulary.VarScope, id int, v vocabulary.Vec2) {
	sm.SetVariable(scope, id, vocabulary.VarValue{Kind: vocabulary.Vec2Value, Vec2: v})
}

func (sm *StateMachine) GetVariableVec2(scope vocabulary.VarScope, id int) (vocabulary.Vec2, bool) {
	v, ok := sm.GetVariable(scope, id)
	if !ok || v.Kind != vocabulary.Vec2Value {
		return vocabulary.Vec2{}, false
	}
	return v.Vec2, true
}

func (sm *StateMachine) SetVariableVec3(scope vocabulary.VarScope, id int, v vocabulary.Vec3) {
	sm.SetVariable(scope, id, vocabulary.VarValue{Kind: vocabulary.Vec3Value, Vec3: v})
}

func (sm *StateMachine) GetVariableVec3(scope vocabulary.VarScope, id int) (vocabulary.Vec3, bool) {
	v, ok := sm.GetVariable(scope, id)
	if !ok || v.Kind != vocabulary.Vec3Value {
		return vocabulary.Vec3{}, false
	}
	return v.Vec3, true
}
