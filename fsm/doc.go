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

// Package fsm is the state machine: one active state, an optional
// substate, scoped variables, and a user-supplied TransitionFunc
// dispatched down a three-tier ladder (substate -> state -> global).
// §4.1, §4.2, §4.4, §6.
//
// A StateMachine never mutates current_state/current_substate
// directly from handler code; handlers request a change (ChangeState,
// PopState, ...) and the runtime applies at most one pending change
// per PerformStateChanges iteration, after the triggering dispatch
// has returned.
package fsm
