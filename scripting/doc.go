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

// Package scripting adapts ECMAScript source (run via
// github.com/dop251/goja) into a fsm.TransitionFunc, so a scenario
// author can give one state a scripted behavior without writing Go.
// Grounded on the teacher's interpreters/goja.Interpreter: the same
// wrapped-function-body convention, the same "_" environment object,
// and the same gensym/cronNext/log utility belt, reshaped from
// core.Bindings/core.Execution onto this module's vocabulary. §4.11.
package scripting
