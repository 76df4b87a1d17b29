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

// Package vocabulary holds the shared, dependency-free types that the
// rest of this module agrees on: agent/state/queue identifiers, the
// dispatched event kinds, the message scope rules, and the typed
// state-variable values.
//
// Nothing in this package does any work.  It exists so that fsm,
// router, manager, and registry can all refer to the same small set
// of names without importing each other.
package vocabulary
