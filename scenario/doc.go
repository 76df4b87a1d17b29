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

// Package scenario loads a YAML-described boot sequence
// (gopkg.in/yaml.v2, the teacher's own serialization library) and
// plays it against a sim.Simulation: inject a message, advance the
// clock, assert an expectation. Grounded on the teacher's
// cmd/mcrew.Service.Boot (comment lines skipped, one op processed at
// a time) reshaped from a line-delimited JSON-ops file onto a single
// YAML document's ops list.
package scenario
