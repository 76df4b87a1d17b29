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

// Package router holds the single global queue of in-flight
// messages: scheduling, scope-checked delivery, cancellation
// (PurgeScoped), and broadcast. §4.6.
//
// Router knows nothing about state machines. It asks a Registry (via
// the narrow AgentLookup/Target interfaces below) whether a receiver
// still exists and, for scoped messages, what scope the receiver's
// top machine on a queue currently has. This keeps the dependency
// direction one way: router does not import fsm, manager, or
// registry.
package router
