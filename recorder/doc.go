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

// Package recorder is an append-only, bbolt-backed session recorder:
// one bucket per run, one record per completed tick. Grounded on the
// teacher's cmd/mservice/storage/bolt.Storage, reshaped from
// per-machine crew state to per-tick simulation summaries. §4.10.
//
// Only completed ticks are ever written; no in-flight (undelivered)
// message is persisted here, preserving the persistence non-goal.
package recorder
