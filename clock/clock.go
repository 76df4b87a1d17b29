/* Copyright 2018 Comcast Cable Communications Management, LLC
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

// Package clock is the monotonic simulation time source. §3, §5.
//
// Unlike wall-clock time, a Clock only ever advances when the host
// loop tells it to: there is no goroutine ticking it in the
// background. That keeps the whole runtime single-threaded and
// cooperative, per §5.
package clock

// Time is a simulated instant, in simulated seconds since the Clock
// was created.
type Time float64

// Duration is a simulated span, in simulated seconds.
type Duration float64

// Clock is a monotonic counter of simulated time plus a tick index.
type Clock struct {
	now  Time
	tick uint64
}

// New creates a Clock starting at t=0, tick=0.
func New() *Clock {
	return &Clock{}
}

// Now returns the current simulated time.
func (c *Clock) Now() Time {
	return c.now
}

// Tick returns the number of times Advance has been called with a
// non-negative duration; ignored negative calls are not counted.
func (c *Clock) Tick() uint64 {
	return c.tick
}

// Advance moves the Clock forward by d and increments the tick
// count. Negative d is a programmer error and is ignored.
func (c *Clock) Advance(d Duration) Time {
	if d < 0 {
		return c.now
	}
	c.now += Time(d)
	c.tick++
	return c.now
}
