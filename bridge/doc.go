/* Copyright 2019 Comcast Cable Communications Management, LLC
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

// Package bridge connects the Message Router to an MQTT broker via
// github.com/eclipse/paho.mqtt.golang, grounded on the teacher's
// sio/mqclient command: the same client-options shape (broker, client
// id, keep-alive), subscribed topics inject Machine-scope messages
// into an agent, and Publish sends a named payload outward. Router
// traffic, broadcasts included, is not forwarded to the broker on its
// own; only explicit Publish calls reach it. §4.12.
package bridge
