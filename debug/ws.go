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

package debug

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/meridianlabs/agentfsm/fsm"
)

// WSSink fans every traced event out to every connected WebSocket
// client, modeled directly on the teacher's cmd/mcrew
// Service.WebSocketService: a sync.Map of per-connection outbound
// channels, a single upgrader, one HTTP handler.
type WSSink struct {
	upgrader websocket.Upgrader
	conns    sync.Map // id string -> chan interface{}
}

// NewWSSink creates an idle sink; call Handler to obtain the
// http.HandlerFunc to mount, typically at "/debug/ws".
func NewWSSink() *WSSink {
	return &WSSink{}
}

// Trace implements fsm.Tracer by forwarding to every live connection,
// dropping the event for any connection whose outbound channel is
// full rather than blocking the simulation loop.
func (s *WSSink) Trace(ev fsm.TraceEvent) {
	op := toOp(ev)
	s.conns.Range(func(k, v interface{}) bool {
		c := v.(chan interface{})
		select {
		case c <- op:
		default:
			log.Printf("agentfsm debug: connection %v blocked, dropping event", k)
		}
		return true
	})
}

// Handler returns the http.HandlerFunc that upgrades a connection and
// streams traced events to it as JSON text frames until the client
// disconnects or ctx is done.
func (s *WSSink) Handler(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("agentfsm debug: upgrade error %v", err)
			return
		}
		defer c.Close()

		in := make(chan interface{}, 256)
		id := c.LocalAddr().String() + "->" + r.RemoteAddr
		s.conns.Store(id, in)
		defer s.conns.Delete(id)

		for {
			select {
			case <-ctx.Done():
				return
			case x, ok := <-in:
				if !ok {
					return
				}
				js, err := json.Marshal(x)
				if err != nil {
					log.Printf("agentfsm debug: marshal error %v", err)
					continue
				}
				if err := c.WriteMessage(websocket.TextMessage, js); err != nil {
					log.Printf("agentfsm debug: write error %v", err)
					return
				}
			}
		}
	}
}
