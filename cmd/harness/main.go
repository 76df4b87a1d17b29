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

// Command harness boots a scenario file and drives it to completion,
// optionally wiring a debug sink, a session recorder, and an MQTT
// bridge. Flag layout follows the teacher's cmd/mcrew/main.go.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/meridianlabs/agentfsm/bridge"
	"github.com/meridianlabs/agentfsm/clock"
	"github.com/meridianlabs/agentfsm/debug"
	"github.com/meridianlabs/agentfsm/fsm"
	"github.com/meridianlabs/agentfsm/recorder"
	"github.com/meridianlabs/agentfsm/scenario"
	"github.com/meridianlabs/agentfsm/scripting"
	"github.com/meridianlabs/agentfsm/sim"
)

func main() {
	var (
		bootFile   = flag.String("b", "", "scenario YAML file to boot and run")
		httpPort   = flag.String("h", "", "HTTP port to serve the debug WebSocket on")
		recordFile = flag.String("r", "", "bbolt file to append tick records to")
		runName    = flag.String("run", "run", "recorder bucket name for this session")
		mqttBroker = flag.String("mqtt", "", "MQTT broker URL to bridge into (tcp://host:1883)")
		verbose    = flag.Bool("v", false, "log every traced dispatch/transition")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *bootFile == "" {
		log.Fatal("harness: -b scenario file is required")
	}

	f, err := os.Open(*bootFile)
	if err != nil {
		log.Fatalf("harness: %v", err)
	}
	s, err := scenario.Load(f)
	f.Close()
	if err != nil {
		log.Fatalf("harness: %v", err)
	}

	sn := sim.New()

	var col *recorder.Collector
	if *recordFile != "" {
		col = recorder.NewCollector()
		rec, err := recorder.Open(*recordFile, *runName)
		if err != nil {
			log.Fatalf("harness: recorder: %v", err)
		}
		defer rec.Close()
		sn.Router.OnDeliv = col.OnDeliver
		sn.OnTick = func(tick uint64, now clock.Time) {
			if err := rec.Append(col.Flush(tick, now)); err != nil {
				log.Printf("harness: recorder append error: %v", err)
			}
		}
	}

	var ws *debug.WSSink
	if *httpPort != "" {
		ws = debug.NewWSSink()
		http.HandleFunc("/debug/ws", ws.Handler(ctx))
		go func() {
			log.Printf("harness: debug websocket on %s/debug/ws", *httpPort)
			if err := http.ListenAndServe(*httpPort, nil); err != nil {
				log.Printf("harness: http server error: %v", err)
			}
		}()
	}

	var logSink *debug.LogSink
	if *verbose {
		logSink = debug.NewLogSink(nil)
	}

	var br *bridge.Bridge
	if *mqttBroker != "" {
		br, err = bridge.Connect(bridge.Options{Broker: *mqttBroker, ClientID: "agentfsm-harness"}, sn.Router, sn.Clock)
		if err != nil {
			log.Fatalf("harness: mqtt: %v", err)
		}
		defer br.Close(100)
	}

	interp := scripting.NewInterpreter()
	factory, err := scenario.ScriptedFactory(s, interp, sn)
	if err != nil {
		log.Fatalf("harness: %v", err)
	}

	if err := scenario.Boot(ctx, s, sn, factory); err != nil {
		log.Fatalf("harness: boot error: %v", err)
	}

	var tracer fsm.MultiTracer
	if col != nil {
		tracer = append(tracer, col)
	}
	if ws != nil {
		tracer = append(tracer, ws)
	}
	if logSink != nil {
		tracer = append(tracer, logSink)
	}
	if len(tracer) > 0 {
		for _, a := range sn.Registry.All() {
			if a.Manager == nil {
				continue
			}
			for _, qi := range a.Manager.Queues() {
				if top := a.Manager.Queue(qi).Top(); top != nil {
					top.SetTracer(tracer)
				}
			}
		}
	}

	if err := scenario.Run(ctx, s, sn); err != nil {
		log.Fatalf("harness: run error: %v", err)
	}

	log.Printf("harness: scenario complete at tick %d", sn.Clock.Tick())
}
