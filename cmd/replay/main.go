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

// Command replay reads a recorded run back out of a bbolt file and
// either dumps it as JSON lines or renders it as a Mermaid diagram, in
// the spirit of the teacher's cmd/mdb machine debugger - a read-only
// companion instead of an interactive one.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/meridianlabs/agentfsm/docs"
	"github.com/meridianlabs/agentfsm/recorder"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

func main() {
	var (
		runName = flag.String("run", "run", "recorder bucket name to read")
		owner   = flag.Int64("owner", 0, "restrict a Mermaid diagram to one agent id (0 = all)")
		mermaid = flag.Bool("mermaid", false, "render a Mermaid diagram instead of dumping JSON lines")
	)
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		log.Fatal("replay: usage: replay [-run NAME] [-mermaid] [-owner ID] FILE.db")
	}

	rec, err := recorder.Open(args[0], *runName)
	if err != nil {
		log.Fatalf("replay: %v", err)
	}
	defer rec.Close()

	if !*mermaid {
		enc := json.NewEncoder(os.Stdout)
		if err := rec.Each(func(t recorder.TickRecord) error {
			return enc.Encode(&t)
		}); err != nil {
			log.Fatalf("replay: %v", err)
		}
		return
	}

	var records []recorder.TickRecord
	if err := rec.Each(func(t recorder.TickRecord) error {
		records = append(records, t)
		return nil
	}); err != nil {
		log.Fatalf("replay: %v", err)
	}

	opts := &docs.MermaidOpts{OwnerFilter: vocabulary.AgentId(*owner)}
	if err := docs.Mermaid(records, opts, os.Stdout); err != nil {
		log.Fatalf("replay: %v", err)
	}
}
