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

// Command docs renders a vocabulary's Markdown documentation to HTML,
// in the spirit of the teacher's small single-purpose cmd/spectool.
package main

import (
	"flag"
	"io/ioutil"
	"log"
	"os"
	"strings"

	"github.com/meridianlabs/agentfsm/docs"
)

func main() {
	var (
		title = flag.String("t", "Vocabulary", "page title")
		css   = flag.String("css", "", "comma-separated stylesheet hrefs")
		frag  = flag.Bool("f", false, "emit an HTML fragment instead of a full page")
	)
	flag.Parse()

	var src []byte
	var err error
	if args := flag.Args(); len(args) > 0 {
		src, err = ioutil.ReadFile(args[0])
	} else {
		src, err = ioutil.ReadAll(os.Stdin)
	}
	if err != nil {
		log.Fatalf("docs: %v", err)
	}

	var cssFiles []string
	if *css != "" {
		cssFiles = strings.Split(*css, ",")
	}

	if *frag {
		err = docs.RenderVocabulary(string(src), os.Stdout)
	} else {
		err = docs.RenderPage(*title, string(src), os.Stdout, cssFiles)
	}
	if err != nil {
		log.Fatalf("docs: %v", err)
	}
}
