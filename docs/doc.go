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

// Package docs renders two kinds of documentation out of a running
// (or recorded) simulation: a Markdown-to-HTML vocabulary reference
// (github.com/russross/blackfriday/v2, grounded on the teacher's
// tools.RenderSpecHTML) and a Mermaid state-transition diagram built
// from observed recorder.TickRecords (grounded on tools.Mermaid).
package docs
