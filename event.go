// Copyright 2026 The Botvisor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package botvisor

import (
	"fmt"
	"time"
)

// EventKind identifies what a child process produced.
type EventKind int

const (
	EventStart  EventKind = iota // process created
	EventStdout                  // chunk read from standard output
	EventStderr                  // chunk read from standard error
	EventExit                    // process reaped; always the last event
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventStdout:
		return "stdout"
	case EventStderr:
		return "stderr"
	case EventExit:
		return "exit"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is delivered to a Sink for everything observed about a child.
// Data is only set for stdout and stderr chunks, and is never shared
// with another Event.  Status is only meaningful for EventExit.
type Event struct {
	Kind   EventKind
	Pid    int
	ID     string
	Data   []byte
	Status ExitStatus
	Time   time.Time
}

// Sink receives events from running children.  Events for the stdout and
// stderr streams arrive from different goroutines, so implementations
// must be safe for concurrent use.  Chunks from the same stream are
// delivered in order, and EventExit is delivered after every chunk.
type Sink interface {
	Event(ev Event)
}

type discard struct{}

func (discard) Event(Event) {}

// Discard is a Sink that drops every event.
var Discard Sink = discard{}
