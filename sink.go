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
	"log"
	"os"
	"sync"
)

// LogSink is the standard log sink.  Output chunks are written verbatim to
// the standard logger tagged "stdout: ", error chunks to the error logger
// tagged "stderr: ", and termination is announced on the standard logger.
type LogSink struct {
	name   string
	stdout *log.Logger
	stderr *log.Logger
}

// NewLogSink returns a LogSink.  The name is used in the termination
// notice.  Nil loggers default to os.Stdout and os.Stderr.
func NewLogSink(name string, stdout, stderr *log.Logger) *LogSink {
	if stdout == nil {
		stdout = log.New(os.Stdout, "", log.LstdFlags)
	}
	if stderr == nil {
		stderr = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &LogSink{name: name, stdout: stdout, stderr: stderr}
}

func (s *LogSink) Event(ev Event) {
	switch ev.Kind {
	case EventStdout:
		s.stdout.Printf("stdout: %s", ev.Data)
	case EventStderr:
		s.stderr.Printf("stderr: %s", ev.Data)
	case EventExit:
		s.stdout.Printf("%s process %s", s.name, ev.Status)
	}
}

// MultiSink fans a single stream of events out to several sinks.  Events
// are delivered to the sinks in the order they were added, one event at a
// time, so sinks behind a MultiSink never see concurrent calls from it.
type MultiSink struct {
	sinks []Sink
	lock  sync.Mutex
}

func (m *MultiSink) Event(ev Event) {
	m.lock.Lock()
	for _, s := range m.sinks {
		s.Event(ev)
	}
	m.lock.Unlock()
}

// AddSink adds a sink to the MultiSink.  A sink can only be added once.
// Sinks are compared with ==, so they must be of comparable types
// (pointers, typically).
func (m *MultiSink) AddSink(s Sink) {
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, x := range m.sinks {
		if x == s {
			return
		}
	}
	m.sinks = append(m.sinks, s)
}

// DelSink removes a sink from the list of destinations.
func (m *MultiSink) DelSink(s Sink) {
	m.lock.Lock()
	defer m.lock.Unlock()
	for i, x := range m.sinks {
		if x == s {
			m.sinks = append(m.sinks[:i], m.sinks[i+1:]...)
			break
		}
	}
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		m.AddSink(s)
	}
	return m
}
