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
	"context"
	"log"
	"os"
	"sync"
	"time"
)

// Supervisor owns at most one child process at a time.  It is the
// explicit start point a host composes with its other components: Start
// neither depends on nor blocks anything else the host runs.
type Supervisor struct {
	name    string
	command Command
	sink    Sink
	logger  *log.Logger
	proc    *Process
	mx      sync.Mutex
}

// Status is a point-in-time summary of a Supervisor, suitable for JSON.
type Status struct {
	Name    string    `json:"name"`
	Command string    `json:"command"`
	ID      string    `json:"id,omitempty"`
	Pid     int       `json:"pid,omitempty"`
	Running bool      `json:"running"`
	Started time.Time `json:"started,omitempty"`
	Exit    string    `json:"exit,omitempty"`
	Code    *int      `json:"code,omitempty"`
}

func NewSupervisor(name string, c Command, sink Sink) *Supervisor {
	if name == "" {
		name = "botvisor"
	}
	if sink == nil {
		sink = Discard
	}
	return &Supervisor{
		name:    name,
		command: c,
		sink:    sink,
		logger:  log.New(os.Stderr, "", log.LstdFlags),
	}
}

func (s *Supervisor) Name() string {
	return s.name
}

// SetLogger replaces the logger used for the supervisor's own notices.
// Child output never goes here; it goes to the sink.
func (s *Supervisor) SetLogger(l *log.Logger) {
	s.mx.Lock()
	s.logger = l
	s.mx.Unlock()
}

// logf must be called without s.mx held.
func (s *Supervisor) logf(format string, v ...interface{}) {
	s.mx.Lock()
	logger := s.logger
	s.mx.Unlock()
	if logger != nil {
		logger.Printf(format, v...)
	}
}

// Start launches the configured command.  It fails with ErrAlreadyRunning
// if the previous child is still alive, and with a *LaunchError if the
// child could not be created.  Once the child has exited, Start may be
// called again.
func (s *Supervisor) Start() error {
	s.mx.Lock()
	if s.proc != nil && s.proc.Running() {
		s.mx.Unlock()
		return ErrAlreadyRunning
	}
	p, e := Launch(s.command, s.sink)
	if e == nil {
		s.proc = p
	}
	s.mx.Unlock()

	if e != nil {
		s.logf("Failed to start %s: %v", s.name, e)
		return e
	}
	s.logf("Started %s (pid %d): %s", s.name, p.Pid(), s.command)
	return nil
}

// Process returns the handle of the most recently launched child, or nil.
func (s *Supervisor) Process() *Process {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.proc
}

// Stop terminates the child, if there is one still running.
func (s *Supervisor) Stop(ctx context.Context) error {
	p := s.Process()
	if p == nil {
		return ErrNotStarted
	}
	if !p.Running() {
		return nil
	}
	s.logf("Stopping %s (pid %d)", s.name, p.Pid())
	return p.Stop(ctx)
}

func (s *Supervisor) Status() Status {
	st := Status{
		Name:    s.name,
		Command: s.command.String(),
	}
	p := s.Process()
	if p == nil {
		return st
	}
	st.ID = p.ID()
	st.Pid = p.Pid()
	st.Started = p.StartTime()
	if es, ok := p.ExitStatus(); ok {
		st.Exit = es.String()
		if es.Code >= 0 {
			code := es.Code
			st.Code = &code
		}
	} else {
		st.Running = true
	}
	return st
}
