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
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultStopTime is how long Stop waits after asking the child to
	// terminate before killing it outright.
	DefaultStopTime = time.Second * 10

	chunkSize = 32 * 1024
)

// Command describes the program a Process runs.  Path is looked up on the
// search path when it contains no path separator.  Args excludes the
// program name.  Env entries (KEY=VALUE) are appended to the host's own
// environment.  An empty Dir means the host's working directory.
type Command struct {
	Path     string
	Args     []string
	Dir      string
	Env      []string
	StopTime time.Duration
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// ExitStatus describes how a child terminated.  Code is -1 when the child
// did not exit normally.  Err is set only when waiting for the child
// failed for a reason other than the child's own exit status.
type ExitStatus struct {
	Code   int
	Signal string
	Err    error
}

func (es ExitStatus) String() string {
	switch {
	case es.Signal != "":
		return "killed by signal " + es.Signal
	case es.Err != nil:
		return "failed: " + es.Err.Error()
	}
	return fmt.Sprintf("exited with code %d", es.Code)
}

// Success reports whether the child exited normally with code 0.
func (es ExitStatus) Success() bool {
	return es.Code == 0 && es.Signal == "" && es.Err == nil
}

func exitStatusOf(state *os.ProcessState, err error) ExitStatus {
	es := ExitStatus{Code: -1}
	if state != nil {
		es.Code = state.ExitCode()
		es.Signal = signalName(state)
	}
	var ee *exec.ExitError
	if err != nil && !errors.As(err, &ee) {
		es.Err = err
	}
	return es
}

// Process is the handle to a launched child.  The child's streams are
// consumed by the Process itself; callers observe them through the Sink
// passed to Launch.
type Process struct {
	id      string
	pid     int
	command Command
	cmd     *exec.Cmd
	sink    Sink
	started time.Time
	status  ExitStatus
	exited  bool
	reaped  bool // pid may be released, do not signal it
	done    chan struct{}
	mx      sync.Mutex
}

// Launch starts the command and returns its handle.  The sink first gets
// an EventStart, then the stdout and stderr chunks as they arrive, and
// finally a single EventExit once both streams are drained and the child
// has been reaped.
//
// If the child cannot be started, a *LaunchError is returned and the sink
// is never called.
func Launch(c Command, sink Sink) (*Process, error) {
	if c.Path == "" {
		return nil, &LaunchError{Command: c, Err: ErrNoCommand}
	}
	if sink == nil {
		sink = Discard
	}
	cmd := exec.Command(c.Path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) != 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	setProcAttr(cmd)

	stdout, e := cmd.StdoutPipe()
	if e != nil {
		return nil, &LaunchError{Command: c, Err: e}
	}
	stderr, e := cmd.StderrPipe()
	if e != nil {
		stdout.Close()
		return nil, &LaunchError{Command: c, Err: e}
	}
	// Start closes both pipes itself when it fails.
	if e := cmd.Start(); e != nil {
		return nil, &LaunchError{Command: c, Err: e}
	}

	p := &Process{
		id:      uuid.NewString(),
		pid:     cmd.Process.Pid,
		command: c,
		cmd:     cmd,
		sink:    sink,
		started: time.Now(),
		done:    make(chan struct{}),
	}
	p.emit(Event{Kind: EventStart})

	var readers sync.WaitGroup
	readers.Add(2)
	go p.forward(stdout, EventStdout, &readers)
	go p.forward(stderr, EventStderr, &readers)
	go p.wait(&readers)

	return p, nil
}

func (p *Process) emit(ev Event) {
	ev.Pid = p.pid
	ev.ID = p.id
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	p.sink.Event(ev)
}

func (p *Process) forward(r io.Reader, kind EventKind, wg *sync.WaitGroup) {
	defer wg.Done()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			p.emit(Event{Kind: kind, Data: chunk})
		}
		if err != nil {
			return
		}
	}
}

// wait reaps the child.  exec.Cmd requires the pipes to be drained before
// Wait is called, which also gives us the ordering guarantee that the exit
// event follows every chunk.
func (p *Process) wait(readers *sync.WaitGroup) {
	readers.Wait()
	if awaitExit(p.pid) {
		p.mx.Lock()
		p.reaped = true
		p.mx.Unlock()
	}

	e := p.cmd.Wait()
	status := exitStatusOf(p.cmd.ProcessState, e)

	p.mx.Lock()
	p.status = status
	p.exited = true
	p.reaped = true
	p.mx.Unlock()

	p.emit(Event{Kind: EventExit, Status: status})
	close(p.done)
}

// Pid returns the operating system process identifier.
func (p *Process) Pid() int {
	return p.pid
}

// ID returns a unique identifier for this launch.  Unlike the pid, it is
// never reused.
func (p *Process) ID() string {
	return p.id
}

func (p *Process) Command() Command {
	return p.command
}

func (p *Process) StartTime() time.Time {
	return p.started
}

// Running is true until the child has been reaped.
func (p *Process) Running() bool {
	p.mx.Lock()
	defer p.mx.Unlock()
	return !p.exited
}

// Done is closed after the exit event has been delivered to the sink.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// ExitStatus returns the exit status, and false if the child has not
// terminated yet.
func (p *Process) ExitStatus() (ExitStatus, bool) {
	p.mx.Lock()
	defer p.mx.Unlock()
	return p.status, p.exited
}

// Wait blocks until the child has terminated, or the context is done.
func (p *Process) Wait(ctx context.Context) (ExitStatus, error) {
	select {
	case <-p.done:
		es, _ := p.ExitStatus()
		return es, nil
	case <-ctx.Done():
		return ExitStatus{}, ctx.Err()
	}
}

func (p *Process) stopTime() time.Duration {
	if p.command.StopTime > 0 {
		return p.command.StopTime
	}
	return DefaultStopTime
}
