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

//go:build unix

package botvisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// The child leads its own process group, so that signals sent by Stop
// also reach anything it spawned.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func signalName(state *os.ProcessState) string {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return unix.SignalName(ws.Signal())
	}
	return ""
}

// signalGroup signals the child's process group, unless the child has
// been (or is about to be) reaped, in which case its pid may already
// belong to someone else.
func (p *Process) signalGroup(sig unix.Signal) error {
	p.mx.Lock()
	defer p.mx.Unlock()
	if p.reaped {
		return nil
	}
	if e := unix.Kill(-p.pid, sig); e != nil && !errors.Is(e, unix.ESRCH) {
		return fmt.Errorf("signal process group %d (%s): %w", p.pid, unix.SignalName(sig), e)
	}
	return nil
}

// Stop asks the child's process group to terminate with SIGTERM, and
// sends SIGKILL if the child is still around after the command's
// StopTime.  It returns once the child has been reaped, or when the
// context is done.  Stopping a child that already exited is a no-op.
func (p *Process) Stop(ctx context.Context) error {
	if !p.Running() {
		return nil
	}
	if e := p.signalGroup(unix.SIGTERM); e != nil {
		return e
	}

	timer := time.NewTimer(p.stopTime())
	defer timer.Stop()
	select {
	case <-p.done:
		return nil
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	if e := p.signalGroup(unix.SIGKILL); e != nil {
		return e
	}
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
