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

//go:build !unix

package botvisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

func setProcAttr(cmd *exec.Cmd) {}

func signalName(state *os.ProcessState) string {
	return ""
}

// Stop kills the child.  There is no graceful step on these platforms,
// and descendants of the child are not reached.
func (p *Process) Stop(ctx context.Context) error {
	if !p.Running() {
		return nil
	}
	if e := p.cmd.Process.Kill(); e != nil && !errors.Is(e, os.ErrProcessDone) {
		return fmt.Errorf("kill process %d: %w", p.pid, e)
	}
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
