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
	"errors"
	"fmt"
)

var (
	ErrNoCommand      = errors.New("No command to launch")
	ErrAlreadyRunning = errors.New("Process is already running")
	ErrNotStarted     = errors.New("Process was never started")
)

// LaunchError is returned when a child process could not be created,
// either because the executable was not found or because the operating
// system refused to start it.  The underlying error is available through
// errors.Is and errors.As.
type LaunchError struct {
	Command Command
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Command.Path, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}
