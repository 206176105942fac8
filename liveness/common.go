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

// Package liveness provides the HTTP endpoint that uptime monitors poll to
// confirm that the host process is alive, along with the listener that
// serves it.
package liveness

import (
	"errors"
	"fmt"
	"time"
)

const (
	mimeJson = "application/json; charset=UTF-8"
	mimeText = "text/plain; charset=utf-8"

	// DefaultMessage is the body returned by GET /.
	DefaultMessage = "Bot is running!"

	// A GET /log carrying PollEtagHeader (or If-None-Match) and
	// PollTimeHeader, in seconds, is held until the log changes or the
	// time runs out.  The wait query parameter does the same.
	PollEtagHeader = "X-Botvisor-Poll-Etag"
	PollTimeHeader = "X-Botvisor-Poll-Time"

	// MaxPollTime caps how long a single poll may be held.
	MaxPollTime = time.Minute
)

var (
	ErrServerStarted = errors.New("Server already started")
)

var ok struct{}

// BindError is returned by Server.Start when the listening socket could
// not be created, typically because the port is in use.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}
