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

// Package botvisor supervises a single child process on behalf of a
// long-running host.  The child is launched with Launch (or through a
// Supervisor, which owns at most one child at a time), its standard output
// and standard error are forwarded chunk by chunk to a Sink, and its
// termination is reported to the same Sink exactly once.
//
// A non-zero exit is only ever reported.  There is no restart policy; the
// host decides what to do with a dead child, and the Process handle that
// Launch returns is the place to hang such decisions.
//
// The liveness subpackage supplies the HTTP endpoint that uptime monitors
// poll, and the botvisord command composes the two.
package botvisor
