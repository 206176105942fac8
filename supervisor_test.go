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
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type testLog struct {
	t *testing.T
}

func (tl *testLog) Write(p []byte) (n int, err error) {
	tl.t.Log(strings.Trim(string(p), "\n"))
	return len(p), nil
}

func WithSupervisor(t *testing.T, c Command, fn func(s *Supervisor, sink *testSink)) func() {
	return func() {
		sink := &testSink{}
		s := NewSupervisor("test", c, sink)
		So(s, ShouldNotBeNil)
		s.SetLogger(log.New(&testLog{t: t}, "", 0))
		Reset(func() {
			if p := s.Process(); p != nil {
				p.Stop(context.Background())
			}
		})
		fn(s, sink)
	}
}

func TestSupervisorStartStop(t *testing.T) {
	Convey("Supervising a long running child", t,
		WithSupervisor(t, testCommand("sleep", "3600"), func(s *Supervisor, sink *testSink) {
			So(s.Name(), ShouldEqual, "test")
			So(s.Process(), ShouldBeNil)
			So(s.Status().Running, ShouldBeFalse)
			So(s.Stop(context.Background()), ShouldEqual, ErrNotStarted)

			e := s.Start()
			So(e, ShouldBeNil)
			p := s.Process()
			So(p, ShouldNotBeNil)
			So(p.Running(), ShouldBeTrue)

			st := s.Status()
			So(st.Running, ShouldBeTrue)
			So(st.Pid, ShouldEqual, p.Pid())
			So(st.ID, ShouldEqual, p.ID())
			So(st.Command, ShouldEqual, "/bin/sh process_test.sh sleep 3600")
			So(st.Code, ShouldBeNil)

			Convey("A second start is refused", func() {
				So(s.Start(), ShouldEqual, ErrAlreadyRunning)
				So(s.Process() == p, ShouldBeTrue)
			})

			Convey("Stop reaps the child", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				So(s.Stop(ctx), ShouldBeNil)
				st := s.Status()
				So(st.Running, ShouldBeFalse)
				So(st.Exit, ShouldEqual, "killed by signal SIGTERM")
				So(st.Code, ShouldBeNil)
				So(len(sink.Kind(EventExit)), ShouldEqual, 1)

				Convey("And the child may then be started again", func() {
					So(s.Start(), ShouldBeNil)
					So(s.Process() != p, ShouldBeTrue)
					So(s.Process().Pid(), ShouldNotEqual, p.Pid())
				})
			})
		}))
}

func TestSupervisorExit(t *testing.T) {
	Convey("A child exiting non-zero", t,
		WithSupervisor(t, testCommand("fail"), func(s *Supervisor, sink *testSink) {
			So(s.Start(), ShouldBeNil)
			waitExit(s.Process())
			st := s.Status()
			So(st.Running, ShouldBeFalse)
			So(st.Code, ShouldNotBeNil)
			So(*st.Code, ShouldEqual, 1)
			So(st.Exit, ShouldEqual, "exited with code 1")
			So(s.Stop(context.Background()), ShouldBeNil)
		}))
}

func TestSupervisorLaunchError(t *testing.T) {
	Convey("A supervisor whose command is missing", t,
		WithSupervisor(t, Command{Path: "this-does-not-exist-xyz"}, func(s *Supervisor, sink *testSink) {
			e := s.Start()
			var le *LaunchError
			So(errors.As(e, &le), ShouldBeTrue)
			So(s.Process(), ShouldBeNil)
			So(len(sink.Events()), ShouldEqual, 0)
			So(s.Status().Running, ShouldBeFalse)
		}))
}

func TestSupervisorLoggerSwap(t *testing.T) {
	Convey("Replacing the logger while the supervisor works", t,
		WithSupervisor(t, testCommand("exit", "0"), func(s *Supervisor, sink *testSink) {
			var buf syncBuffer
			done := make(chan struct{})
			go func() {
				defer close(done)
				for i := 0; i < 50; i++ {
					s.SetLogger(log.New(&buf, "", 0))
					s.SetLogger(log.New(&testLog{t: t}, "", 0))
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			for i := 0; i < 5; i++ {
				So(s.Start(), ShouldBeNil)
				s.Stop(ctx)
				waitExit(s.Process())
			}
			<-done

			s.SetLogger(log.New(&buf, "", 0))
			So(s.Start(), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "Started test (pid ")
		}))
}

type syncBuffer struct {
	mx  sync.Mutex
	buf strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.buf.String()
}
