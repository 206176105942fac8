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

package liveness

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
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

func fetch(addr string) (int, string, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, e := client.Get("http://" + addr + "/")
	if e != nil {
		return 0, "", e
	}
	defer resp.Body.Close()
	b, e := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b), e
}

func TestServer(t *testing.T) {
	Convey("A server on a free port", t, func() {
		s := NewServer(Config{
			Addr:   "127.0.0.1:0",
			Logger: log.New(&testLog{t: t}, "", 0),
		})
		So(s.Done(), ShouldBeNil)
		So(s.Start(), ShouldBeNil)
		Reset(func() {
			s.Shutdown(context.Background())
		})

		So(s.Addr(), ShouldNotEqual, "127.0.0.1:0")
		code, body, e := fetch(s.Addr())
		So(e, ShouldBeNil)
		So(code, ShouldEqual, http.StatusOK)
		So(body, ShouldEqual, DefaultMessage)

		Convey("Cannot be started twice", func() {
			So(s.Start(), ShouldEqual, ErrServerStarted)
		})

		Convey("Shuts down cleanly", func() {
			So(s.Shutdown(context.Background()), ShouldBeNil)
			select {
			case <-s.Done():
			case <-time.After(5 * time.Second):
				So("timed out", ShouldBeEmpty)
			}
			So(s.Err(), ShouldBeNil)
		})
	})
}

func TestBindError(t *testing.T) {
	Convey("Binding a port that is in use", t, func() {
		busy, e := net.Listen("tcp", "127.0.0.1:0")
		So(e, ShouldBeNil)
		addr := busy.Addr().String()

		s := NewServer(Config{
			Addr:   addr,
			Logger: log.New(&testLog{t: t}, "", 0),
		})
		Reset(func() {
			busy.Close()
			s.Shutdown(context.Background())
		})

		e = s.Start()
		So(e, ShouldNotBeNil)
		var be *BindError
		So(errors.As(e, &be), ShouldBeTrue)
		So(be.Addr, ShouldEqual, addr)
		So(s.Done(), ShouldBeNil)

		Convey("Succeeds once the port is free", func() {
			So(busy.Close(), ShouldBeNil)
			So(s.Start(), ShouldBeNil)
			code, _, e := fetch(s.Addr())
			So(e, ShouldBeNil)
			So(code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestMaxConns(t *testing.T) {
	Convey("A connection-limited server still answers", t, func() {
		s := NewServer(Config{
			Addr:     "127.0.0.1:0",
			MaxConns: 1,
			Logger:   log.New(&testLog{t: t}, "", 0),
		})
		So(s.Start(), ShouldBeNil)
		Reset(func() {
			s.Shutdown(context.Background())
		})
		for i := 0; i < 3; i++ {
			code, _, e := fetch(s.Addr())
			So(e, ShouldBeNil)
			So(code, ShouldEqual, http.StatusOK)
		}
	})
}
