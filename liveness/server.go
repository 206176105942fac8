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
	"log"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/net/netutil"
)

const (
	defaultReadHeader = 5 * time.Second
)

// Config controls construction of a Server.
type Config struct {
	Addr              string       // host:port; ":0" picks a free port
	Handler           http.Handler // defaults to NewHandler()
	MaxConns          int          // concurrent connections; 0 is unlimited
	ReadHeaderTimeout time.Duration
	Logger            *log.Logger
}

// Server is the listener for the liveness endpoint.  Binding happens
// synchronously in Start, so callers learn about an unusable port right
// away; serving happens in the background.
type Server struct {
	cfg    Config
	srv    *http.Server
	ln     net.Listener
	done   chan struct{}
	err    error
	logger *log.Logger
	mx     sync.Mutex
}

func NewServer(cfg Config) *Server {
	if cfg.Handler == nil {
		cfg.Handler = NewHandler()
	}
	if cfg.ReadHeaderTimeout == 0 {
		cfg.ReadHeaderTimeout = defaultReadHeader
	}
	s := &Server{cfg: cfg, logger: cfg.Logger}
	if s.logger == nil {
		s.logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return s
}

// Start binds the listening socket and begins serving.  If the address
// cannot be bound, a *BindError is returned and nothing is served; Start
// may then be tried again.
func (s *Server) Start() error {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.ln != nil {
		return ErrServerStarted
	}
	ln, e := net.Listen("tcp", s.cfg.Addr)
	if e != nil {
		return &BindError{Addr: s.cfg.Addr, Err: e}
	}
	if s.cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConns)
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.cfg.Handler,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ErrorLog:          s.logger,
	}
	s.done = make(chan struct{})
	go s.serve(s.srv, ln, s.done)

	s.logger.Printf("Server is running on %s", ln.Addr())
	return nil
}

func (s *Server) serve(srv *http.Server, ln net.Listener, done chan struct{}) {
	e := srv.Serve(ln)
	if errors.Is(e, http.ErrServerClosed) {
		e = nil
	}
	s.mx.Lock()
	s.err = e
	s.mx.Unlock()
	close(done)
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.cfg.Addr
}

// Done is closed when the server stops serving.  It is nil before a
// successful Start.
func (s *Server) Done() <-chan struct{} {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.done
}

// Err returns the error that stopped the server, if any.  A clean
// Shutdown is not an error.
func (s *Server) Err() error {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.err
}

// Shutdown stops accepting connections and waits for in-flight requests,
// bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mx.Lock()
	srv := s.srv
	s.mx.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
