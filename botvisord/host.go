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

package main

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/botvisor/botvisor"
	"github.com/botvisor/botvisor/config"
	"github.com/botvisor/botvisor/liveness"
	"github.com/botvisor/botvisor/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 15 * time.Second

// host composes the supervisor and the liveness server.  Neither one's
// failure to start prevents the other from starting.
type host struct {
	cfg    *config.Config
	logger *log.Logger
	rlog   *botvisor.Log
	sup    *botvisor.Supervisor
	srv    *liveness.Server
}

func newHost(cfg *config.Config, stdout, stderr io.Writer) *host {
	rlog := botvisor.NewLog(0)
	logger := log.New(io.MultiWriter(stderr, rlog), "", log.LstdFlags)

	sink := botvisor.NewMultiSink(
		botvisor.NewLogSink(cfg.Name,
			log.New(stdout, "", log.LstdFlags),
			log.New(stderr, "", log.LstdFlags)),
		rlog,
	)

	var opts []liveness.Option
	opts = append(opts, liveness.WithMessage(cfg.Message))
	if cfg.Metrics {
		reg := prometheus.NewRegistry()
		sink.AddSink(metrics.NewCollector(reg))
		opts = append(opts, liveness.WithMetrics(reg))
	}

	sup := botvisor.NewSupervisor(cfg.Name, cfg.ProcessCommand(), sink)
	sup.SetLogger(logger)
	if cfg.Status {
		opts = append(opts, liveness.WithStatus(sup), liveness.WithLog(rlog))
	}

	srv := liveness.NewServer(liveness.Config{
		Addr:     cfg.Addr(),
		Handler:  liveness.NewHandler(opts...),
		MaxConns: cfg.MaxConns,
		Logger:   logger,
	})

	return &host{
		cfg:    cfg,
		logger: logger,
		rlog:   rlog,
		sup:    sup,
		srv:    srv,
	}
}

// start launches the child and binds the listener.  A launch failure is
// only logged; a bind failure is returned, after the child (if any) has
// been dealt with.
func (h *host) start() error {
	if e := h.sup.Start(); e != nil {
		h.logger.Printf("Continuing without %s: %v", h.cfg.Name, e)
	}
	if e := h.srv.Start(); e != nil {
		h.logger.Printf("Liveness endpoint failed: %v", e)
		h.stopChild()
		return e
	}
	return nil
}

// wait blocks until ctx is done or the server stops on its own.
func (h *host) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		h.logger.Printf("Shutting down")
	case <-h.srv.Done():
		if e := h.srv.Err(); e != nil {
			h.logger.Printf("Liveness endpoint stopped: %v", e)
		}
	}
	return h.shutdown()
}

func (h *host) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	e := h.srv.Shutdown(ctx)
	h.stopChild()
	if e == nil {
		e = h.srv.Err()
	}
	return e
}

func (h *host) stopChild() {
	if h.cfg.Detach {
		if p := h.sup.Process(); p != nil && p.Running() {
			h.logger.Printf("Leaving %s (pid %d) running", h.cfg.Name, p.Pid())
		}
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if e := h.sup.Stop(ctx); e != nil && !errors.Is(e, botvisor.ErrNotStarted) {
		h.logger.Printf("Failed to stop %s: %v", h.cfg.Name, e)
	}
}

func run(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	h := newHost(cfg, stdout, stderr)
	if e := h.start(); e != nil {
		return e
	}
	return h.wait(ctx)
}
