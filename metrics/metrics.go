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

// Package metrics counts what supervised children do, for exposition in
// the Prometheus text format.
package metrics

import (
	"strconv"

	"github.com/botvisor/botvisor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "botvisor"
)

// Collector is a botvisor.Sink that turns child events into metrics.
type Collector struct {
	launches prometheus.Counter
	running  prometheus.Gauge
	chunks   *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	exits    *prometheus.CounterVec
}

// NewCollector creates the collector's metrics and registers them with
// reg.  Passing a fresh prometheus.NewRegistry keeps separate collectors
// (in tests, say) from colliding.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		launches: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "process",
			Name:      "launches_total",
			Help:      "Count of child processes launched",
		}),
		running: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "process",
			Name:      "running",
			Help:      "Number of child processes not yet reaped",
		}),
		chunks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "output",
			Name:      "chunks_total",
			Help:      "Count of output chunks read from children, by stream",
		}, []string{"stream"}),
		bytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "output",
			Name:      "bytes_total",
			Help:      "Count of output bytes read from children, by stream",
		}, []string{"stream"}),
		exits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "process",
			Name:      "exits_total",
			Help:      "Count of child process exits, by exit code or signal",
		}, []string{"status"}),
	}
}

func (c *Collector) Event(ev botvisor.Event) {
	switch ev.Kind {
	case botvisor.EventStart:
		c.launches.Inc()
		c.running.Inc()
	case botvisor.EventStdout, botvisor.EventStderr:
		stream := ev.Kind.String()
		c.chunks.WithLabelValues(stream).Inc()
		c.bytes.WithLabelValues(stream).Add(float64(len(ev.Data)))
	case botvisor.EventExit:
		c.running.Dec()
		c.exits.WithLabelValues(exitLabel(ev.Status)).Inc()
	}
}

func exitLabel(es botvisor.ExitStatus) string {
	switch {
	case es.Signal != "":
		return es.Signal
	case es.Err != nil:
		return "error"
	}
	return strconv.Itoa(es.Code)
}
