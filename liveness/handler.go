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
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/botvisor/botvisor"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusSource is anything that can describe the supervised child.
// *botvisor.Supervisor satisfies it.
type StatusSource interface {
	Status() botvisor.Status
}

// Handler serves GET /, which always answers 200 with a fixed message.
// The optional routes (/status, /log, /log/clear and /metrics) exist only
// when the corresponding Option was given.
type Handler struct {
	r        *mux.Router
	message  string
	status   StatusSource
	log      *botvisor.Log
	gatherer prometheus.Gatherer
}

type Option func(h *Handler)

// WithMessage replaces DefaultMessage.
func WithMessage(msg string) Option {
	return func(h *Handler) {
		if msg != "" {
			h.message = msg
		}
	}
}

// WithStatus adds GET /status.
func WithStatus(src StatusSource) Option {
	return func(h *Handler) { h.status = src }
}

// WithLog adds GET /log and POST /log/clear.
func WithLog(l *botvisor.Log) Option {
	return func(h *Handler) { h.log = l }
}

// WithMetrics adds GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(h *Handler) { h.gatherer = g }
}

func (h *Handler) internalError(w http.ResponseWriter, e error) {
	http.Error(w, e.Error(), http.StatusInternalServerError)
}

func (h *Handler) writeJson(w http.ResponseWriter, v interface{}) {
	if b, e := json.Marshal(v); e != nil {
		h.internalError(w, e)
	} else {
		w.Header().Set("Content-Type", mimeJson)
		w.Write(b)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, e *Error) {
	if b, err := json.Marshal(e); err != nil {
		h.internalError(w, err)
	} else {
		w.Header().Set("Content-Type", mimeJson)
		w.WriteHeader(e.Code)
		w.Write(b)
	}
}

func (h *Handler) alive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", mimeText)
	w.Header().Set("Content-Length", strconv.Itoa(len(h.message)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write([]byte(h.message))
	}
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJson(w, h.status.Status())
}

func parseEtag(s string) (int64, bool) {
	s = strings.Trim(s, `"`)
	if s == "" {
		return 0, true
	}
	n, e := strconv.ParseInt(s, 10, 64)
	return n, e == nil
}

// pollTime returns how long a request asked to wait for a change.
// The header is in seconds; the query parameter may also be a duration.
func pollTime(r *http.Request) (time.Duration, bool) {
	var wait time.Duration
	if v := r.Header.Get(PollTimeHeader); v != "" {
		n, e := strconv.Atoi(v)
		if e != nil || n < 0 {
			return 0, false
		}
		wait = time.Duration(n) * time.Second
	} else if v := r.URL.Query().Get("wait"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			wait = time.Duration(n) * time.Second
		} else if d, e := time.ParseDuration(v); e == nil {
			wait = d
		} else {
			return 0, false
		}
		if wait < 0 {
			return 0, false
		}
	}
	if wait > MaxPollTime {
		wait = MaxPollTime
	}
	return wait, true
}

// getLog returns the log records.  The log's change ID doubles as the
// ETag, so a poller that sends If-None-Match gets 304 until something new
// is logged.  With a poll time as well, the request is held until then.
func (h *Handler) getLog(w http.ResponseWriter, r *http.Request) {
	last, valid := parseEtag(r.Header.Get("If-None-Match"))
	if !valid {
		h.writeError(w, &Error{http.StatusBadRequest, "Malformed If-None-Match"})
		return
	}
	if last == 0 {
		if last, valid = parseEtag(r.Header.Get(PollEtagHeader)); !valid {
			h.writeError(w, &Error{http.StatusBadRequest, "Malformed " + PollEtagHeader})
			return
		}
	}
	wait, valid := pollTime(r)
	if !valid {
		h.writeError(w, &Error{http.StatusBadRequest, "Malformed poll time"})
		return
	}
	if wait > 0 && last != 0 {
		h.log.Watch(last, wait)
	}

	recs, id := h.log.GetRecords(last)
	w.Header().Set("ETag", `"`+strconv.FormatInt(id, 10)+`"`)
	if recs == nil && last != 0 {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	h.writeJson(w, recs)
}

func (h *Handler) clearLog(w http.ResponseWriter, r *http.Request) {
	h.log.Clear()
	h.writeJson(w, ok)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.r.ServeHTTP(w, req)
}

func NewHandler(opts ...Option) *Handler {
	r := mux.NewRouter()
	h := &Handler{r: r, message: DefaultMessage}
	for _, o := range opts {
		o(h)
	}
	r.HandleFunc("/", h.alive).Methods("GET", "HEAD")
	if h.status != nil {
		r.HandleFunc("/status", h.getStatus).Methods("GET")
	}
	if h.log != nil {
		r.HandleFunc("/log", h.getLog).Methods("GET")
		r.HandleFunc("/log/clear", h.clearLog).Methods("POST")
	}
	if h.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}
	return h
}
