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
	"strings"
	"sync"
	"time"
)

const (
	MaxLogRecords = 1000
)

// LogRecord is one line held by a Log.  Stream is "stdout", "stderr" or
// "exit" for lines that came from a child, and empty for lines written
// through the io.Writer interface.
type LogRecord struct {
	Id     int64     `json:"id,string"`
	Time   time.Time `json:"time"`
	Stream string    `json:"stream,omitempty"`
	Pid    int       `json:"pid,omitempty"`
	Text   string    `json:"text"`
}

// Log keeps the most recent MaxLogRecords lines in memory.  It can be
// used both as an io.Writer for a log.Logger, and as a Sink for child
// events, so that host messages and child output interleave in one place.
type Log struct {
	records    []LogRecord
	numRecords int
	maxRecords int
	id         int64
	cvs        map[*sync.Cond]bool
	mx         sync.Mutex
}

func (log *Log) lock() {
	log.mx.Lock()
}

func (log *Log) unlock() {
	log.mx.Unlock()
}

// add appends lines.  Call with lock held.
func (log *Log) add(now time.Time, stream string, pid int, text string) {
	for _, line := range strings.Split(strings.Trim(text, "\n"), "\n") {
		idx := log.numRecords % log.maxRecords
		log.id++
		log.records[idx] = LogRecord{
			Id:     log.id,
			Time:   now,
			Stream: stream,
			Pid:    pid,
			Text:   line,
		}
		// NB: numRecords may actually be more than maxRecords.
		// In that case, we've looped, but we use this really to
		// track the next index.
		log.numRecords++
	}
	for cv := range log.cvs {
		cv.Broadcast()
	}
}

// Write implements the Writer interface consumed by Logger.
func (log *Log) Write(b []byte) (int, error) {
	log.lock()
	log.add(time.Now(), "", 0, string(b))
	log.unlock()
	return len(b), nil
}

// Event implements Sink.  Chunks are split into lines; a chunk that ends
// mid-line simply produces a record for the partial line.
func (log *Log) Event(ev Event) {
	now := ev.Time
	if now.IsZero() {
		now = time.Now()
	}
	log.lock()
	switch ev.Kind {
	case EventStdout, EventStderr:
		log.add(now, ev.Kind.String(), ev.Pid, string(ev.Data))
	case EventExit:
		log.add(now, ev.Kind.String(), ev.Pid, ev.Status.String())
	}
	log.unlock()
}

func (log *Log) Clear() {
	log.lock()
	log.numRecords = 0
	// We presume that we cannot add new records more quickly than
	// once every nanosecond.
	log.id = time.Now().UnixNano()
	for cv := range log.cvs {
		cv.Broadcast()
	}
	log.unlock()
}

// GetRecords returns the records that are stored, as well as an ID
// suitable for use as an Etag.  The last parameter can be the last ID
// that was checked, in which case this function will return nil immediately
// if the log has not changed since that ID was returned, without duplicating
// any records.  Note that IDs are not unique across different Log instances.
func (log *Log) GetRecords(last int64) ([]LogRecord, int64) {
	log.lock()
	defer log.unlock()
	if log.id == last {
		return nil, last
	}
	cnt := log.numRecords
	if cnt > log.maxRecords {
		cnt = log.maxRecords
	}
	recs := make([]LogRecord, 0, cnt)
	index := log.numRecords - cnt
	for j := 0; j < cnt; j++ {
		recs = append(recs, log.records[index%log.maxRecords])
		index++
	}
	return recs, log.id
}

// Watch blocks until the log changes from the given ID, or until expire
// has elapsed.  It returns the current ID.  An expire of zero polls.
func (log *Log) Watch(last int64, expire time.Duration) int64 {
	expired := false
	var timer *time.Timer
	cv := sync.NewCond(&log.mx)
	if expire > 0 {
		timer = time.AfterFunc(expire, func() {
			log.lock()
			expired = true
			cv.Broadcast()
			log.unlock()
		})
	} else {
		expired = true
	}

	log.lock()
	log.cvs[cv] = true
	for log.id == last && !expired {
		cv.Wait()
	}
	delete(log.cvs, cv)
	last = log.id
	log.unlock()
	if timer != nil {
		timer.Stop()
	}
	return last
}

// NewLog returns a Log instance holding at most max records.  A max of
// zero means MaxLogRecords.
func NewLog(max int) *Log {
	if max <= 0 {
		max = MaxLogRecords
	}
	log := &Log{
		records:    make([]LogRecord, max),
		maxRecords: max,
		id:         time.Now().UnixNano(),
		cvs:        make(map[*sync.Cond]bool),
	}
	return log
}
