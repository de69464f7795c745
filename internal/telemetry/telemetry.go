// Package telemetry records a ranking run as a JSONL event stream: the run
// parameters, the graph's shape, every iteration's convergence distance and
// mass, and the reports written. One JSON object per line keeps the file
// appendable and easy to tail while a long threshold run is in progress.
package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Event kinds identify the type of telemetry event.
const (
	KindRunStart      = "run_start"
	KindGraphBuilt    = "graph_built"
	KindIteration     = "iteration"
	KindRunDone       = "run_done"
	KindReportWritten = "report_written"
	KindRunFailed     = "run_failed"
)

// Event is a single telemetry record.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	RunID     string    `json:"run,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// RunStart is the payload of a KindRunStart event.
type RunStart struct {
	Input         string  `json:"input"`
	Damping       float64 `json:"damping"`
	Mode          string  `json:"mode"`
	Threshold     float64 `json:"threshold,omitempty"`
	Iterations    int     `json:"iterations,omitempty"`
	MaxIterations int     `json:"max_iterations,omitempty"`
}

// GraphBuilt is the payload of a KindGraphBuilt event.
type GraphBuilt struct {
	Pages int `json:"pages"`
	Edges int `json:"edges"`
	Sinks int `json:"sinks"`
}

// Iteration is the payload of a KindIteration event.
type Iteration struct {
	Number   int     `json:"n"`
	Distance float64 `json:"distance"`
	Mass     float64 `json:"mass"`
}

// RunDone is the payload of a KindRunDone event.
type RunDone struct {
	Iterations int     `json:"iterations"`
	Distance   float64 `json:"distance"`
	Converged  bool    `json:"converged"`
	ElapsedMs  int64   `json:"elapsed_ms"`
}

// ReportWritten is the payload of a KindReportWritten event.
type ReportWritten struct {
	Path    string `json:"path"`
	Report  string `json:"report"` // "pagerank" or "inlinks"
	Entries int    `json:"entries"`
}

// Emitter writes telemetry events as JSONL. It is safe for concurrent use.
// A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file  *os.File
	enc   *json.Encoder
	runID string
	now   func() time.Time
	mu    sync.Mutex
}

// NewEmitter creates an Emitter appending to the file at path, creating it
// if needed. runID tags every event so several runs can share one file.
func NewEmitter(path, runID string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	e := NewWriterEmitter(f, runID)
	e.file = f
	return e, nil
}

// NewWriterEmitter creates an Emitter writing to w. Close does not close w.
func NewWriterEmitter(w io.Writer, runID string) *Emitter {
	return &Emitter{
		enc:   json.NewEncoder(w),
		runID: runID,
		now:   time.Now,
	}
}

// Emit writes a single event. A zero Timestamp is filled with the current
// time and an empty RunID with the emitter's run ID.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if evt.Timestamp.IsZero() {
		evt.Timestamp = e.now()
	}
	if evt.RunID == "" {
		evt.RunID = e.runID
	}
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode %s event: %w", evt.Kind, err)
	}
	return nil
}

// Record is shorthand for Emit with the given kind and payload.
func (e *Emitter) Record(kind string, data any) error {
	return e.Emit(Event{Kind: kind, Data: data})
}

// Close closes the underlying file when the emitter owns one. Calling
// Close on a nil Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil || e.file == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}

// ReadEvents decodes every JSONL event in r. Blank lines are skipped.
// Payloads decode as generic JSON values.
func ReadEvents(r io.Reader) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var evt Event
		if err := json.Unmarshal(sc.Bytes(), &evt); err != nil {
			return events, fmt.Errorf("telemetry: line %d: %w", line, err)
		}
		events = append(events, evt)
	}
	if err := sc.Err(); err != nil {
		return events, fmt.Errorf("telemetry: read: %w", err)
	}
	return events, nil
}
