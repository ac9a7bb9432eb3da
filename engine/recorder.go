package engine

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ftahirops/xnet/model"
)

// recordHeader is the first line of a recorded session file, stamping the
// session with a unique ID so two recordings are never mistaken for one
// another when compared later.
type recordHeader struct {
	SessionID string    `json:"session_id"`
	StartedAt time.Time `json:"started_at"`
}

// recordFrame is one tick's snapshot as written to disk, one JSON object
// per line after the header line. NewSnippets carries only what the
// sniffer captured since the previous frame, not the whole ring, so a
// long recording doesn't re-dump the same snippets tick after tick.
type recordFrame struct {
	Snapshot    model.Snapshot        `json:"snapshot"`
	NewSnippets []model.PacketSnippet `json:"new_snippets,omitempty"`
}

// Recorder wraps an engine and appends a JSON-lines dump of every tick to a
// file. This is a diagnostic convenience, not a persisted store the running
// program ever reads back from: each recording stands alone.
type Recorder struct {
	Engine *Engine

	mu  sync.Mutex
	w   *bufio.Writer
	enc *json.Encoder
}

// NewRecorder wraps eng and writes a session header line to w immediately,
// stamped with a fresh session ID.
func NewRecorder(eng *Engine, w io.Writer) *Recorder {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.Encode(recordHeader{
		SessionID: uuid.NewString(),
		StartedAt: time.Now(),
	})
	return &Recorder{Engine: eng, w: bw, enc: enc}
}

// Close flushes any buffered output.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.w.Flush()
}

// RecordTick ticks the wrapped engine and appends the resulting snapshot as
// one JSON line. A tick error is still recorded (the snapshot carries its
// errors in snap.Errors) and returned to the caller.
func (r *Recorder) RecordTick() (*model.Snapshot, error) {
	snap, err := r.Engine.Tick()
	if snap != nil {
		r.mu.Lock()
		r.enc.Encode(recordFrame{
			Snapshot:    *snap,
			NewSnippets: r.Engine.Sniffer.DrainNew(),
		})
		r.w.Flush()
		r.mu.Unlock()
	}
	return snap, err
}

