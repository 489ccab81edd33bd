package evidence

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rohilkanwar-aai/sdlc-inject/internal/process"
)

// Recorder accumulates the tool-call transcript for one agent session.
// Safe for concurrent use; calls are kept in arrival order.
type Recorder struct {
	mu    sync.Mutex
	calls []process.ToolCall
	now   func() time.Time
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Record appends one call with the current timestamp.
func (r *Recorder) Record(tool string, params map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, process.ToolCall{
		Timestamp: r.now().UTC(),
		Tool:      tool,
		Params:    params,
	})
}

// Len returns the number of recorded calls.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Transcript returns a copy of the recorded calls.
func (r *Recorder) Transcript() *process.Transcript {
	r.mu.Lock()
	defer r.mu.Unlock()
	calls := make([]process.ToolCall, len(r.calls))
	copy(calls, r.calls)
	return &process.Transcript{Calls: calls}
}

// JSON renders the transcript in the JSON-array format ParseTranscript
// accepts, ready to hand to the grader or archive with the run.
func (r *Recorder) JSON() ([]byte, error) {
	tr := r.Transcript()
	return json.MarshalIndent(tr.Calls, "", "  ")
}
