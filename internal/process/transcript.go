// Package process scores how an agent worked, separately from what it
// concluded. A tool-call transcript is distilled into a bounded multiplier:
// process quality discounts an outcome score but can never zero it out, and
// an unparseable transcript degrades to a neutral adjustment instead of
// failing the grading run.
package process

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ToolCall is one record from an agent's transcript.
type ToolCall struct {
	Timestamp time.Time      `json:"timestamp"`
	Tool      string         `json:"tool_name"`
	Params    map[string]any `json:"input_params"`
}

// Transcript is an ordered tool-call log for a single agent run.
type Transcript struct {
	Calls []ToolCall `json:"calls"`
}

// TranscriptParseError reports a malformed transcript. Callers treat it as
// degraded input: grading proceeds with a neutral adjustment.
type TranscriptParseError struct {
	Line int
	Err  error
}

func (e *TranscriptParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("transcript: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("transcript: %v", e.Err)
}

func (e *TranscriptParseError) Unwrap() error { return e.Err }

// ParseTranscript accepts either a JSON array of calls or JSONL with one
// call per line. Calls must already be in timestamp order; out-of-order
// records are a parse error because every downstream metric assumes it.
func ParseTranscript(data []byte) (*Transcript, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &TranscriptParseError{Err: fmt.Errorf("empty input")}
	}

	var calls []ToolCall
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &calls); err != nil {
			return nil, &TranscriptParseError{Err: err}
		}
	} else {
		sc := bufio.NewScanner(bytes.NewReader(trimmed))
		sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		line := 0
		for sc.Scan() {
			line++
			raw := bytes.TrimSpace(sc.Bytes())
			if len(raw) == 0 {
				continue
			}
			var c ToolCall
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, &TranscriptParseError{Line: line, Err: err}
			}
			calls = append(calls, c)
		}
		if err := sc.Err(); err != nil {
			return nil, &TranscriptParseError{Err: err}
		}
	}

	for i, c := range calls {
		if c.Tool == "" {
			return nil, &TranscriptParseError{Err: fmt.Errorf("call %d: missing tool_name", i)}
		}
		if c.Timestamp.IsZero() {
			return nil, &TranscriptParseError{Err: fmt.Errorf("call %d: missing timestamp", i)}
		}
		if i > 0 && c.Timestamp.Before(calls[i-1].Timestamp) {
			return nil, &TranscriptParseError{Err: fmt.Errorf("call %d: timestamp precedes call %d", i, i-1)}
		}
	}
	return &Transcript{Calls: calls}, nil
}
