// Package store persists grade history. Breakdowns are immutable, so the
// store is append-only: re-grading a report inserts a new record instead of
// updating the old one, keeping the full audit trail.
package store

// DefaultDBPath is the default relative path for the SQLite DB.
// Resolve against cwd; Open() creates the parent dir.
const DefaultDBPath = ".sdlc-inject/grades.db"

// Record is one archived grading run.
type Record struct {
	ID            int64
	RunID         string // batch run id, groups records graded together
	AgentID       string
	PatternID     string
	PolicyVersion string
	FinalScore    float64
	OutcomeScore  float64
	Multiplier    float64
	CapApplied    bool
	EmptyReport   bool
	Document      []byte // rendered JSON score document
	CreatedAt     string // RFC3339 UTC
}

// Store is the persistence facade for grade history. CLI and harness use
// only this interface; implementation is SQLite or in-memory.
type Store interface {
	// SaveGrade appends a record and returns its id.
	SaveGrade(rec *Record) (int64, error)
	// GetGrade returns the record by id, or nil if not found.
	GetGrade(id int64) (*Record, error)
	// ListGradesByRun returns all records for a batch run, oldest first.
	ListGradesByRun(runID string) ([]*Record, error)
	// ListGradesByPattern returns all records for a pattern, oldest first.
	ListGradesByPattern(patternID string) ([]*Record, error)
	// ListRecent returns the latest n records, newest first.
	ListRecent(n int) ([]*Record, error)
	Close() error
}
