package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .sdlc-inject) if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableCount == 0 {
		if _, err := s.db.Exec(schemaV1); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersionV1); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}

	var v int
	err = s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		v = schemaVersionV1
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", v); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
	}
	if v != schemaVersionV1 {
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

// Close closes the database connection.
func (s *SqlStore) Close() error {
	return s.db.Close()
}

// SaveGrade appends a record. CreatedAt is assigned here if unset.
func (s *SqlStore) SaveGrade(rec *Record) (int64, error) {
	if rec == nil {
		return 0, errors.New("record is nil")
	}
	createdAt := rec.CreatedAt
	if createdAt == "" {
		createdAt = nowUTC()
	}
	res, err := s.db.Exec(
		`INSERT INTO grades(run_id, agent_id, pattern_id, policy_version,
		                    final_score, outcome_score, multiplier,
		                    cap_applied, empty_report, document, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.AgentID, rec.PatternID, rec.PolicyVersion,
		rec.FinalScore, rec.OutcomeScore, rec.Multiplier,
		boolInt(rec.CapApplied), boolInt(rec.EmptyReport), rec.Document, createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert grade: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

const recordCols = `id, run_id, agent_id, pattern_id, policy_version,
       final_score, outcome_score, multiplier, cap_applied, empty_report,
       document, created_at`

func scanRecord(row interface{ Scan(...any) error }) (*Record, error) {
	var r Record
	var capApplied, emptyReport int
	err := row.Scan(&r.ID, &r.RunID, &r.AgentID, &r.PatternID, &r.PolicyVersion,
		&r.FinalScore, &r.OutcomeScore, &r.Multiplier, &capApplied, &emptyReport,
		&r.Document, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.CapApplied = capApplied == 1
	r.EmptyReport = emptyReport == 1
	return &r, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// GetGrade returns the record by id, or nil if not found.
func (s *SqlStore) GetGrade(id int64) (*Record, error) {
	rec, err := scanRecord(s.db.QueryRow(
		"SELECT "+recordCols+" FROM grades WHERE id = ?", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get grade: %w", err)
	}
	return rec, nil
}

func (s *SqlStore) listGrades(query string, arg any) ([]*Record, error) {
	rows, err := s.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	defer rows.Close()
	var list []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grade: %w", err)
		}
		list = append(list, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return list, nil
}

// ListGradesByRun returns all records for a batch run, oldest first.
func (s *SqlStore) ListGradesByRun(runID string) ([]*Record, error) {
	return s.listGrades(
		"SELECT "+recordCols+" FROM grades WHERE run_id = ? ORDER BY id", runID,
	)
}

// ListGradesByPattern returns all records for a pattern, oldest first.
func (s *SqlStore) ListGradesByPattern(patternID string) ([]*Record, error) {
	return s.listGrades(
		"SELECT "+recordCols+" FROM grades WHERE pattern_id = ? ORDER BY id", patternID,
	)
}

// ListRecent returns the latest n records, newest first.
func (s *SqlStore) ListRecent(n int) ([]*Record, error) {
	return s.listGrades(
		"SELECT "+recordCols+" FROM grades ORDER BY id DESC LIMIT ?", n,
	)
}
