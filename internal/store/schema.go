package store

// schemaVersionV1 is the current grade-history schema.
const schemaVersionV1 = 1

// schemaV1 holds one append-only grades table. The rendered score document
// is stored whole so a historical grade can be re-read without re-running
// the pipeline under a policy that may have changed since.
var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS grades (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id         TEXT NOT NULL,
	agent_id       TEXT NOT NULL,
	pattern_id     TEXT NOT NULL,
	policy_version TEXT NOT NULL,
	final_score    REAL NOT NULL,
	outcome_score  REAL NOT NULL,
	multiplier     REAL NOT NULL,
	cap_applied    INTEGER NOT NULL DEFAULT 0,
	empty_report   INTEGER NOT NULL DEFAULT 0,
	document       BLOB NOT NULL,
	created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_grades_run ON grades(run_id);
CREATE INDEX IF NOT EXISTS idx_grades_pattern ON grades(pattern_id);
`
