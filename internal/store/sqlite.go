package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ai-navigator/ingest-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS batch_runs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL DEFAULT 'running',
	lead_count  INTEGER NOT NULL DEFAULT 0,
	processed   INTEGER NOT NULL DEFAULT 0,
	created     INTEGER NOT NULL DEFAULT 0,
	skipped     INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0,
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME,
	duration_ms INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS lead_outcomes (
	id            TEXT PRIMARY KEY,
	run_id        TEXT NOT NULL REFERENCES batch_runs(id),
	lead          TEXT NOT NULL,
	status        TEXT NOT NULL,
	canonical_url TEXT,
	entity_id     TEXT,
	error         TEXT,
	duration_ms   INTEGER NOT NULL DEFAULT 0,
	recorded_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_batch_runs_started_at ON batch_runs(started_at);
CREATE INDEX IF NOT EXISTS idx_lead_outcomes_run_id ON lead_outcomes(run_id);
CREATE INDEX IF NOT EXISTS idx_lead_outcomes_canonical_url ON lead_outcomes(canonical_url);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) StartRun(ctx context.Context, jobID string, leadCount int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO batch_runs (id, status, lead_count, started_at) VALUES (?, ?, ?, ?)`,
		jobID, string(RunStatusRunning), leadCount, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert run %s", jobID)
}

func (s *SQLiteStore) RecordOutcome(ctx context.Context, jobID string, outcome model.LeadOutcome) error {
	leadJSON, err := json.Marshal(outcome.Lead)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal lead")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lead_outcomes (id, run_id, lead, status, canonical_url, entity_id, error, duration_ms, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), jobID, string(leadJSON), string(outcome.Status),
		outcome.CanonicalURL, outcome.EntityID, outcome.Error, outcome.Duration,
		time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert outcome for run %s", jobID)
}

func (s *SQLiteStore) FinishRun(ctx context.Context, report *model.BatchReport) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE batch_runs
		 SET status = ?, processed = ?, created = ?, skipped = ?, failed = ?,
		     finished_at = ?, duration_ms = ?
		 WHERE id = ?`,
		string(RunStatusComplete), report.Processed, report.Created,
		report.Skipped, report.Failed, time.Now().UTC(), report.Duration,
		report.JobID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", report.JobID)
	}
	return checkRowsAffected(res, "run", report.JobID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, jobID string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, lead_count, processed, created, skipped, failed,
		        started_at, finished_at, duration_ms
		 FROM batch_runs WHERE id = ?`,
		jobID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, lead_count, processed, created, skipped, failed,
		        started_at, finished_at, duration_ms
		 FROM batch_runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) ListOutcomes(ctx context.Context, jobID string) ([]model.LeadOutcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lead, status, canonical_url, entity_id, error, duration_ms
		 FROM lead_outcomes WHERE run_id = ? ORDER BY recorded_at`,
		jobID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list outcomes for run %s", jobID)
	}
	defer rows.Close()

	var outcomes []model.LeadOutcome
	for rows.Next() {
		var o model.LeadOutcome
		var leadJSON string
		var canonical, entityID, errText sql.NullString
		if err := rows.Scan(&leadJSON, &o.Status, &canonical, &entityID, &errText, &o.Duration); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan outcome")
		}
		if err := json.Unmarshal([]byte(leadJSON), &o.Lead); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal lead")
		}
		o.CanonicalURL = canonical.String
		o.EntityID = entityID.String
		o.Error = errText.String
		outcomes = append(outcomes, o)
	}
	return outcomes, eris.Wrap(rows.Err(), "sqlite: list outcomes iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*RunRecord, error) {
	var r RunRecord
	var finished sql.NullTime
	err := row.Scan(&r.ID, &r.Status, &r.LeadCount, &r.Processed, &r.Created,
		&r.Skipped, &r.Failed, &r.StartedAt, &finished, &r.DurationMS)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	return &r, nil
}
