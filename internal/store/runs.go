package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/docmig/internal/canon"
	"github.com/roach88/docmig/internal/doc"
	"github.com/roach88/docmig/internal/ledger"
)

// Run records one ledger run against a stored document.
type Run struct {
	ID           int64
	DocumentID   string
	FromRevision int
	ToRevision   int
	Steps        int
	Fixes        int
	Flagged      int
	Report       []byte // canonical JSON of the ledger report
	Seq          int64
}

// NewRun summarises report for documentID.
func NewRun(documentID string, report *ledger.Report) (Run, error) {
	body, err := canon.MarshalValue(report)
	if err != nil {
		return Run{}, fmt.Errorf("encode report: %w", err)
	}
	return Run{
		DocumentID:   documentID,
		FromRevision: report.From,
		ToRevision:   report.To,
		Steps:        len(report.Steps),
		Fixes:        report.Fixes(),
		Flagged:      report.Flagged(),
		Report:       body,
	}, nil
}

// RecordRun appends run and returns its row ID.
// The referenced document must exist (foreign key constraint).
func (s *Store) RecordRun(ctx context.Context, run Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("record run: begin tx: %w", err)
	}
	defer tx.Rollback()

	id, err := insertRun(ctx, tx, run)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("record run: commit: %w", err)
	}
	return id, nil
}

// SaveMigration atomically stores the migrated document and the run that
// produced it.
func (s *Store) SaveMigration(ctx context.Context, id string, dom *doc.Domain, report *ledger.Report) (Run, error) {
	d, err := NewDocument(id, dom)
	if err != nil {
		return Run{}, fmt.Errorf("save migration: %w", err)
	}
	run, err := NewRun(id, report)
	if err != nil {
		return Run{}, fmt.Errorf("save migration: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("save migration: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := putDocument(ctx, tx, d); err != nil {
		return Run{}, err
	}
	if run.ID, err = insertRun(ctx, tx, run); err != nil {
		return Run{}, err
	}
	if err := tx.QueryRowContext(ctx, `SELECT seq FROM migration_runs WHERE id = ?`, run.ID).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("save migration: read seq: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("save migration: commit: %w", err)
	}
	return run, nil
}

func insertRun(ctx context.Context, tx *sql.Tx, run Run) (int64, error) {
	seq, err := nextSeq(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	result, err := tx.ExecContext(ctx, `
		INSERT INTO migration_runs
		(document_id, from_revision, to_revision, steps, fixes, flagged, report, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.DocumentID,
		run.FromRevision,
		run.ToRevision,
		run.Steps,
		run.Fixes,
		run.Flagged,
		string(run.Report),
		seq,
	)
	if err != nil {
		return 0, fmt.Errorf("record run for %q: %w", run.DocumentID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record run: last insert id: %w", err)
	}
	return id, nil
}

// Runs returns the runs recorded for documentID ordered by seq ASC.
// Returns an empty slice (not nil) if none exist.
func (s *Store) Runs(ctx context.Context, documentID string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, from_revision, to_revision, steps, fixes, flagged, report, seq
		FROM migration_runs
		WHERE document_id = ?
		ORDER BY seq ASC, id ASC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			r      Run
			report string
		)
		if err := rows.Scan(&r.ID, &r.DocumentID, &r.FromRevision, &r.ToRevision,
			&r.Steps, &r.Fixes, &r.Flagged, &report, &r.Seq); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Report = []byte(report)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
