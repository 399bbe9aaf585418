package predstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/pdwriter/internal/prediction"
)

// Run is one stored batch of predictions.
type Run struct {
	RunID       string          `json:"run_id"`
	Task        prediction.Task `json:"task"`
	CreatedAt   int64           `json:"created_at_ns"`
	Notes       string          `json:"notes,omitempty"`
	ObjectCount int             `json:"object_count"`
}

// CreateRun inserts a new empty run and returns it.
func (s *Store) CreateRun(ctx context.Context, task prediction.Task, notes string) (*Run, error) {
	return s.CreateRunWithObjects(ctx, task, notes, nil)
}

// CreateRunWithObjects inserts a new run holding objs in one transaction.
// On error nothing is stored.
func (s *Store) CreateRunWithObjects(ctx context.Context, task prediction.Task, notes string, objs *prediction.Objects) (*Run, error) {
	run := &Run{
		RunID:       uuid.New().String(),
		Task:        task,
		CreatedAt:   s.clock.Now().UnixNano(),
		Notes:       notes,
		ObjectCount: objs.Len(),
	}
	err := s.retry(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO prediction_runs (run_id, task, created_at_ns, notes) VALUES (?, ?, ?, ?)`,
			run.RunID, string(run.Task), run.CreatedAt, run.Notes,
		); err != nil {
			return err
		}
		if objs.Len() > 0 {
			if err := insertObjectsTx(ctx, tx, run.RunID, objs); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// GetRun returns a run with its object count.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT r.run_id, r.task, r.created_at_ns, r.notes,
		       (SELECT COUNT(*) FROM prediction_objects o WHERE o.run_id = r.run_id)
		  FROM prediction_runs r
		 WHERE r.run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	return run, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.run_id, r.task, r.created_at_ns, r.notes,
		       (SELECT COUNT(*) FROM prediction_objects o WHERE o.run_id = r.run_id)
		  FROM prediction_runs r
		 ORDER BY r.created_at_ns DESC, r.run_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(r rowScanner) (*Run, error) {
	var run Run
	var task string
	if err := r.Scan(&run.RunID, &task, &run.CreatedAt, &run.Notes, &run.ObjectCount); err != nil {
		return nil, err
	}
	run.Task = prediction.Task(task)
	return &run, nil
}

// DeleteRun removes a run and all of its objects.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	return s.retry(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, `DELETE FROM prediction_objects WHERE run_id = ?`, runID); err != nil {
			return fmt.Errorf("failed to delete objects for run %s: %w", runID, err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM prediction_runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("failed to delete run %s: %w", runID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return tx.Commit()
	})
}
