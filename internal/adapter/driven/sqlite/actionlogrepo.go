package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
	"github.com/ericfisherdev/taskdeck/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ActionLog = (*ActionLogRepo)(nil)

// ActionLogRepo is the SQLite implementation of the ActionLog port.
// The table is append-only; rows are never updated or deleted, and the
// autoincrement id preserves chronological append order.
type ActionLogRepo struct {
	db *DB
}

// NewActionLogRepo creates a new ActionLogRepo.
func NewActionLogRepo(db *DB) *ActionLogRepo {
	return &ActionLogRepo{db: db}
}

// Append writes one record to the end of the log.
func (r *ActionLogRepo) Append(ctx context.Context, rec model.LogRecord) error {
	const query = `INSERT INTO action_log (timestamp, action, details) VALUES (?, ?, ?)`
	_, err := r.db.Writer.ExecContext(ctx, query, rec.Timestamp, rec.Action, rec.Details)
	if err != nil {
		return fmt.Errorf("append log record: %w", err)
	}
	return nil
}

// ReadAll returns every record in insertion order.
func (r *ActionLogRepo) ReadAll(ctx context.Context) ([]model.LogRecord, error) {
	const query = `SELECT timestamp, action, details FROM action_log ORDER BY id`
	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer rows.Close()

	var records []model.LogRecord
	for rows.Next() {
		var rec model.LogRecord
		if err := rows.Scan(&rec.Timestamp, &rec.Action, &rec.Details); err != nil {
			return nil, fmt.Errorf("scan log record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log records: %w", err)
	}

	return records, nil
}
