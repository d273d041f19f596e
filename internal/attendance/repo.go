package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicatePresent is returned when an insert hits the partial
// unique index guarding one present record per (student, task) pair.
var ErrDuplicatePresent = errors.New("present record already exists for pair")

// ErrRecordNotFound is returned for lookups and patches of unknown ids.
var ErrRecordNotFound = errors.New("attendance record not found")

// Repository persists attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// RecordFilter narrows list reads. Empty fields match everything.
type RecordFilter struct {
	StudentID string
	TaskID    string
}

// InsertRecord writes a new record. The insert is conditional on the
// one-present-per-pair unique index so two near-simultaneous marks
// cannot both commit; the loser gets ErrDuplicatePresent.
func (r *Repository) InsertRecord(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.MarkedAt.IsZero() {
		rec.MarkedAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = StatusPresent
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (id, student_id, task_id, status, marked_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (student_id, task_id) WHERE status = 'present' DO NOTHING
		RETURNING created_at
	`, rec.ID, rec.StudentID, rec.TaskID, rec.Status, rec.MarkedAt)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrDuplicatePresent
		}
		return Record{}, fmt.Errorf("insert attendance record: %w", err)
	}
	return rec, nil
}

// GetRecord returns a single record by id.
func (r *Repository) GetRecord(ctx context.Context, id string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, student_id, task_id, status, marked_at, created_at
		FROM attendance_records WHERE id = $1
	`, id)
	var rec Record
	if err := row.Scan(&rec.ID, &rec.StudentID, &rec.TaskID, &rec.Status, &rec.MarkedAt, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, fmt.Errorf("get attendance record %s: %w", id, err)
	}
	return rec, nil
}

// ListRecords returns records matching the filter, newest first.
func (r *Repository) ListRecords(ctx context.Context, f RecordFilter) ([]Record, error) {
	query := `SELECT id, student_id, task_id, status, marked_at, created_at FROM attendance_records`
	args := []any{}
	clauses := []string{}
	if f.StudentID != "" {
		args = append(args, f.StudentID)
		clauses = append(clauses, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if f.TaskID != "" {
		args = append(args, f.TaskID)
		clauses = append(clauses, fmt.Sprintf("task_id = $%d", len(args)))
	}
	for i, c := range clauses {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY marked_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.TaskID, &rec.Status, &rec.MarkedAt, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UpdateRecordStatus overwrites a record's status. Admin correction
// path; the caller has already authorized it.
func (r *Repository) UpdateRecordStatus(ctx context.Context, id string, status Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE attendance_records SET status = $2 WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("update attendance record %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// DeleteRecord removes a record.
func (r *Repository) DeleteRecord(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete attendance record %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// DeleteRecordsForTask purges all records referencing a task. Used by
// the cascade path of task deletion.
func (r *Repository) DeleteRecordsForTask(ctx context.Context, taskID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attendance_records WHERE task_id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("delete attendance records for task %s: %w", taskID, err)
	}
	return nil
}
