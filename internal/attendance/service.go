package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"classtrack/internal/roster"
	"classtrack/internal/task"
)

// RecordStore is the persistence surface the service needs for
// attendance records. *Repository implements it.
type RecordStore interface {
	InsertRecord(ctx context.Context, rec Record) (Record, error)
	ListRecords(ctx context.Context, f RecordFilter) ([]Record, error)
	GetRecord(ctx context.Context, id string) (Record, error)
	UpdateRecordStatus(ctx context.Context, id string, status Status) error
	DeleteRecord(ctx context.Context, id string) error
}

// TaskStore supplies the tasks in scope for marking and aggregation.
type TaskStore interface {
	GetTask(ctx context.Context, id string) (task.Task, error)
	ListTasks(ctx context.Context) ([]task.Task, error)
}

// StudentStore supplies the roster for aggregation.
type StudentStore interface {
	GetStudent(ctx context.Context, id string) (roster.Student, error)
	ListStudents(ctx context.Context) ([]roster.Student, error)
}

// ErrInvalidStatus rejects correction patches with unknown statuses.
var ErrInvalidStatus = errors.New("invalid attendance status")

// Service coordinates window checks, duplicate resolution and record
// persistence. Each call computes over a fresh snapshot; the service
// keeps no mutable state between calls.
type Service struct {
	records  RecordStore
	tasks    TaskStore
	students StudentStore
	eval     WindowEvaluator
	log      *zap.Logger
}

// NewService creates a service over the given stores.
func NewService(records RecordStore, tasks TaskStore, students StudentStore, eval WindowEvaluator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{records: records, tasks: tasks, students: students, eval: eval, log: log}
}

// Classify evaluates a task's window with the configured policy.
func (s *Service) Classify(t task.Task, now time.Time) Classification {
	return s.eval.Classify(t, now)
}

// MarkResult carries the decision and, on MarkCreated, the persisted
// record.
type MarkResult struct {
	Outcome MarkOutcome
	Record  Record
}

// Mark runs the full tryMark sequence for one (student, task) pair:
// re-read the pair's records, rebuild the index, decide, persist on a
// created decision. Re-reading before deciding keeps the decision
// ordered after the caller's own previous write for the pair. A
// storage-side uniqueness conflict is folded into MarkAlreadyMarked so
// racing clients see the same answer as a stale read would.
func (s *Service) Mark(ctx context.Context, studentID, taskID string, now time.Time) (MarkResult, error) {
	t, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return MarkResult{}, fmt.Errorf("mark attendance: load task %s: %w", taskID, err)
	}
	recs, err := s.records.ListRecords(ctx, RecordFilter{StudentID: studentID, TaskID: taskID})
	if err != nil {
		return MarkResult{}, fmt.Errorf("mark attendance: list records for %s/%s: %w", studentID, taskID, err)
	}
	ix := BuildIndex(recs)

	outcome := TryMark(t, studentID, now, ix, s.eval)
	res := MarkResult{Outcome: outcome}
	if outcome == MarkCreated {
		rec, err := s.records.InsertRecord(ctx, Record{
			StudentID: studentID,
			TaskID:    taskID,
			Status:    StatusPresent,
			MarkedAt:  now,
		})
		switch {
		case errors.Is(err, ErrDuplicatePresent):
			res.Outcome = MarkAlreadyMarked
		case err != nil:
			return MarkResult{}, err
		default:
			res.Record = rec
		}
	}

	markOutcomes.WithLabelValues(res.Outcome.String()).Inc()
	s.log.Info("attendance mark decided",
		zap.String("student_id", studentID),
		zap.String("task_id", taskID),
		zap.String("outcome", res.Outcome.String()))
	return res, nil
}

// History returns a student's reconciled attendance view: one record
// per task after duplicate resolution, newest first.
func (s *Service) History(ctx context.Context, studentID string) ([]Record, error) {
	recs, err := s.records.ListRecords(ctx, RecordFilter{StudentID: studentID})
	if err != nil {
		return nil, fmt.Errorf("attendance history for %s: %w", studentID, err)
	}
	ix := BuildIndex(recs)
	resolved := make([]Record, 0, ix.Len())
	seen := make(map[string]bool, ix.Len())
	for _, rec := range recs { // preserve newest-first storage order
		if seen[rec.TaskID] {
			continue
		}
		if authoritative, ok := ix.Lookup(studentID, rec.TaskID); ok {
			resolved = append(resolved, authoritative)
			seen[rec.TaskID] = true
		}
	}
	return resolved, nil
}

// StudentSummary recomputes one student's counts from live tasks.
func (s *Service) StudentSummary(ctx context.Context, studentID string) (Summary, error) {
	st, err := s.students.GetStudent(ctx, studentID)
	if err != nil {
		return Summary{}, fmt.Errorf("summary: load student %s: %w", studentID, err)
	}
	tasks, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("summary: list tasks: %w", err)
	}
	recs, err := s.records.ListRecords(ctx, RecordFilter{StudentID: studentID})
	if err != nil {
		return Summary{}, fmt.Errorf("summary: list records for %s: %w", studentID, err)
	}
	sums := Aggregate([]roster.Student{st}, tasks, BuildIndex(recs))
	return sums[studentID], nil
}

// Summaries recomputes counts for the whole roster, sorted for the
// admin review table.
func (s *Service) Summaries(ctx context.Context) ([]Summary, error) {
	students, err := s.students.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("summaries: list students: %w", err)
	}
	tasks, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("summaries: list tasks: %w", err)
	}
	recs, err := s.records.ListRecords(ctx, RecordFilter{})
	if err != nil {
		return nil, fmt.Errorf("summaries: list records: %w", err)
	}
	ObserveSummaryRebuild()
	return SummaryList(Aggregate(students, tasks, BuildIndex(recs))), nil
}

// SetStatus records or corrects a student's status for a task without
// window checks. The admin review table both fills in missing records
// and toggles existing ones; either way the pair ends up with exactly
// one authoritative record carrying the given status.
func (s *Service) SetStatus(ctx context.Context, studentID, taskID string, status Status, now time.Time) (Record, error) {
	if !status.Valid() {
		return Record{}, ErrInvalidStatus
	}
	if _, err := s.tasks.GetTask(ctx, taskID); err != nil {
		return Record{}, fmt.Errorf("set status: load task %s: %w", taskID, err)
	}
	recs, err := s.records.ListRecords(ctx, RecordFilter{StudentID: studentID, TaskID: taskID})
	if err != nil {
		return Record{}, fmt.Errorf("set status: list records for %s/%s: %w", studentID, taskID, err)
	}
	if existing, ok := BuildIndex(recs).Lookup(studentID, taskID); ok {
		if existing.Status == status {
			return existing, nil
		}
		if err := s.records.UpdateRecordStatus(ctx, existing.ID, status); err != nil {
			return Record{}, err
		}
		existing.Status = status
		return existing, nil
	}
	return s.records.InsertRecord(ctx, Record{
		StudentID: studentID,
		TaskID:    taskID,
		Status:    status,
		MarkedAt:  now,
	})
}

// Correct overwrites a record's status. This is the admin correction
// path and deliberately bypasses the window guard: corrections are not
// marking.
func (s *Service) Correct(ctx context.Context, recordID string, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if err := s.records.UpdateRecordStatus(ctx, recordID, status); err != nil {
		return err
	}
	s.log.Info("attendance record corrected",
		zap.String("record_id", recordID),
		zap.String("status", string(status)))
	return nil
}

// Remove deletes a record by admin action.
func (s *Service) Remove(ctx context.Context, recordID string) error {
	return s.records.DeleteRecord(ctx, recordID)
}

// ListRecords exposes filtered raw records for the admin review view.
func (s *Service) ListRecords(ctx context.Context, f RecordFilter) ([]Record, error) {
	return s.records.ListRecords(ctx, f)
}
