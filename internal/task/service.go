package task

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Store is the persistence surface for tasks. *Repository implements it.
type Store interface {
	InsertTask(ctx context.Context, t Task) (Task, error)
	GetTask(ctx context.Context, id string) (Task, error)
	ListTasks(ctx context.Context) ([]Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// RecordPurger removes the attendance records referencing a task when
// cascade deletion is enabled.
type RecordPurger interface {
	DeleteRecordsForTask(ctx context.Context, taskID string) error
}

// Service validates and persists admin task operations.
type Service struct {
	store   Store
	records RecordPurger
	cascade bool
	log     *zap.Logger
}

// NewService creates a task service. cascade controls whether deleting
// a task also deletes its attendance records; with it off, orphaned
// records linger in storage and are excluded at aggregation time.
func NewService(store Store, records RecordPurger, cascade bool, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, records: records, cascade: cascade, log: log}
}

// CreateInput carries the fields of the admin task form.
type CreateInput struct {
	Title           string
	Description     string
	Link            string
	CourseName      string
	AttendanceStart *time.Time
	AttendanceEnd   *time.Time
}

// Create validates and persists a new task. Tasks are immutable after
// creation except for deletion.
func (s *Service) Create(ctx context.Context, in CreateInput) (Task, error) {
	t := Task{
		Title:           in.Title,
		Description:     in.Description,
		Link:            in.Link,
		CourseName:      in.CourseName,
		AttendanceStart: in.AttendanceStart,
		AttendanceEnd:   in.AttendanceEnd,
	}
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	created, err := s.store.InsertTask(ctx, t)
	if err != nil {
		return Task{}, err
	}
	s.log.Info("task created",
		zap.String("task_id", created.ID),
		zap.String("course", created.CourseName))
	return created, nil
}

// Get returns a task by id.
func (s *Service) Get(ctx context.Context, id string) (Task, error) {
	return s.store.GetTask(ctx, id)
}

// List returns all tasks, newest first.
func (s *Service) List(ctx context.Context) ([]Task, error) {
	return s.store.ListTasks(ctx)
}

// Delete removes a task and, when cascade is on, its attendance
// records. The task row goes first so a failed purge leaves orphans
// rather than a half-deleted task.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return err
	}
	if s.cascade {
		if err := s.records.DeleteRecordsForTask(ctx, id); err != nil {
			return fmt.Errorf("cascade delete for task %s: %w", id, err)
		}
	}
	s.log.Info("task deleted", zap.String("task_id", id), zap.Bool("cascade", s.cascade))
	return nil
}
