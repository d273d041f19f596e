package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	tasks  []Task
	nextID int
}

func (f *fakeStore) InsertTask(_ context.Context, t Task) (Task, error) {
	f.nextID++
	if t.ID == "" {
		t.ID = string(rune('a' + f.nextID - 1))
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeStore) GetTask(_ context.Context, id string) (Task, error) {
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return Task{}, ErrTaskNotFound
}

func (f *fakeStore) ListTasks(_ context.Context) ([]Task, error) {
	return f.tasks, nil
}

func (f *fakeStore) DeleteTask(_ context.Context, id string) error {
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrTaskNotFound
}

type fakePurger struct {
	purged []string
}

func (f *fakePurger) DeleteRecordsForTask(_ context.Context, taskID string) error {
	f.purged = append(f.purged, taskID)
	return nil
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(&fakeStore{}, &fakePurger{}, true, nil)
	ctx := context.Background()

	t.Run("title required", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateInput{CourseName: "Data Science"})
		assert.ErrorIs(t, err, ErrTitleRequired)
	})

	t.Run("unknown course rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateInput{Title: "Intro", CourseName: "Underwater Basket Weaving"})
		assert.ErrorIs(t, err, ErrUnknownCourse)
	})

	t.Run("end before start rejected", func(t *testing.T) {
		start := time.Now()
		end := start.Add(-time.Hour)
		_, err := svc.Create(ctx, CreateInput{Title: "Intro", AttendanceStart: &start, AttendanceEnd: &end})
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})

	t.Run("valid task persists", func(t *testing.T) {
		start := time.Now()
		end := start.Add(30 * time.Minute)
		created, err := svc.Create(ctx, CreateInput{
			Title:           "Week 3 session",
			CourseName:      "Web Development",
			AttendanceStart: &start,
			AttendanceEnd:   &end,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())
	})

	t.Run("window optional", func(t *testing.T) {
		created, err := svc.Create(ctx, CreateInput{Title: "Reading assignment"})
		require.NoError(t, err)
		assert.Nil(t, created.AttendanceStart)
		assert.Nil(t, created.AttendanceEnd)
	})
}

func TestDeleteCascade(t *testing.T) {
	ctx := context.Background()

	t.Run("cascade purges records", func(t *testing.T) {
		store := &fakeStore{}
		purger := &fakePurger{}
		svc := NewService(store, purger, true, nil)

		created, err := svc.Create(ctx, CreateInput{Title: "Session"})
		require.NoError(t, err)
		require.NoError(t, svc.Delete(ctx, created.ID))
		assert.Equal(t, []string{created.ID}, purger.purged)
	})

	t.Run("no cascade leaves records", func(t *testing.T) {
		store := &fakeStore{}
		purger := &fakePurger{}
		svc := NewService(store, purger, false, nil)

		created, err := svc.Create(ctx, CreateInput{Title: "Session"})
		require.NoError(t, err)
		require.NoError(t, svc.Delete(ctx, created.ID))
		assert.Empty(t, purger.purged)
	})

	t.Run("unknown task", func(t *testing.T) {
		svc := NewService(&fakeStore{}, &fakePurger{}, true, nil)
		assert.ErrorIs(t, svc.Delete(ctx, "missing"), ErrTaskNotFound)
	})
}
