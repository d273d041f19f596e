package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	events, err := q.Consume(ctx)
	require.NoError(t, err)

	want := Event{Type: TypeAttendanceChanged, StudentID: "s1", TaskID: "t1"}
	require.NoError(t, q.Publish(ctx, want))

	select {
	case got := <-events:
		assert.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestInMemoryPublishRespectsCancel(t *testing.T) {
	q := NewInMemory(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.Publish(ctx, Event{Type: TypeTaskDeleted, TaskID: "t1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConsumeClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewInMemory(1)
	events, err := q.Consume(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, open := <-events:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
