package attendance

import (
	"time"

	"classtrack/internal/task"
)

// MarkOutcome is the decision produced by TryMark.
type MarkOutcome int

const (
	MarkCreated MarkOutcome = iota
	MarkAlreadyMarked
	MarkWindowClosed
	MarkWindowNotStarted
)

func (o MarkOutcome) String() string {
	switch o {
	case MarkCreated:
		return "created"
	case MarkAlreadyMarked:
		return "already_marked"
	case MarkWindowNotStarted:
		return "window_not_started"
	default:
		return "window_closed"
	}
}

// TryMark decides whether a new presence record may be created for the
// pair. It performs no I/O: on MarkCreated the caller persists a record
// with status present and marked_at = now. The index must come from a
// read that happened after the caller's most recent write for the same
// pair, and the decision only narrows the race with concurrent callers;
// true exclusivity is the storage layer's uniqueness constraint.
func TryMark(t task.Task, studentID string, now time.Time, ix *Index, eval WindowEvaluator) MarkOutcome {
	switch eval.Classify(t, now).State {
	case WindowUpcoming:
		return MarkWindowNotStarted
	case WindowActive:
	default:
		// Closed and Unbounded both refuse the mark.
		return MarkWindowClosed
	}
	if _, ok := ix.Lookup(studentID, t.ID); ok {
		return MarkAlreadyMarked
	}
	return MarkCreated
}
