package attendance

import (
	"time"

	"classtrack/internal/task"
)

// WindowState classifies a task's attendance window relative to a
// reference instant.
type WindowState int

const (
	// WindowUnbounded means the task carries no usable window bounds.
	// Unbounded tasks are not attendance-eligible: silently accepting
	// marks with no window was judged the riskier reading.
	WindowUnbounded WindowState = iota
	WindowUpcoming
	WindowActive
	WindowClosed
)

func (s WindowState) String() string {
	switch s {
	case WindowUpcoming:
		return "upcoming"
	case WindowActive:
		return "active"
	case WindowClosed:
		return "closed"
	default:
		return "unbounded"
	}
}

// WindowPolicy selects how a task's window bounds are derived.
type WindowPolicy int

const (
	// PolicyAdminWindow honors the admin-entered start and end bounds.
	PolicyAdminWindow WindowPolicy = iota
	// PolicyFixedDuration ignores the stored end and closes the window a
	// fixed duration after the start. Legacy behavior kept for
	// deployments that relied on the old 30-minute timer.
	PolicyFixedDuration
)

// DefaultFixedWindow matches the legacy fixed timer.
const DefaultFixedWindow = 30 * time.Minute

// Classification is the result of evaluating a task's window.
type Classification struct {
	State WindowState
	// Malformed is set when the stored end precedes the start. Such
	// tasks classify as Closed; the flag lets callers surface a
	// data-integrity warning on the read path.
	Malformed bool
}

// WindowEvaluator classifies tasks against a reference "now". The zero
// value uses the admin-entered bounds.
type WindowEvaluator struct {
	Policy        WindowPolicy
	FixedDuration time.Duration
}

// Classify is pure and must be re-invoked whenever "now" advances;
// results are never cached across calls.
func (e WindowEvaluator) Classify(t task.Task, now time.Time) Classification {
	start, end, ok := e.bounds(t)
	if !ok {
		return Classification{State: WindowUnbounded}
	}
	if start != nil && end != nil && end.Before(*start) {
		return Classification{State: WindowClosed, Malformed: true}
	}
	if start != nil && now.Before(*start) {
		return Classification{State: WindowUpcoming}
	}
	if end != nil && now.After(*end) {
		return Classification{State: WindowClosed}
	}
	return Classification{State: WindowActive}
}

// bounds resolves the effective window per policy. A missing bound on
// one side leaves that side open, mirroring the portal's mark button
// behavior; only a task with no bounds at all is unbounded.
func (e WindowEvaluator) bounds(t task.Task) (start, end *time.Time, ok bool) {
	switch e.Policy {
	case PolicyFixedDuration:
		if t.AttendanceStart == nil {
			return nil, nil, false
		}
		d := e.FixedDuration
		if d <= 0 {
			d = DefaultFixedWindow
		}
		closeAt := t.AttendanceStart.Add(d)
		return t.AttendanceStart, &closeAt, true
	default:
		if t.AttendanceStart == nil && t.AttendanceEnd == nil {
			return nil, nil, false
		}
		return t.AttendanceStart, t.AttendanceEnd, true
	}
}
