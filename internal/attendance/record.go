package attendance

import "time"

// Status is the presence state asserted by a record.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// Record asserts a student's presence status for a task.
type Record struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	TaskID    string    `json:"task_id"`
	Status    Status    `json:"status"`
	MarkedAt  time.Time `json:"marked_at"`
	CreatedAt time.Time `json:"created_at"`
}

// effectiveTime is the instant used for duplicate resolution. Records
// written by older clients carry only created_at.
func (r Record) effectiveTime() time.Time {
	if !r.MarkedAt.IsZero() {
		return r.MarkedAt
	}
	return r.CreatedAt
}
