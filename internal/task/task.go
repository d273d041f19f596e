package task

import (
	"errors"
	"time"
)

// Task is an administrator-defined class session with an optional
// attendance-eligibility window.
type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Link            string     `json:"link,omitempty"`
	CourseName      string     `json:"course_name,omitempty"`
	AttendanceStart *time.Time `json:"attendance_start,omitempty"`
	AttendanceEnd   *time.Time `json:"attendance_end,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Courses is the fixed list offered in the admin task form.
var Courses = []string{
	"Web Development",
	"Mobile App Development",
	"Data Science",
	"Machine Learning",
	"Graphic Design",
	"Digital Marketing",
	"UI/UX Design",
	"Other",
}

// ValidCourse reports whether name is one of the offered courses.
func ValidCourse(name string) bool {
	for _, c := range Courses {
		if c == name {
			return true
		}
	}
	return false
}

var (
	ErrTitleRequired = errors.New("task title required")
	ErrUnknownCourse = errors.New("unknown course")
	ErrInvalidWindow = errors.New("attendance window ends before it starts")
	ErrTaskNotFound  = errors.New("task not found")
)

// Validate checks the fields an admin submits on creation.
func (t Task) Validate() error {
	if t.Title == "" {
		return ErrTitleRequired
	}
	if t.CourseName != "" && !ValidCourse(t.CourseName) {
		return ErrUnknownCourse
	}
	if t.AttendanceStart != nil && t.AttendanceEnd != nil && t.AttendanceEnd.Before(*t.AttendanceStart) {
		return ErrInvalidWindow
	}
	return nil
}
