package roster

import (
	"errors"
	"time"
)

// Roles assigned to portal accounts. Signup always produces a student;
// promotion to admin is an admin-only edit.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Student is a portal user profile. The id matches the identity
// subject carried in the access token.
type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Semester  string    `json:"semester,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
