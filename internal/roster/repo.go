package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Repository persists student profiles in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertStudent writes a new profile with its password hash. The email
// uniqueness constraint maps to ErrEmailTaken.
func (r *Repository) InsertStudent(ctx context.Context, st Student, passwordHash string) (Student, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if st.Role == "" {
		st.Role = RoleStudent
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO students (id, name, email, phone, semester, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO NOTHING
		RETURNING created_at, updated_at
	`, st.ID, st.Name, st.Email, st.Phone, st.Semester, st.Role, passwordHash)
	if err := row.Scan(&st.CreatedAt, &st.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrEmailTaken
		}
		return Student{}, fmt.Errorf("insert student: %w", err)
	}
	return st, nil
}

// GetStudent returns a profile by id.
func (r *Repository) GetStudent(ctx context.Context, id string) (Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, semester, role, created_at, updated_at
		FROM students WHERE id = $1
	`, id)
	var st Student
	if err := row.Scan(&st.ID, &st.Name, &st.Email, &st.Phone, &st.Semester, &st.Role, &st.CreatedAt, &st.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrStudentNotFound
		}
		return Student{}, fmt.Errorf("get student %s: %w", id, err)
	}
	return st, nil
}

// GetByEmail returns a profile and its password hash for login.
func (r *Repository) GetByEmail(ctx context.Context, email string) (Student, string, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, semester, role, password_hash, created_at, updated_at
		FROM students WHERE email = $1
	`, email)
	var st Student
	var hash string
	if err := row.Scan(&st.ID, &st.Name, &st.Email, &st.Phone, &st.Semester, &st.Role, &hash, &st.CreatedAt, &st.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, "", ErrStudentNotFound
		}
		return Student{}, "", fmt.Errorf("get student by email: %w", err)
	}
	return st, hash, nil
}

// ListStudents returns the roster ordered by display name.
func (r *Repository) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, phone, semester, role, created_at, updated_at
		FROM students
		ORDER BY LOWER(name), id
	`)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()
	var out []Student
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.Name, &st.Email, &st.Phone, &st.Semester, &st.Role, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// ProfilePatch carries optional contact edits. Nil fields are left
// untouched.
type ProfilePatch struct {
	Name     *string
	Phone    *string
	Semester *string
}

// UpdateProfile applies a patch to a profile.
func (r *Repository) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE students SET
			name = COALESCE($2, name),
			phone = COALESCE($3, phone),
			semester = COALESCE($4, semester),
			updated_at = NOW()
		WHERE id = $1
	`, id, patch.Name, patch.Phone, patch.Semester)
	if err != nil {
		return fmt.Errorf("update student %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStudentNotFound
	}
	return nil
}

// SetRole overwrites a profile's role.
func (r *Repository) SetRole(ctx context.Context, id, role string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE students SET role = $2, updated_at = NOW() WHERE id = $1
	`, id, role)
	if err != nil {
		return fmt.Errorf("set role for student %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStudentNotFound
	}
	return nil
}

// DeleteStudent removes a profile; attendance records follow via the
// schema's ON DELETE CASCADE.
func (r *Repository) DeleteStudent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStudentNotFound
	}
	return nil
}
