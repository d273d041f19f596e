package roster

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Store is the persistence surface for profiles. *Repository
// implements it.
type Store interface {
	InsertStudent(ctx context.Context, st Student, passwordHash string) (Student, error)
	GetStudent(ctx context.Context, id string) (Student, error)
	GetByEmail(ctx context.Context, email string) (Student, string, error)
	ListStudents(ctx context.Context) ([]Student, error)
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) error
	SetRole(ctx context.Context, id, role string) error
	DeleteStudent(ctx context.Context, id string) error
}

var (
	ErrMissingFields  = errors.New("name, email and password required")
	ErrPasswordLength = errors.New("password must be at least 8 characters")
	ErrUnknownRole    = errors.New("unknown role")
)

// Service handles signup, login checks and profile management.
type Service struct {
	store Store
	log   *zap.Logger
}

// NewService creates a roster service.
func NewService(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log}
}

// SignupInput carries the signup form fields.
type SignupInput struct {
	Name     string
	Email    string
	Phone    string
	Semester string
	Password string
}

// Signup creates a profile with the default student role.
func (s *Service) Signup(ctx context.Context, in SignupInput) (Student, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return Student{}, ErrMissingFields
	}
	if len(in.Password) < 8 {
		return Student{}, ErrPasswordLength
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Student{}, err
	}
	st, err := s.store.InsertStudent(ctx, Student{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Semester: in.Semester,
		Role:     RoleStudent,
	}, string(hash))
	if err != nil {
		return Student{}, err
	}
	s.log.Info("student signed up", zap.String("student_id", st.ID))
	return st, nil
}

// Authenticate checks credentials for login. A missing account and a
// wrong password both return ErrInvalidCredentials so login probes
// cannot tell them apart.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Student, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	st, hash, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			return Student{}, ErrInvalidCredentials
		}
		return Student{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return Student{}, ErrInvalidCredentials
	}
	return st, nil
}

// Get returns a profile by id.
func (s *Service) Get(ctx context.Context, id string) (Student, error) {
	return s.store.GetStudent(ctx, id)
}

// List returns the roster ordered by display name.
func (s *Service) List(ctx context.Context) ([]Student, error) {
	return s.store.ListStudents(ctx)
}

// UpdateProfile applies contact edits by the student or an admin.
func (s *Service) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) error {
	return s.store.UpdateProfile(ctx, id, patch)
}

// SetRole promotes or demotes an account. Admin only; the handler
// enforces that.
func (s *Service) SetRole(ctx context.Context, id, role string) error {
	if role != RoleStudent && role != RoleAdmin {
		return ErrUnknownRole
	}
	if err := s.store.SetRole(ctx, id, role); err != nil {
		return err
	}
	s.log.Info("role changed", zap.String("student_id", id), zap.String("role", role))
	return nil
}

// Delete removes an account by admin action.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteStudent(ctx, id)
}
