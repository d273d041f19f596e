package roster

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	students []Student
	hashes   map[string]string
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{hashes: make(map[string]string)}
}

func (f *fakeStore) InsertStudent(_ context.Context, st Student, passwordHash string) (Student, error) {
	for _, existing := range f.students {
		if existing.Email == st.Email {
			return Student{}, ErrEmailTaken
		}
	}
	f.nextID++
	if st.ID == "" {
		st.ID = fmt.Sprintf("s%d", f.nextID)
	}
	f.students = append(f.students, st)
	f.hashes[st.Email] = passwordHash
	return st, nil
}

func (f *fakeStore) GetStudent(_ context.Context, id string) (Student, error) {
	for _, st := range f.students {
		if st.ID == id {
			return st, nil
		}
	}
	return Student{}, ErrStudentNotFound
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (Student, string, error) {
	for _, st := range f.students {
		if st.Email == email {
			return st, f.hashes[email], nil
		}
	}
	return Student{}, "", ErrStudentNotFound
}

func (f *fakeStore) ListStudents(_ context.Context) ([]Student, error) {
	return f.students, nil
}

func (f *fakeStore) UpdateProfile(_ context.Context, id string, patch ProfilePatch) error {
	for i, st := range f.students {
		if st.ID == id {
			if patch.Name != nil {
				f.students[i].Name = *patch.Name
			}
			if patch.Phone != nil {
				f.students[i].Phone = *patch.Phone
			}
			if patch.Semester != nil {
				f.students[i].Semester = *patch.Semester
			}
			return nil
		}
	}
	return ErrStudentNotFound
}

func (f *fakeStore) SetRole(_ context.Context, id, role string) error {
	for i, st := range f.students {
		if st.ID == id {
			f.students[i].Role = role
			return nil
		}
	}
	return ErrStudentNotFound
}

func (f *fakeStore) DeleteStudent(_ context.Context, id string) error {
	for i, st := range f.students {
		if st.ID == id {
			f.students = append(f.students[:i], f.students[i+1:]...)
			return nil
		}
	}
	return ErrStudentNotFound
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeStore(), nil)

	t.Run("defaults to student role", func(t *testing.T) {
		st, err := svc.Signup(ctx, SignupInput{Name: "Asha", Email: "Asha@Example.com", Password: "correcthorse"})
		require.NoError(t, err)
		assert.Equal(t, RoleStudent, st.Role)
		assert.Equal(t, "asha@example.com", st.Email)
		assert.NotEmpty(t, st.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Signup(ctx, SignupInput{Name: "Other", Email: "asha@example.com", Password: "correcthorse"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Signup(ctx, SignupInput{Email: "x@example.com", Password: "correcthorse"})
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := svc.Signup(ctx, SignupInput{Name: "Asha", Email: "b@example.com", Password: "short"})
		assert.ErrorIs(t, err, ErrPasswordLength)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeStore(), nil)
	_, err := svc.Signup(ctx, SignupInput{Name: "Asha", Email: "asha@example.com", Password: "correcthorse"})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		st, err := svc.Authenticate(ctx, "ASHA@example.com", "correcthorse")
		require.NoError(t, err)
		assert.Equal(t, "Asha", st.Name)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "asha@example.com", "batterystaple")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody@example.com", "correcthorse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestSetRole(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewService(store, nil)
	st, err := svc.Signup(ctx, SignupInput{Name: "Asha", Email: "asha@example.com", Password: "correcthorse"})
	require.NoError(t, err)

	require.NoError(t, svc.SetRole(ctx, st.ID, RoleAdmin))
	got, err := svc.Get(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, got.Role)

	assert.ErrorIs(t, svc.SetRole(ctx, st.ID, "superuser"), ErrUnknownRole)
}
