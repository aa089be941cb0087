package student

import (
	"context"
	"fmt"
	"time"

	"github.com/doanvh/studentsvc/internal/observability"
)

// Storage is the persistence contract the service depends on. The
// sqlite package provides the production implementation; tests may
// substitute fakes.
type Storage interface {
	// List returns every student. Empty slice, not nil, when there
	// are none.
	List(ctx context.Context) ([]Student, error)

	// Get fetches one student by id. Returns ErrNotFound if absent.
	Get(ctx context.Context, id int64) (Student, error)

	// SearchByName returns students whose full name contains the
	// substring, case-insensitively.
	SearchByName(ctx context.Context, name string) ([]Student, error)

	// SearchBySchool returns students whose school category contains
	// the substring, case-insensitively.
	SearchBySchool(ctx context.Context, school string) ([]Student, error)

	// Create inserts a new record and returns it with the assigned id.
	Create(ctx context.Context, s Student) (Student, error)

	// Update overwrites the mutable fields of an existing record.
	// Returns ErrNotFound if the id is absent.
	Update(ctx context.Context, id int64, s Student) (Student, error)

	// Delete removes a record. Returns true if a record existed.
	Delete(ctx context.Context, id int64) (bool, error)
}

// Service implements the student operations, delegating persistence to
// a Storage collaborator.
type Service struct {
	store  Storage
	logger observability.Logger
}

// NewService creates a new student service.
func NewService(store Storage, logger observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		store:  store,
		logger: logger,
	}
}

// List returns all students.
func (s *Service) List(ctx context.Context) ([]Student, error) {
	return s.store.List(ctx)
}

// Get returns the student with the given id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (Student, error) {
	return s.store.Get(ctx, id)
}

// SearchByName returns students whose name contains the substring,
// case-insensitively.
func (s *Service) SearchByName(ctx context.Context, name string) ([]Student, error) {
	return s.store.SearchByName(ctx, name)
}

// SearchBySchool returns students whose school category contains the
// substring, case-insensitively.
func (s *Service) SearchBySchool(ctx context.Context, school string) ([]Student, error) {
	return s.store.SearchBySchool(ctx, school)
}

// Create stores a new student. Any id in the input is ignored; the
// store assigns one.
func (s *Service) Create(ctx context.Context, st Student) (Student, error) {
	if err := validate(st); err != nil {
		return Student{}, err
	}

	st.ID = 0
	created, err := s.store.Create(ctx, st)
	if err != nil {
		return Student{}, err
	}

	s.logger.WithContext(ctx).Info("student created",
		observability.Int64("id", created.ID),
	)
	return created, nil
}

// Update overwrites the full name, birth date, and school category of
// the student with the given id. The id is immutable. Returns
// ErrNotFound when the id is absent, leaving the store unchanged.
func (s *Service) Update(ctx context.Context, id int64, st Student) (Student, error) {
	if err := validate(st); err != nil {
		return Student{}, err
	}

	// Existence check first so an absent id never reaches the write.
	if _, err := s.store.Get(ctx, id); err != nil {
		return Student{}, err
	}

	updated, err := s.store.Update(ctx, id, st)
	if err != nil {
		return Student{}, err
	}

	s.logger.WithContext(ctx).Info("student updated",
		observability.Int64("id", id),
	)
	return updated, nil
}

// Delete removes the student with the given id. Returns true iff a
// record existed and was removed.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.WithContext(ctx).Info("student deleted",
			observability.Int64("id", id),
		)
	}
	return deleted, nil
}

// validate checks the mutable fields before a write.
func validate(st Student) error {
	if st.FullName == "" {
		return fmt.Errorf("%w: full name is required", ErrInvalid)
	}
	if st.SchoolCategory != nil && len(*st.SchoolCategory) > MaxSchoolCategoryLen {
		return fmt.Errorf("%w: school category exceeds %d characters", ErrInvalid, MaxSchoolCategoryLen)
	}
	if st.BirthDate != nil {
		if _, err := time.Parse("2006-01-02", *st.BirthDate); err != nil {
			return fmt.Errorf("%w: birth date must be YYYY-MM-DD", ErrInvalid)
		}
	}
	return nil
}
