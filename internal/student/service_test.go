package student

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Storage for service tests.
type fakeStore struct {
	students map[int64]Student
	nextID   int64
	updates  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		students: make(map[int64]Student),
		nextID:   1,
	}
}

func (f *fakeStore) List(ctx context.Context) ([]Student, error) {
	out := make([]Student, 0, len(f.students))
	for _, s := range f.students {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) Get(ctx context.Context, id int64) (Student, error) {
	s, ok := f.students[id]
	if !ok {
		return Student{}, ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) SearchByName(ctx context.Context, name string) ([]Student, error) {
	out := make([]Student, 0)
	for _, s := range f.students {
		if strings.Contains(strings.ToLower(s.FullName), strings.ToLower(name)) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) SearchBySchool(ctx context.Context, school string) ([]Student, error) {
	out := make([]Student, 0)
	for _, s := range f.students {
		if s.SchoolCategory == nil {
			continue
		}
		if strings.Contains(strings.ToLower(*s.SchoolCategory), strings.ToLower(school)) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) Create(ctx context.Context, s Student) (Student, error) {
	s.ID = f.nextID
	f.nextID++
	f.students[s.ID] = s
	return s, nil
}

func (f *fakeStore) Update(ctx context.Context, id int64, s Student) (Student, error) {
	f.updates++
	if _, ok := f.students[id]; !ok {
		return Student{}, ErrNotFound
	}
	s.ID = id
	f.students[id] = s
	return s, nil
}

func (f *fakeStore) Delete(ctx context.Context, id int64) (bool, error) {
	if _, ok := f.students[id]; !ok {
		return false, nil
	}
	delete(f.students, id)
	return true, nil
}

func sptr(s string) *string { return &s }

func TestService_Create(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)

	created, err := svc.Create(context.Background(), Student{
		FullName:  "Anna",
		BirthDate: sptr("2001-05-20"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Anna", created.FullName)
}

func TestService_Create_IgnoresClientID(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)

	created, err := svc.Create(context.Background(), Student{ID: 999, FullName: "Anna"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID, "store assigns the id, client input is ignored")
}

func TestService_Create_Invalid(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		student Student
	}{
		{"missing name", Student{}},
		{"bad birth date", Student{FullName: "Anna", BirthDate: sptr("20-05-2001")}},
		{"non-date birth date", Student{FullName: "Anna", BirthDate: sptr("soon")}},
		{"school category too long", Student{
			FullName:       "Anna",
			SchoolCategory: sptr(strings.Repeat("x", MaxSchoolCategoryLen+1)),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.student)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	// Nothing was stored
	students, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestService_Create_MaxSchoolCategory(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)

	// Exactly at the bound is accepted
	_, err := svc.Create(context.Background(), Student{
		FullName:       "Anna",
		SchoolCategory: sptr(strings.Repeat("x", MaxSchoolCategoryLen)),
	})
	assert.NoError(t, err)
}

func TestService_Get(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Student{FullName: "Anna"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = svc.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Search(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, Student{FullName: "Anna", SchoolCategory: sptr("THPT")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Student{FullName: "Bob"})
	require.NoError(t, err)

	byName, err := svc.SearchByName(ctx, "AN")
	require.NoError(t, err)
	assert.Len(t, byName, 1)

	bySchool, err := svc.SearchBySchool(ctx, "thpt")
	require.NoError(t, err)
	assert.Len(t, bySchool, 1)
}

func TestService_Update(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Student{FullName: "Anna"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, Student{FullName: "Anna Maria"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Anna Maria", updated.FullName)
}

func TestService_Update_NotFound(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)

	_, err := svc.Update(context.Background(), 42, Student{FullName: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
	// The existence check fails before any write is attempted
	assert.Zero(t, store.updates)
}

func TestService_Update_Invalid(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Student{FullName: "Anna"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, Student{})
	assert.ErrorIs(t, err, ErrInvalid)

	// Record unchanged
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", got.FullName)
}

func TestService_Delete(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Student{FullName: "Anna"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
