// Package sqlite provides the SQLite-backed implementation of
// student.Storage using database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	// Registers the "sqlite3" driver with database/sql.
	_ "github.com/mattn/go-sqlite3"

	"github.com/doanvh/studentsvc/internal/student"
)

// Store is the concrete student.Storage implementation. A single
// *sql.DB is safe for concurrent use by multiple goroutines.
type Store struct {
	db *sql.DB
}

// Ensure Store implements student.Storage.
var _ student.Storage = (*Store)(nil)

// New opens the SQLite database at path, creates the students table if
// it does not exist, and returns a ready-to-use store. Use ":memory:"
// for an ephemeral database in tests.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			full_name       TEXT NOT NULL,
			birth_date      TEXT,
			school_category TEXT
		)
	`); err != nil {
		return nil, fmt.Errorf("sqlite: create table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection. Used by the health check.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const selectColumns = "id, full_name, birth_date, school_category"

// scanStudent reads one row into a Student. Column order must match
// selectColumns.
func scanStudent(row interface{ Scan(...any) error }) (student.Student, error) {
	var st student.Student
	err := row.Scan(&st.ID, &st.FullName, &st.BirthDate, &st.SchoolCategory)
	return st, err
}

// List implements student.Storage.
func (s *Store) List(ctx context.Context) ([]student.Student, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM students",
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

// Get implements student.Storage.
func (s *Store) Get(ctx context.Context, id int64) (student.Student, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM students WHERE id = ?", id,
	)

	st, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, fmt.Errorf("sqlite: get: %w", err)
	}
	return st, nil
}

// SearchByName implements student.Storage.
func (s *Store) SearchByName(ctx context.Context, name string) ([]student.Student, error) {
	return s.search(ctx, "full_name", name)
}

// SearchBySchool implements student.Storage.
func (s *Store) SearchBySchool(ctx context.Context, school string) ([]student.Student, error) {
	return s.search(ctx, "school_category", school)
}

// search performs a case-insensitive substring match on column.
// The column name is always one of the two constants above, never
// caller input.
func (s *Store) search(ctx context.Context, column, substr string) ([]student.Student, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(
			`SELECT %s FROM students
			 WHERE %s IS NOT NULL
			   AND LOWER(%s) LIKE '%%' || ? || '%%' ESCAPE '\'`,
			selectColumns, column, column,
		),
		escapeLike(strings.ToLower(substr)),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: search %s: %w", column, err)
	}
	defer rows.Close()

	return collect(rows)
}

// escapeLike escapes LIKE metacharacters in a user-supplied substring.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Create implements student.Storage.
func (s *Store) Create(ctx context.Context, st student.Student) (student.Student, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO students (full_name, birth_date, school_category) VALUES (?, ?, ?)",
		st.FullName, st.BirthDate, st.SchoolCategory,
	)
	if err != nil {
		return student.Student{}, fmt.Errorf("sqlite: create: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return student.Student{}, fmt.Errorf("sqlite: create: last insert id: %w", err)
	}

	st.ID = id
	return st, nil
}

// Update implements student.Storage. Only the three mutable fields are
// written; the id never changes.
func (s *Store) Update(ctx context.Context, id int64, st student.Student) (student.Student, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE students SET full_name = ?, birth_date = ?, school_category = ? WHERE id = ?",
		st.FullName, st.BirthDate, st.SchoolCategory, id,
	)
	if err != nil {
		return student.Student{}, fmt.Errorf("sqlite: update: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return student.Student{}, fmt.Errorf("sqlite: update: rows affected: %w", err)
	}
	if affected == 0 {
		return student.Student{}, student.ErrNotFound
	}

	st.ID = id
	return st, nil
}

// Delete implements student.Storage.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM students WHERE id = ?", id,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: delete: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: delete: rows affected: %w", err)
	}
	return affected > 0, nil
}

// collect drains rows into a slice, always returning a non-nil slice.
func collect(rows *sql.Rows) ([]student.Student, error) {
	students := make([]student.Student, 0)
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan row: %w", err)
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: rows iteration: %w", err)
	}
	return students, nil
}
