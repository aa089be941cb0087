// Package student defines the Student entity and the service layer
// over its storage.
package student

import "errors"

// ErrNotFound is returned when no student exists with the requested id.
var ErrNotFound = errors.New("student not found")

// ErrInvalid is returned when a write carries invalid field values.
var ErrInvalid = errors.New("invalid student")

// Student is a student record. The id is assigned by the store on
// creation and never changes afterwards. BirthDate is an optional
// calendar date in YYYY-MM-DD form; SchoolCategory is optional and
// bounded in length.
type Student struct {
	ID             int64   `json:"id"`
	FullName       string  `json:"fullName" binding:"required"`
	BirthDate      *string `json:"birthDate,omitempty"`
	SchoolCategory *string `json:"schoolCategory,omitempty"`
}

// MaxSchoolCategoryLen bounds the school category field.
const MaxSchoolCategoryLen = 500
