// Package storage defines the Storage interface, the contract any
// database backend must satisfy to serve the students resource.
//
// Handlers (HTTP layer) depend only on this interface, so tests can pass
// a fake and the SQLite backend can be swapped without touching them.
package storage

import (
	"errors"

	"github.com/aanand-mishra/applicants/internal/types"
)

// ErrNotFound is returned when no student has the requested ID.
// Handlers translate it to 404.
var ErrNotFound = errors.New("student not found")

// Storage is the database contract.
type Storage interface {
	// CreateStudent inserts a new student record and returns the auto-
	// generated primary-key ID. The ID on the argument is ignored.
	CreateStudent(student types.Student) (int64, error)

	// GetStudentByID fetches a single student by their primary key.
	// Returns ErrNotFound (wrapped) if no row matches.
	GetStudentByID(id int64) (types.Student, error)

	// GetStudents returns every student in insertion order.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents() ([]types.Student, error)

	// UpdateStudentByID replaces every field of an existing student and
	// returns the stored result. Returns ErrNotFound (wrapped) if no row matches.
	UpdateStudentByID(id int64, student types.Student) (types.Student, error)

	// DeleteStudentByID removes a student record permanently.
	// Returns ErrNotFound (wrapped) if no row matches.
	DeleteStudentByID(id int64) error
}
