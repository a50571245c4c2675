// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// the collaborator handlers, its storage, the remote client and the
// applicants view-model can all import types without depending on each
// other.
package types

// Student represents one admissions applicant (a StudentRecord).
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — controls how the field appears when encoded to JSON.
//     The names match the collaborator's REST payloads exactly.
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package. Name and Course are the fields search matches against,
//     so a record without them is treated as malformed.
//
// ID is assigned by the collaborator and never generated locally.
type Student struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"    validate:"required"`
	Contact string  `json:"contact"`
	Email   string  `json:"email"`
	Course  string  `json:"course"  validate:"required"`
	Fee     float64 `json:"fee"`
	Image   string  `json:"image,omitempty"`
}
