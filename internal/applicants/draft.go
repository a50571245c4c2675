package applicants

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aanand-mishra/applicants/internal/types"
)

var (
	ErrNoEditTarget   = errors.New("applicants: no record is being edited")
	ErrTargetChanged  = errors.New("applicants: editing target changed")
	ErrImmutableField = errors.New("applicants: field is read-only")
	ErrUnknownField   = errors.New("applicants: unknown field")
	ErrInvalidFee     = errors.New("applicants: fee must be a number")
)

// Form field names, in the order the edit form shows them after the
// read-only id.
const (
	FieldID      = "id"
	FieldName    = "name"
	FieldContact = "contact"
	FieldEmail   = "email"
	FieldCourse  = "course"
	FieldFee     = "fee"
	FieldImage   = "image"
)

// EditableFields lists the fields a Draft accepts in Set.
var EditableFields = []string{FieldName, FieldContact, FieldEmail, FieldCourse, FieldFee, FieldImage}

// Draft is the edit form's private copy of the editing target. Changes
// to it never touch the store until Submit.
type Draft struct {
	record types.Student
}

// NewDraft copies target into a new draft.
func NewDraft(target types.Student) *Draft {
	return &Draft{record: target}
}

// DraftFromStore starts a draft for record id from the store's editing
// target. A form rendered for one record must never be applied to
// another, so it fails with ErrTargetChanged when the target has since
// moved to a different id.
func DraftFromStore(s *Store, id int64) (*Draft, error) {
	target, ok := s.Editing()
	if !ok {
		return nil, ErrNoEditTarget
	}
	if target.ID != id {
		return nil, fmt.Errorf("%w: form is for %d, editing %d", ErrTargetChanged, id, target.ID)
	}
	return NewDraft(target), nil
}

// Record returns a copy of the draft's current values.
func (d *Draft) Record() types.Student {
	return d.record
}

// Set updates one field from its form text. The id is read-only and fee
// must parse as a finite number; on error the draft is unchanged.
func (d *Draft) Set(field, value string) error {
	switch field {
	case FieldID:
		return fmt.Errorf("%w: %s", ErrImmutableField, field)
	case FieldName:
		d.record.Name = value
	case FieldContact:
		d.record.Contact = value
	case FieldEmail:
		d.record.Email = value
	case FieldCourse:
		d.record.Course = value
	case FieldImage:
		d.record.Image = value
	case FieldFee:
		fee, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(fee) || math.IsInf(fee, 0) {
			return fmt.Errorf("%w: %q", ErrInvalidFee, value)
		}
		d.record.Fee = fee
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// SetAll applies every editable field present in values. Invalid values
// are skipped and reported together; valid ones are still applied so the
// form can be re-shown with the user's input.
func (d *Draft) SetAll(values map[string]string) error {
	var errs []error
	for _, field := range EditableFields {
		if v, ok := values[field]; ok {
			if err := d.Set(field, v); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Submit commits the draft through the store.
func (d *Draft) Submit(ctx context.Context, s *Store) error {
	return s.CommitEdit(ctx, d.record)
}

// Cancel abandons the draft and clears the store's editing target.
func (d *Draft) Cancel(s *Store) {
	s.CancelEdit()
}
