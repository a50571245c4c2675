package applicants

import (
	"cmp"
	"slices"
	"strings"

	"github.com/aanand-mishra/applicants/internal/types"
)

// SortOrder is the fee sort directive chosen in the sort selector.
// The values are the ones the selector submits.
type SortOrder string

const (
	SortNone    SortOrder = ""
	SortFeeAsc  SortOrder = "lowToHigh"
	SortFeeDesc SortOrder = "highToLow"
)

// ParseSortOrder maps a submitted selector value to a SortOrder.
// Anything unrecognised means no sorting.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortFeeAsc:
		return SortFeeAsc
	case SortFeeDesc:
		return SortFeeDesc
	default:
		return SortNone
	}
}

// Matches reports whether query is a case-insensitive substring of the
// student's name or course. An empty query matches everything.
func Matches(s types.Student, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(s.Name), q) ||
		strings.Contains(strings.ToLower(s.Course), q)
}

// Project returns the records to display: those matching query, ordered by
// fee according to order. Ties keep their collection order, and SortNone
// keeps collection order entirely. students is never modified; the result
// is always a new slice.
func Project(students []types.Student, query string, order SortOrder) []types.Student {
	out := make([]types.Student, 0, len(students))
	for _, s := range students {
		if Matches(s, query) {
			out = append(out, s)
		}
	}

	switch order {
	case SortFeeAsc:
		slices.SortStableFunc(out, func(a, b types.Student) int {
			return cmp.Compare(a.Fee, b.Fee)
		})
	case SortFeeDesc:
		slices.SortStableFunc(out, func(a, b types.Student) int {
			return cmp.Compare(b.Fee, a.Fee)
		})
	}

	return out
}
