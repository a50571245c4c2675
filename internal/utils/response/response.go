// Package response is the JSON envelope shared by both sides of the
// students API. The collaborator writes it with WriteJSON, GeneralError
// and ValidationError; the admin view's remote client reads it back with
// ErrorMessage.
//
// Error responses always look like:
//
//	{ "status": "error", "error": "field Name is required" }
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the envelope returned for error cases. Success responses
// carry the resource itself (a student, a list, an id).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrorMessage returns the message of an error envelope in raw. ok is
// false when raw is not JSON or carries no message, so the caller can fall
// back to the raw text.
func ErrorMessage(raw []byte) (msg string, ok bool) {
	var envelope Response
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error == "" {
		return "", false
	}
	return envelope.Error, true
}

// WriteJSON writes data as JSON with the given status. Headers are set
// before WriteHeader locks them.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps err in the error envelope.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationError converts a slice of validator.FieldError values into
// a single human-readable Response, one sentence per failing field joined
// with ", ".
//
//	{ "status": "error", "error": "field Name is required, field Course is required" }
//
// ─────────────────────────────────────────────────────────────────────────────
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "email":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be a valid email address", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
	}
}
