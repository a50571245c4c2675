package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		if _, err := uuid.Parse(seen); err != nil {
			t.Errorf("generated id %q is not a uuid: %v", seen, err)
		}
		if got := w.Header().Get(HeaderRequestID); got != seen {
			t.Errorf("response header = %q, want %q", got, seen)
		}
	})

	t.Run("reuses incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "abc-123")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if seen != "abc-123" {
			t.Errorf("context id = %q, want abc-123", seen)
		}
		if got := w.Header().Get(HeaderRequestID); got != "abc-123" {
			t.Errorf("response header = %q", got)
		}
	})
}
