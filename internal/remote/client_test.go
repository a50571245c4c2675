package remote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aanand-mishra/applicants/internal/http/handlers/student"
	"github.com/aanand-mishra/applicants/internal/http/middleware"
	"github.com/aanand-mishra/applicants/internal/storage/sqlite"
	"github.com/aanand-mishra/applicants/internal/types"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// newCollaborator starts a real students-api over an in-memory database.
func newCollaborator(t *testing.T, seed ...types.Student) (*Client, *sqlite.SQLite) {
	t.Helper()
	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	for _, s := range seed {
		if _, err := db.CreateStudent(s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	router := http.NewServeMux()
	student.Register(router, "/api", db)
	srv := httptest.NewServer(middleware.RequestID(router))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/api", srv.Client(), discard)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c, db
}

// newStub serves every request with h.
func newStub(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, srv.Client(), discard)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8082", "::bad"} {
		if _, err := New(raw, nil, nil); err == nil {
			t.Errorf("New(%q) should fail", raw)
		}
	}
}

func TestClient_AgainstCollaborator(t *testing.T) {
	ctx := context.Background()
	c, _ := newCollaborator(t,
		types.Student{Name: "Amy", Course: "CS", Fee: 500},
		types.Student{Name: "Bo", Course: "Math", Fee: 300},
	)

	students, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(students) != 2 || students[0].Name != "Amy" || students[1].Name != "Bo" {
		t.Fatalf("List() = %+v", students)
	}

	edit := students[1]
	edit.Fee = 350
	edit.Email = "bo@test.com"
	updated, err := c.Update(ctx, edit)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated != edit {
		t.Errorf("Update() = %+v, want %+v", updated, edit)
	}

	if err := c.Delete(ctx, students[0].ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	err = c.Delete(ctx, students[0].ID)
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != RemoteRejection || rerr.StatusCode != http.StatusNotFound {
		t.Fatalf("second Delete() error = %v, want 404 rejection", err)
	}
	if rerr.Message == "" {
		t.Error("rejection should carry the collaborator's error message")
	}

	students, err = c.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(students) != 1 || students[0] != updated {
		t.Errorf("List() after delete = %+v", students)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, nil, discard)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.List(context.Background())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("List() error = %v, want transport failure", err)
	}
	if errors.Is(err, ErrRejected) {
		t.Error("transport failure must not match ErrRejected")
	}
	if KindOf(err) != TransportFailure {
		t.Errorf("KindOf() = %q", KindOf(err))
	}
}

func TestClient_CancelledContextIsTransportFailure(t *testing.T) {
	c := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Delete(ctx, 1); !errors.Is(err, ErrTransport) {
		t.Errorf("Delete() error = %v, want transport failure", err)
	}
}

func TestClient_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		call   func(*Client) error
	}{
		{
			name: "list non-success", status: http.StatusInternalServerError,
			body: `{"status":"error","error":"db down"}`,
			call: func(c *Client) error { _, err := c.List(context.Background()); return err },
		},
		{
			name: "list malformed json", status: http.StatusOK, body: `[{"id":1,`,
			call: func(c *Client) error { _, err := c.List(context.Background()); return err },
		},
		{
			name: "list record without id", status: http.StatusOK,
			body: `[{"name":"Amy","course":"CS"}]`,
			call: func(c *Client) error { _, err := c.List(context.Background()); return err },
		},
		{
			name: "list record without course", status: http.StatusOK,
			body: `[{"id":1,"name":"Amy"}]`,
			call: func(c *Client) error { _, err := c.List(context.Background()); return err },
		},
		{
			name: "list duplicate ids", status: http.StatusOK,
			body: `[{"id":1,"name":"Amy","course":"CS"},{"id":1,"name":"Bo","course":"Math"}]`,
			call: func(c *Client) error { _, err := c.List(context.Background()); return err },
		},
		{
			name: "update non-success", status: http.StatusBadRequest,
			body: `{"status":"error","error":"field Name is required"}`,
			call: func(c *Client) error {
				_, err := c.Update(context.Background(), types.Student{ID: 1})
				return err
			},
		},
		{
			name: "update malformed body", status: http.StatusOK, body: `not json`,
			call: func(c *Client) error {
				_, err := c.Update(context.Background(), types.Student{ID: 1, Name: "Amy", Course: "CS"})
				return err
			},
		},
		{
			name: "update returns different id", status: http.StatusOK,
			body: `{"id":2,"name":"Amy","course":"CS"}`,
			call: func(c *Client) error {
				_, err := c.Update(context.Background(), types.Student{ID: 1, Name: "Amy", Course: "CS"})
				return err
			},
		},
		{
			name: "delete non-success", status: http.StatusForbidden, body: "nope",
			call: func(c *Client) error { return c.Delete(context.Background(), 1) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newStub(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			err := tt.call(c)
			if !errors.Is(err, ErrRejected) {
				t.Fatalf("error = %v, want rejection", err)
			}
			var rerr *Error
			if !errors.As(err, &rerr) || rerr.StatusCode != tt.status {
				t.Errorf("error = %#v, want status %d", err, tt.status)
			}
		})
	}
}

func TestClient_RejectionMessage(t *testing.T) {
	c := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status":"error","error":"db down"}`))
	})

	_, err := c.List(context.Background())
	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v", err)
	}
	if rerr.Message != "db down" || rerr.Op != OpList {
		t.Errorf("error = %+v", rerr)
	}
}

func TestClient_RequestShape(t *testing.T) {
	var (
		gotMethod, gotPath, gotCT, gotReqID string
		gotBody                             []byte
	)
	c := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotCT = r.Header.Get("Content-Type")
		gotReqID = r.Header.Get(middleware.HeaderRequestID)
		gotBody, _ = io.ReadAll(r.Body)
		w.Write(gotBody)
	})

	ctx := middleware.WithRequestID(context.Background(), "req-1")
	in := types.Student{ID: 9, Name: "Amy", Course: "CS", Fee: 12.5}
	if _, err := c.Update(ctx, in); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if gotMethod != http.MethodPut || gotPath != "/students/9" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
	if gotCT != "application/json" {
		t.Errorf("Content-Type = %q", gotCT)
	}
	if gotReqID != "req-1" {
		t.Errorf("X-Request-ID = %q, want propagated id", gotReqID)
	}
	if len(gotBody) == 0 {
		t.Error("PUT body should carry the full record")
	}
}

func TestClient_ListNullIsEmpty(t *testing.T) {
	c := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	})

	students, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if students == nil || len(students) != 0 {
		t.Errorf("List() = %#v, want empty slice", students)
	}
}
