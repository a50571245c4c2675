// Package remote is the REST client for the students collaborator.
//
// The collaborator exposes a `students` resource under a base URL:
//
//	GET    {base}/students        → ordered list of students
//	PUT    {base}/students/{id}   → full replacement, returns the canonical record
//	DELETE {base}/students/{id}   → any 2xx is success, body ignored
//
// Every failure is returned as *Error with Kind TransportFailure or
// RemoteRejection. A 2xx whose body is malformed is a RemoteRejection.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aanand-mishra/applicants/internal/http/middleware"
	"github.com/aanand-mishra/applicants/internal/types"
	"github.com/aanand-mishra/applicants/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	OpList   = "list"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Error bodies are read for their message only; cap what we buffer.
const maxErrorBody = 64 << 10

// Client talks to the collaborator. It is safe for concurrent use.
type Client struct {
	base     *url.URL
	http     *http.Client
	log      *slog.Logger
	validate *validator.Validate
}

// New returns a Client for the collaborator rooted at baseURL, e.g.
// "http://localhost:8082/api". A nil httpClient uses http.DefaultClient;
// a nil log uses slog.Default().
func New(baseURL string, httpClient *http.Client, log *slog.Logger) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("remote.New: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("remote.New: base url %q needs a scheme and host", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		base:     base,
		http:     httpClient,
		log:      log,
		validate: validator.New(),
	}, nil
}

// List fetches the whole collection in the collaborator's order.
func (c *Client) List(ctx context.Context) ([]types.Student, error) {
	var students []types.Student
	if err := c.do(ctx, OpList, http.MethodGet, c.studentsURL(), nil, &students); err != nil {
		return nil, err
	}

	// A JSON null decodes to a nil slice; treat it as an empty collection.
	if students == nil {
		students = []types.Student{}
	}

	seen := make(map[int64]struct{}, len(students))
	for i, s := range students {
		if err := c.checkRecord(s); err != nil {
			return nil, rejectedErr(OpList, http.StatusOK,
				fmt.Sprintf("malformed record at index %d", i), err)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, rejectedErr(OpList, http.StatusOK,
				fmt.Sprintf("duplicate id %d", s.ID), nil)
		}
		seen[s.ID] = struct{}{}
	}

	return students, nil
}

// Update sends student as a full replacement of the record it addresses
// and returns the collaborator's canonical copy.
func (c *Client) Update(ctx context.Context, student types.Student) (types.Student, error) {
	body, err := json.Marshal(student)
	if err != nil {
		return types.Student{}, fmt.Errorf("remote update: encode: %w", err)
	}

	var updated types.Student
	if err := c.do(ctx, OpUpdate, http.MethodPut, c.studentURL(student.ID), body, &updated); err != nil {
		return types.Student{}, err
	}

	if err := c.checkRecord(updated); err != nil {
		return types.Student{}, rejectedErr(OpUpdate, http.StatusOK, "malformed record", err)
	}
	if updated.ID != student.ID {
		return types.Student{}, rejectedErr(OpUpdate, http.StatusOK,
			fmt.Sprintf("returned id %d, want %d", updated.ID, student.ID), nil)
	}

	return updated, nil
}

// Delete removes the record with id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, OpDelete, http.MethodDelete, c.studentURL(id), nil, nil)
}

func (c *Client) studentsURL() string {
	return c.base.JoinPath("students").String()
}

func (c *Client) studentURL(id int64) string {
	return c.base.JoinPath("students", strconv.FormatInt(id, 10)).String()
}

// checkRecord rejects records the view-model cannot hold: no id, or
// missing the fields search matches against.
func (c *Client) checkRecord(s types.Student) error {
	if s.ID <= 0 {
		return errors.New("missing id")
	}
	return c.validate.Struct(s)
}

// do performs one request. When out is non-nil a 2xx body is decoded into
// it; a decode failure is a RemoteRejection.
func (c *Client) do(ctx context.Context, op, method, target string, body []byte, out any) error {
	reqID := middleware.GetRequestID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	log := c.log.With(
		slog.String("op", op),
		slog.String("request_id", reqID),
	)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("remote %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(middleware.HeaderRequestID, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug("remote request", slog.String("method", method), slog.String("url", target))

	resp, err := c.http.Do(req)
	if err != nil {
		return transportErr(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rejectedErr(op, resp.StatusCode, errorMessage(resp.Body), nil)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return rejectedErr(op, resp.StatusCode, "malformed body", err)
	}

	return nil
}

// errorMessage extracts the collaborator's {"status":"error","error":"..."}
// message, falling back to the raw body text.
func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}

	if msg, ok := response.ErrorMessage(raw); ok {
		return msg
	}
	return strings.TrimSpace(string(raw))
}
