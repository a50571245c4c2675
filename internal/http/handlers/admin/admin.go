// Package admin serves the Applicants page: the search box, fee sort
// selector, the applicants table and the edit form, all rendered from an
// applicants.Store.
//
// Like the collaborator's handlers, every route is a factory that closes
// over its dependencies:
//
//	router.HandleFunc("GET /{$}", admin.Page(store))
//
// Actions are plain HTML form posts answered with 303 See Other back to
// the page, carrying the current search and sort along.
package admin

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aanand-mishra/applicants/internal/applicants"
	"github.com/aanand-mishra/applicants/internal/http/middleware"
	"github.com/aanand-mishra/applicants/internal/types"
	"github.com/aanand-mishra/applicants/internal/utils/response"
)

//go:embed templates/applicants.html
var templatesFS embed.FS

var page = template.Must(template.New("applicants.html").
	Funcs(template.FuncMap{"fee": formatFee}).
	ParseFS(templatesFS, "templates/applicants.html"))

// Notices shown above the table. None of them claims a change happened.
const (
	noticeDeleteFailed = "Could not delete the applicant. The list is unchanged."
	noticeUpdateFailed = "Could not save the changes. Nothing was updated; your edits are still in the form."
	noticeInvalidInput = "Some values are invalid. Nothing was saved."
	noticeStaleForm    = "Another edit was started before this form was saved. Nothing was updated."
)

// pageData feeds templates/applicants.html.
type pageData struct {
	Query    string
	Sort     applicants.SortOrder
	Students []types.Student
	Draft    *formView
	Notice   string
}

// formView is the edit form's field text. Fee is text so an invalid
// entry can be shown back unchanged.
type formView struct {
	ID      int64
	Name    string
	Contact string
	Email   string
	Course  string
	Fee     string
	Image   string
}

func newFormView(s types.Student) *formView {
	return &formView{
		ID:      s.ID,
		Name:    s.Name,
		Contact: s.Contact,
		Email:   s.Email,
		Course:  s.Course,
		Fee:     formatFee(s.Fee),
		Image:   s.Image,
	}
}

func formatFee(fee float64) string {
	return strconv.FormatFloat(fee, 'f', -1, 64)
}

// ─────────────────────────────────────────────────────────────────────────────
// Page handles GET /
//
// Query parameters:
//
//	q     — search text, matched against name and course
//	sort  — "", "lowToHigh" or "highToLow"
//	notice — optional message set by a failed action
//
// While an editing target exists the edit form replaces the table.
// ─────────────────────────────────────────────────────────────────────────────
func Page(store *applicants.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		data := pageData{
			Query:  q.Get("q"),
			Sort:   applicants.ParseSortOrder(q.Get("sort")),
			Notice: q.Get("notice"),
		}

		if target, ok := store.Editing(); ok {
			data.Draft = newFormView(target)
		} else {
			data.Students = store.View(data.Query, data.Sort)
		}

		render(w, r, http.StatusOK, data)
	}
}

// View handles GET /view and returns the projection as JSON.
func View(store *applicants.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		students := store.View(q.Get("q"), applicants.ParseSortOrder(q.Get("sort")))
		response.WriteJSON(w, http.StatusOK, students)
	}
}

// Delete handles POST /students/{id}/delete.
func Delete(store *applicants.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		notice := ""
		if err := store.Remove(r.Context(), id); err != nil {
			// The store has already reported the failure.
			notice = noticeDeleteFailed
		}

		redirect(w, r, notice)
	}
}

// BeginEdit handles POST /students/{id}/edit.
func BeginEdit(store *applicants.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		record, found := findStudent(store.Snapshot().Students, id)
		if !found {
			response.WriteJSON(w, http.StatusNotFound,
				response.GeneralError(errors.New("no applicant with that id")))
			return
		}

		store.BeginEdit(record)
		redirect(w, r, "")
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// CommitEdit handles POST /edit
//
// The form carries the id it was rendered for. A fresh draft is taken from
// the editing target only when that id still matches; otherwise nothing is
// sent and the page shows the current target. Invalid input or a failed
// update re-renders the form from the draft so the user's input survives.
// ─────────────────────────────────────────────────────────────────────────────
func CommitEdit(store *applicants.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		id, err := strconv.ParseInt(r.PostForm.Get(applicants.FieldID), 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		draft, err := applicants.DraftFromStore(store, id)
		switch {
		case errors.Is(err, applicants.ErrNoEditTarget):
			// Cancelled in another tab.
			redirect(w, r, "")
			return
		case err != nil:
			slog.Warn("stale edit form",
				slog.String("request_id", middleware.GetRequestID(r.Context())),
				slog.String("error", err.Error()))
			redirect(w, r, noticeStaleForm)
			return
		}

		values := make(map[string]string, len(applicants.EditableFields))
		for _, field := range applicants.EditableFields {
			if _, ok := r.PostForm[field]; ok {
				values[field] = r.PostForm.Get(field)
			}
		}

		data := pageData{
			Query: r.PostForm.Get("q"),
			Sort:  applicants.ParseSortOrder(r.PostForm.Get("sort")),
		}

		if err := draft.SetAll(values); err != nil {
			slog.Debug("invalid edit input",
				slog.String("request_id", middleware.GetRequestID(r.Context())),
				slog.String("error", err.Error()))
			data.Draft = newFormView(draft.Record())
			if fee, ok := values[applicants.FieldFee]; ok {
				data.Draft.Fee = fee
			}
			data.Notice = noticeInvalidInput
			render(w, r, http.StatusUnprocessableEntity, data)
			return
		}

		if err := draft.Submit(r.Context(), store); err != nil {
			data.Draft = newFormView(draft.Record())
			data.Notice = noticeUpdateFailed
			render(w, r, http.StatusBadGateway, data)
			return
		}

		redirect(w, r, "")
	}
}

// CancelEdit handles POST /edit/cancel.
func CancelEdit(store *applicants.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.CancelEdit()
		redirect(w, r, "")
	}
}

// Register mounts the page and its actions on router.
func Register(router *http.ServeMux, store *applicants.Store) {
	router.HandleFunc("GET /{$}", Page(store))
	router.HandleFunc("GET /view", View(store))
	router.HandleFunc("POST /students/{id}/delete", Delete(store))
	router.HandleFunc("POST /students/{id}/edit", BeginEdit(store))
	router.HandleFunc("POST /edit", CommitEdit(store))
	router.HandleFunc("POST /edit/cancel", CancelEdit(store))
}

func render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Execute(w, data); err != nil {
		slog.Error("render applicants page",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("error", err.Error()))
	}
}

// redirect sends the browser back to the page, keeping q and sort from
// the submitted form.
func redirect(w http.ResponseWriter, r *http.Request, notice string) {
	params := url.Values{}
	if q := r.FormValue("q"); q != "" {
		params.Set("q", q)
	}
	if sort := applicants.ParseSortOrder(r.FormValue("sort")); sort != applicants.SortNone {
		params.Set("sort", string(sort))
	}
	if notice != "" {
		params.Set("notice", notice)
	}

	target := "/"
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}
	return id, true
}

func findStudent(students []types.Student, id int64) (types.Student, bool) {
	for _, s := range students {
		if s.ID == id {
			return s, true
		}
	}
	return types.Student{}, false
}
