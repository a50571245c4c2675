// Package student contains the HTTP handlers of the students collaborator.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Each exported function receives its dependencies (storage) once at
// startup and returns the func(http.ResponseWriter, *http.Request) that
// the router calls on every request:
//
//	router.HandleFunc("GET /api/students", student.GetList(storage))
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/applicants/internal/http/middleware"
	"github.com/aanand-mishra/applicants/internal/storage"
	"github.com/aanand-mishra/applicants/internal/types"
	"github.com/aanand-mishra/applicants/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body (JSON):
//
//	{ "name": "Amy", "contact": "0700...", "email": "amy@test.com",
//	  "course": "CS", "fee": 500, "image": "https://..." }
//
// Success response (201 Created):
//
//	{ "id": 1 }
//
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r)
		log.Info("creating a student")

		student, ok := decodeStudent(w, r)
		if !ok {
			return
		}

		lastID, err := storage.CreateStudent(student)
		if err != nil {
			log.Error("error creating student", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		log.Info("student created", slog.Int64("id", lastID))
		response.WriteJSON(w, http.StatusCreated, map[string]int64{"id": lastID})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
//
// Error responses:
//
//	400 Bad Request  — id is not a valid integer
//	404 Not Found    — no student with that id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r).With(slog.String("id", r.PathValue("id")))
		log.Info("getting a student")

		intID, ok := pathID(w, r)
		if !ok {
			return
		}

		student, err := storage.GetStudentByID(intID)
		if err != nil {
			log.Error("error getting student", slog.String("error", err.Error()))
			writeStorageError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
// Returns a JSON array of all students in insertion order; [] when empty.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r)
		log.Info("getting all students")

		students, err := storage.GetStudents()
		if err != nil {
			log.Error("error getting students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// Replaces ALL fields of an existing student. The body may carry the id;
// when it does it must match the path.
//
// Success response (200 OK) — the canonical stored student.
//
// Error responses:
//
//	400 Bad Request  — invalid id, empty body, id mismatch or validation failure
//	404 Not Found    — no student with that id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r).With(slog.String("id", r.PathValue("id")))
		log.Info("updating a student")

		intID, ok := pathID(w, r)
		if !ok {
			return
		}

		student, ok := decodeStudent(w, r)
		if !ok {
			return
		}

		if student.ID != 0 && student.ID != intID {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("body id does not match path id")))
			return
		}

		updated, err := storage.UpdateStudentByID(intID, student)
		if err != nil {
			log.Error("error updating student", slog.String("error", err.Error()))
			writeStorageError(w, err)
			return
		}

		log.Info("student updated")
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
//
// Success response (200 OK):
//
//	{ "status": "deleted" }
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r).With(slog.String("id", r.PathValue("id")))
		log.Info("deleting a student")

		intID, ok := pathID(w, r)
		if !ok {
			return
		}

		if err := storage.DeleteStudentByID(intID); err != nil {
			log.Error("error deleting student", slog.String("error", err.Error()))
			writeStorageError(w, err)
			return
		}

		log.Info("student deleted")
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func requestLogger(r *http.Request) *slog.Logger {
	return slog.Default().With(
		slog.String("request_id", middleware.GetRequestID(r.Context())))
}

// pathID parses the {id} path segment. On failure it has already written
// the 400 response.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	intID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}
	return intID, true
}

// decodeStudent decodes and validates the request body. On failure it has
// already written the 400 response.
func decodeStudent(w http.ResponseWriter, r *http.Request) (types.Student, bool) {
	var student types.Student

	err := json.NewDecoder(r.Body).Decode(&student)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return student, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return student, false
	}

	if err := validator.New().Struct(student); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
		} else {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		}
		return student, false
	}

	return student, true
}

func writeStorageError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, storage.ErrNotFound) {
		status = http.StatusNotFound
	}
	response.WriteJSON(w, status, response.GeneralError(err))
}

// Register mounts the students resource under prefix (e.g. "/api").
//
// Route table:
//
//	POST   {prefix}/students        → create a new student
//	GET    {prefix}/students        → list all students
//	GET    {prefix}/students/{id}   → get one student by ID
//	PUT    {prefix}/students/{id}   → update a student
//	DELETE {prefix}/students/{id}   → delete a student
func Register(router *http.ServeMux, prefix string, storage storage.Storage) {
	router.HandleFunc("POST "+prefix+"/students", New(storage))
	router.HandleFunc("GET "+prefix+"/students", GetList(storage))
	router.HandleFunc("GET "+prefix+"/students/{id}", GetByID(storage))
	router.HandleFunc("PUT "+prefix+"/students/{id}", Update(storage))
	router.HandleFunc("DELETE "+prefix+"/students/{id}", Delete(storage))
}
