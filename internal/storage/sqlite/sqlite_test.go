package sqlite

import (
	"errors"
	"testing"

	"github.com/aanand-mishra/applicants/internal/storage"
	"github.com/aanand-mishra/applicants/internal/types"
)

// setupTestDB opens an in-memory database with the students table.
func setupTestDB(t *testing.T) *SQLite {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var _ storage.Storage = (*SQLite)(nil)

func TestCreateAndGetStudent(t *testing.T) {
	db := setupTestDB(t)

	in := types.Student{
		Name:    "Amy",
		Contact: "0700 000 001",
		Email:   "amy@example.com",
		Course:  "CS",
		Fee:     500.5,
		Image:   "https://example.com/amy.png",
	}

	id, err := db.CreateStudent(in)
	if err != nil {
		t.Fatalf("CreateStudent() error = %v", err)
	}
	if id <= 0 {
		t.Fatalf("CreateStudent() id = %d, want > 0", id)
	}

	got, err := db.GetStudentByID(id)
	if err != nil {
		t.Fatalf("GetStudentByID() error = %v", err)
	}

	in.ID = id
	if got != in {
		t.Errorf("GetStudentByID() = %+v, want %+v", got, in)
	}
}

func TestGetStudentByID_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetStudentByID(42)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetStudentByID() error = %v, want ErrNotFound", err)
	}
}

func TestGetStudents_InsertionOrder(t *testing.T) {
	db := setupTestDB(t)

	students, err := db.GetStudents()
	if err != nil {
		t.Fatalf("GetStudents() error = %v", err)
	}
	if students == nil || len(students) != 0 {
		t.Fatalf("GetStudents() on empty table = %#v, want empty non-nil slice", students)
	}

	names := []string{"Bo", "Amy", "Cy"}
	for _, name := range names {
		if _, err := db.CreateStudent(types.Student{Name: name, Course: "Math"}); err != nil {
			t.Fatalf("CreateStudent(%s) error = %v", name, err)
		}
	}

	students, err = db.GetStudents()
	if err != nil {
		t.Fatalf("GetStudents() error = %v", err)
	}
	if len(students) != len(names) {
		t.Fatalf("GetStudents() returned %d rows, want %d", len(students), len(names))
	}
	for i, name := range names {
		if students[i].Name != name {
			t.Errorf("students[%d].Name = %q, want %q", i, students[i].Name, name)
		}
	}
}

func TestUpdateStudentByID(t *testing.T) {
	db := setupTestDB(t)

	id, err := db.CreateStudent(types.Student{Name: "Amy", Course: "CS", Fee: 500})
	if err != nil {
		t.Fatalf("CreateStudent() error = %v", err)
	}

	updated, err := db.UpdateStudentByID(id, types.Student{Name: "Amy B", Course: "Physics", Fee: 650})
	if err != nil {
		t.Fatalf("UpdateStudentByID() error = %v", err)
	}
	if updated.ID != id || updated.Name != "Amy B" || updated.Course != "Physics" || updated.Fee != 650 {
		t.Errorf("UpdateStudentByID() = %+v", updated)
	}

	// Same values again still counts as a matched row.
	if _, err := db.UpdateStudentByID(id, updated); err != nil {
		t.Errorf("UpdateStudentByID() with unchanged values error = %v", err)
	}

	if _, err := db.UpdateStudentByID(id+100, updated); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateStudentByID() unknown id error = %v, want ErrNotFound", err)
	}
}

func TestDeleteStudentByID(t *testing.T) {
	db := setupTestDB(t)

	id, err := db.CreateStudent(types.Student{Name: "Amy", Course: "CS"})
	if err != nil {
		t.Fatalf("CreateStudent() error = %v", err)
	}

	if err := db.DeleteStudentByID(id); err != nil {
		t.Fatalf("DeleteStudentByID() error = %v", err)
	}
	if _, err := db.GetStudentByID(id); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetStudentByID() after delete error = %v, want ErrNotFound", err)
	}
	if err := db.DeleteStudentByID(id); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteStudentByID() error = %v, want ErrNotFound", err)
	}
}
