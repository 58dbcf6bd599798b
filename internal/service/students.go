// Package service implements the application services behind the HTTP
// handlers: enrollment, fees, team/batch settings, dashboard aggregates and
// sync control. Services own id assignment and logging; the state store owns
// the data.
package service

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/coacherp/coacherp/internal/importer"
	"github.com/coacherp/coacherp/internal/models"
	"github.com/coacherp/coacherp/internal/state"
)

// StudentService manages enrollment and student records.
type StudentService struct {
	store *state.Store
}

// NewStudentService creates a StudentService over the given store.
func NewStudentService(store *state.Store) *StudentService {
	return &StudentService{store: store}
}

// EnrollInput is the manual-entry enrollment form.
type EnrollInput struct {
	Name           string
	GuardianName   string
	Contact        string
	Email          string
	Batch          string
	EnrollmentDate time.Time // zero means today
	TotalFees      float64
	Discount       float64
}

// List returns all students in insertion order.
func (s *StudentService) List() []models.Student {
	return s.store.Students()
}

// Get returns one student by id.
func (s *StudentService) Get(id string) (models.Student, error) {
	st, ok := s.store.Student(id)
	if !ok {
		return models.Student{}, fmt.Errorf("%w: %s", state.ErrStudentNotFound, id)
	}
	return st, nil
}

// Select marks a student as open in the detail view.
func (s *StudentService) Select(id string) error {
	return s.store.Select(id)
}

// Selected returns the student open in the detail view, if any.
func (s *StudentService) Selected() (models.Student, bool) {
	return s.store.Selected()
}

// Enroll creates a new active student with the next sequential id.
func (s *StudentService) Enroll(in EnrollInput) (models.Student, error) {
	enrolled := in.EnrollmentDate
	if enrolled.IsZero() {
		enrolled = time.Now()
	}
	st := models.Student{
		ID:             models.NewStudentID(time.Now().Year(), s.store.StudentCount()+1),
		Name:           in.Name,
		GuardianName:   in.GuardianName,
		Contact:        in.Contact,
		Email:          in.Email,
		Batch:          in.Batch,
		EnrollmentDate: enrolled,
		Status:         models.StudentActive,
		TotalFees:      in.TotalFees,
		Discount:       in.Discount,
		Payments:       []models.Payment{},
	}
	if err := s.store.AddStudent(st); err != nil {
		slog.Error("Enroll failed", "student_id", st.ID, "error", err)
		return models.Student{}, err
	}
	slog.Info("Student enrolled", "student_id", st.ID, "batch", st.Batch)
	return st, nil
}

// Update replaces an existing student record (status changes, contact edits).
// Payments are append-only and must go through the fee service.
func (s *StudentService) Update(st models.Student) error {
	existing, ok := s.store.Student(st.ID)
	if !ok {
		return fmt.Errorf("%w: %s", state.ErrStudentNotFound, st.ID)
	}
	st.Payments = existing.Payments
	if err := s.store.UpdateStudent(st); err != nil {
		slog.Error("Update student failed", "student_id", st.ID, "error", err)
		return err
	}
	slog.Info("Student updated", "student_id", st.ID, "status", st.Status)
	return nil
}

// Import bulk-enrolls students from an .xlsx spreadsheet and returns how
// many were added. Either the whole sheet enrolls or none of it does.
func (s *StudentService) Import(r io.Reader) (int, error) {
	records, err := importer.Students(r)
	if err != nil {
		slog.Error("Student import failed", "error", err)
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	now := time.Now()
	year := now.Year()
	base := s.store.StudentCount()
	students := make([]models.Student, len(records))
	for i, rec := range records {
		students[i] = models.Student{
			ID:             models.NewStudentID(year, base+1+i),
			Name:           rec.Name,
			GuardianName:   rec.GuardianName,
			Contact:        rec.Contact,
			Email:          rec.Email,
			Batch:          rec.Batch,
			EnrollmentDate: now,
			Status:         models.StudentActive,
			TotalFees:      rec.TotalFees,
			Discount:       rec.Discount,
			Payments:       []models.Payment{},
		}
	}
	if err := s.store.AddStudents(students); err != nil {
		slog.Error("Student import failed", "count", len(students), "error", err)
		return 0, err
	}
	slog.Info("Students imported", "count", len(students))
	return len(students), nil
}
