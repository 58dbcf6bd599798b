// Package state holds the entire in-memory application state: students,
// team members, batches and the profile picture. There is no local database;
// this store is the single writer surface, and the sync engine persists its
// snapshots to the remote document.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/coacherp/coacherp/internal/models"
)

var (
	ErrStudentExists   = errors.New("student id already exists")
	ErrStudentNotFound = errors.New("student not found")
)

// Store is the mutable application state. All operations are synchronous;
// collections preserve insertion order. Mutations fire the change hook so
// the sync engine can schedule a push.
type Store struct {
	mu             sync.RWMutex
	students       []models.Student
	teamMembers    []models.TeamMember
	batches        []string
	profilePicture string

	// selectedID tracks the student currently open in the detail view, so
	// payment appends can refresh the selection to the updated record.
	selectedID string

	onChange func()
}

// New returns an empty store.
func New() *Store {
	return &Store{
		students:    []models.Student{},
		teamMembers: []models.TeamMember{},
		batches:     []string{},
	}
}

// SetOnChange registers the hook fired after every local mutation.
// Hydration does not count as a local mutation and never fires it.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// AddStudent appends a new student. The id must be unique within the set.
func (s *Store) AddStudent(st models.Student) error {
	s.mu.Lock()
	if s.indexOfStudent(st.ID) >= 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrStudentExists, st.ID)
	}
	s.students = append(s.students, st.Clone())
	s.mu.Unlock()
	s.notify()
	return nil
}

// AddStudents appends a batch of students (bulk import). The whole batch is
// rejected if any id collides with an existing or in-batch one.
func (s *Store) AddStudents(list []models.Student) error {
	s.mu.Lock()
	seen := make(map[string]bool, len(list))
	for _, st := range list {
		if s.indexOfStudent(st.ID) >= 0 || seen[st.ID] {
			s.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrStudentExists, st.ID)
		}
		seen[st.ID] = true
	}
	for _, st := range list {
		s.students = append(s.students, st.Clone())
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// UpdateStudent replaces the student with the same id. If that student is
// currently selected, the selection follows the updated record.
func (s *Store) UpdateStudent(st models.Student) error {
	s.mu.Lock()
	i := s.indexOfStudent(st.ID)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrStudentNotFound, st.ID)
	}
	s.students[i] = st.Clone()
	s.mu.Unlock()
	s.notify()
	return nil
}

// AddPayment appends a payment to the owning student's list and returns the
// updated student.
func (s *Store) AddPayment(studentID string, p models.Payment) (models.Student, error) {
	return s.AddPayments(studentID, []models.Payment{p})
}

// AddPayments appends a batch of payments to the owning student's list,
// preserving order, and returns the updated student.
func (s *Store) AddPayments(studentID string, ps []models.Payment) (models.Student, error) {
	s.mu.Lock()
	i := s.indexOfStudent(studentID)
	if i < 0 {
		s.mu.Unlock()
		return models.Student{}, fmt.Errorf("%w: %s", ErrStudentNotFound, studentID)
	}
	s.students[i].Payments = append(s.students[i].Payments, ps...)
	updated := s.students[i].Clone()
	s.mu.Unlock()
	s.notify()
	return updated, nil
}

// Student returns a copy of the student with the given id.
func (s *Store) Student(id string) (models.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOfStudent(id); i >= 0 {
		return s.students[i].Clone(), true
	}
	return models.Student{}, false
}

// Students returns a copy of all students in insertion order.
func (s *Store) Students() []models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Student, len(s.students))
	for i, st := range s.students {
		out[i] = st.Clone()
	}
	return out
}

// StudentCount returns the number of students, used for id sequencing.
func (s *Store) StudentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.students)
}

// Select marks a student as open in the detail view.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOfStudent(id) < 0 {
		return fmt.Errorf("%w: %s", ErrStudentNotFound, id)
	}
	s.selectedID = id
	return nil
}

// Selected returns the currently selected student, reflecting any payments
// appended since selection.
func (s *Store) Selected() (models.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedID == "" {
		return models.Student{}, false
	}
	if i := s.indexOfStudent(s.selectedID); i >= 0 {
		return s.students[i].Clone(), true
	}
	return models.Student{}, false
}

// AddTeamMember appends a team member.
func (s *Store) AddTeamMember(tm models.TeamMember) {
	s.mu.Lock()
	s.teamMembers = append(s.teamMembers, tm)
	s.mu.Unlock()
	s.notify()
}

// RemoveTeamMember removes the member with the given id; unknown ids are a
// no-op.
func (s *Store) RemoveTeamMember(id string) {
	s.mu.Lock()
	kept := s.teamMembers[:0]
	for _, tm := range s.teamMembers {
		if tm.ID != id {
			kept = append(kept, tm)
		}
	}
	s.teamMembers = kept
	s.mu.Unlock()
	s.notify()
}

// TeamMembers returns a copy of the team list.
func (s *Store) TeamMembers() []models.TeamMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TeamMember, len(s.teamMembers))
	copy(out, s.teamMembers)
	return out
}

// AddBatch appends a batch name unless it is empty or already present.
// Reports whether the batch was added.
func (s *Store) AddBatch(name string) bool {
	if name == "" {
		return false
	}
	s.mu.Lock()
	for _, b := range s.batches {
		if b == name {
			s.mu.Unlock()
			return false
		}
	}
	s.batches = append(s.batches, name)
	s.mu.Unlock()
	s.notify()
	return true
}

// RemoveBatch removes a batch name. Students referencing it keep their label;
// batch removal never cascades.
func (s *Store) RemoveBatch(name string) {
	s.mu.Lock()
	kept := s.batches[:0]
	for _, b := range s.batches {
		if b != name {
			kept = append(kept, b)
		}
	}
	s.batches = kept
	s.mu.Unlock()
	s.notify()
}

// Batches returns a copy of the batch list.
func (s *Store) Batches() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.batches))
	copy(out, s.batches)
	return out
}

// SetProfilePicture replaces the institute profile image (encoded blob or URL).
func (s *Store) SetProfilePicture(pic string) {
	s.mu.Lock()
	s.profilePicture = pic
	s.mu.Unlock()
	s.notify()
}

// ProfilePicture returns the current profile image.
func (s *Store) ProfilePicture() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profilePicture
}

// Snapshot returns a deep copy of the full persisted surface. Slices are
// always non-nil so the serialized document carries every top-level key.
func (s *Store) Snapshot() models.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := models.AppState{
		Students:       s.students,
		TeamMembers:    s.teamMembers,
		Batches:        s.batches,
		ProfilePicture: s.profilePicture,
	}
	return snap.Clone()
}

// Hydrate replaces local state wholesale from a decoded remote document.
// A nil field means the key was absent remotely and the local collection is
// left untouched; an empty profile picture likewise stands. Hydration is not
// a local mutation and does not fire the change hook.
func (s *Store) Hydrate(doc models.AppState) {
	doc = doc.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.Students != nil {
		s.students = doc.Students
	}
	if doc.TeamMembers != nil {
		s.teamMembers = doc.TeamMembers
	}
	if doc.Batches != nil {
		s.batches = doc.Batches
	}
	if doc.ProfilePicture != "" {
		s.profilePicture = doc.ProfilePicture
	}
}

// indexOfStudent must be called with the lock held.
func (s *Store) indexOfStudent(id string) int {
	for i, st := range s.students {
		if st.ID == id {
			return i
		}
	}
	return -1
}
