package mentor

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyName         = errors.New("mentor name cannot be empty")
	ErrInvalidEmail      = errors.New("mentor email must be valid")
	ErrMissingStudentID  = errors.New("internal mentors must reference an employee record")
	ErrUnexpectedStudent = errors.New("external mentors cannot reference an employee record")
	ErrNotFound          = errors.New("mentor not found")
)

// Mentor is an internal (employee) or external instructor assignable to a
// course. Referenced by ID from course mentor assignments; never embedded.
type Mentor struct {
	ID          string
	Name        string
	Email       string
	IsInternal  bool
	StudentID   string // set iff internal
	SBU         string
	Designation string
}

// Validate checks if the Mentor has valid data.
// PRE: Mentor struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: StudentID is set exactly when IsInternal is true
func (m *Mentor) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if !strings.Contains(m.Email, "@") {
		return ErrInvalidEmail
	}
	if m.IsInternal && m.StudentID == "" {
		return ErrMissingStudentID
	}
	if !m.IsInternal && m.StudentID != "" {
		return ErrUnexpectedStudent
	}
	return nil
}
