package student

import (
	"errors"
	"strings"
)

// SBU (strategic business unit) values an employee can belong to.
const (
	SBUIT         = "IT"
	SBUHR         = "HR"
	SBUFinance    = "Finance"
	SBUOperations = "Operations"
	SBUSales      = "Sales"
	SBUMarketing  = "Marketing"
	SBUOther      = "Other"
)

// Domain errors
var (
	ErrEmptyEmployeeID = errors.New("employee ID cannot be empty")
	ErrEmptyName       = errors.New("student name cannot be empty")
	ErrInvalidEmail    = errors.New("student email must be valid")
	ErrInvalidSBU      = errors.New("unknown SBU")
	ErrNotFound        = errors.New("student not found")
	ErrDuplicateID     = errors.New("a student with this employee ID already exists")
)

// Student is an employee who can be enrolled in training courses.
type Student struct {
	ID              string
	EmployeeID      string
	Name            string
	Email           string
	SBU             string
	Designation     string
	ExperienceYears int
}

// Validate checks if the Student has valid data.
// PRE: Student struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Student) Validate() error {
	if strings.TrimSpace(s.EmployeeID) == "" {
		return ErrEmptyEmployeeID
	}
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if !strings.Contains(s.Email, "@") {
		return ErrInvalidEmail
	}
	if !IsValidSBU(s.SBU) {
		return ErrInvalidSBU
	}
	if s.ExperienceYears < 0 {
		return errors.New("experience years cannot be negative")
	}
	return nil
}

// IsValidSBU reports whether s is a known business unit.
func IsValidSBU(s string) bool {
	switch s {
	case SBUIT, SBUHR, SBUFinance, SBUOperations, SBUSales, SBUMarketing, SBUOther:
		return true
	}
	return false
}
