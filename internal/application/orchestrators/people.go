package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"traindesk/internal/domain/mentor"
	"traindesk/internal/domain/student"
)

// StudentStore defines the student store interface for the people orchestrators.
type StudentStore interface {
	GetByID(ctx context.Context, id string) (student.Student, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (student.Student, error)
	Save(ctx context.Context, s student.Student) error
}

// MentorStore defines the mentor store interface for the people orchestrators.
type MentorStore interface {
	GetByID(ctx context.Context, id string) (mentor.Mentor, error)
	Save(ctx context.Context, m mentor.Mentor) error
}

// CreateStudentInput carries input for registering an employee.
type CreateStudentInput struct {
	EmployeeID      string
	Name            string
	Email           string
	SBU             string
	Designation     string
	ExperienceYears int
}

// CreateStudentDeps holds dependencies for CreateStudent.
type CreateStudentDeps struct {
	StudentStore StudentStore
	GenerateID   func() string
}

// ExecuteCreateStudent registers an employee who can be enrolled in courses.
// PRE: employee ID is not already registered
// POST: student persisted; ErrDuplicateID on employee ID clash
func ExecuteCreateStudent(ctx context.Context, input CreateStudentInput, deps CreateStudentDeps) (student.Student, error) {
	s := student.Student{
		ID:              deps.GenerateID(),
		EmployeeID:      input.EmployeeID,
		Name:            input.Name,
		Email:           input.Email,
		SBU:             input.SBU,
		Designation:     input.Designation,
		ExperienceYears: input.ExperienceYears,
	}
	if err := s.Validate(); err != nil {
		return student.Student{}, err
	}

	if _, err := deps.StudentStore.GetByEmployeeID(ctx, input.EmployeeID); err == nil {
		return student.Student{}, student.ErrDuplicateID
	} else if !errors.Is(err, student.ErrNotFound) {
		return student.Student{}, err
	}

	if err := deps.StudentStore.Save(ctx, s); err != nil {
		return student.Student{}, err
	}

	slog.Info("student_event", "event", "student_created", "student_id", s.ID, "employee_id", s.EmployeeID, "sbu", s.SBU)
	return s, nil
}

// CreateMentorInput carries input for registering a mentor.
type CreateMentorInput struct {
	Name        string
	Email       string
	IsInternal  bool
	StudentID   string // required iff internal
	SBU         string
	Designation string
}

// CreateMentorDeps holds dependencies for CreateMentor.
type CreateMentorDeps struct {
	MentorStore  MentorStore
	StudentStore StudentLookup
	GenerateID   func() string
}

// ExecuteCreateMentor registers an internal or external instructor. Internal
// mentors must reference an existing employee record.
// POST: mentor persisted
func ExecuteCreateMentor(ctx context.Context, input CreateMentorInput, deps CreateMentorDeps) (mentor.Mentor, error) {
	m := mentor.Mentor{
		ID:          deps.GenerateID(),
		Name:        input.Name,
		Email:       input.Email,
		IsInternal:  input.IsInternal,
		StudentID:   input.StudentID,
		SBU:         input.SBU,
		Designation: input.Designation,
	}
	if err := m.Validate(); err != nil {
		return mentor.Mentor{}, err
	}
	if m.IsInternal {
		if _, err := deps.StudentStore.GetByID(ctx, m.StudentID); err != nil {
			return mentor.Mentor{}, err
		}
	}

	if err := deps.MentorStore.Save(ctx, m); err != nil {
		return mentor.Mentor{}, err
	}

	slog.Info("mentor_event", "event", "mentor_created", "mentor_id", m.ID, "internal", m.IsInternal)
	return m, nil
}
