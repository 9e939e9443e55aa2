package web

import (
	"time"

	"traindesk/internal/domain/enrollment"
	"traindesk/internal/domain/mentor"
	"traindesk/internal/domain/student"
)

// enrollmentJSON is the wire shape of one enrollment record.
type enrollmentJSON struct {
	ID                string     `json:"id"`
	StudentID         string     `json:"student_id"`
	CourseID          string     `json:"course_id"`
	CourseName        string     `json:"course_name"`
	BatchCode         string     `json:"batch_code"`
	EligibilityStatus string     `json:"eligibility_status"`
	EligibilityReason string     `json:"eligibility_reason,omitempty"`
	ApprovalStatus    string     `json:"approval_status"`
	CompletionStatus  string     `json:"completion_status"`
	RejectionReason   string     `json:"rejection_reason,omitempty"`
	WithdrawalReason  string     `json:"withdrawal_reason,omitempty"`
	Score             *float64   `json:"score"`
	ClassesAttended   int        `json:"classes_attended"`
	TotalClasses      int        `json:"total_classes"`
	ApprovedBy        string     `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func newEnrollmentJSON(e enrollment.Enrollment) enrollmentJSON {
	v := enrollmentJSON{
		ID:                e.ID,
		StudentID:         e.StudentID,
		CourseID:          e.CourseID,
		CourseName:        e.CourseName,
		BatchCode:         e.BatchCode,
		EligibilityStatus: e.EligibilityStatus,
		EligibilityReason: e.EligibilityReason,
		ApprovalStatus:    e.ApprovalStatus,
		CompletionStatus:  e.CompletionStatus,
		RejectionReason:   e.RejectionReason,
		WithdrawalReason:  e.WithdrawalReason,
		Score:             e.Score,
		ClassesAttended:   e.ClassesAttended,
		TotalClasses:      e.TotalClasses,
		ApprovedBy:        e.ApprovedBy,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
	if !e.ApprovedAt.IsZero() {
		t := e.ApprovedAt
		v.ApprovedAt = &t
	}
	return v
}

// studentJSON is the wire shape of one employee record.
type studentJSON struct {
	ID              string `json:"id"`
	EmployeeID      string `json:"employee_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	SBU             string `json:"sbu"`
	Designation     string `json:"designation,omitempty"`
	ExperienceYears int    `json:"experience_years"`
}

func newStudentJSON(s student.Student) studentJSON {
	return studentJSON{
		ID:              s.ID,
		EmployeeID:      s.EmployeeID,
		Name:            s.Name,
		Email:           s.Email,
		SBU:             s.SBU,
		Designation:     s.Designation,
		ExperienceYears: s.ExperienceYears,
	}
}

// mentorJSON is the wire shape of one mentor record.
type mentorJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	IsInternal  bool   `json:"is_internal"`
	StudentID   string `json:"student_id,omitempty"`
	SBU         string `json:"sbu,omitempty"`
	Designation string `json:"designation,omitempty"`
}

func newMentorJSON(m mentor.Mentor) mentorJSON {
	return mentorJSON{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		IsInternal:  m.IsInternal,
		StudentID:   m.StudentID,
		SBU:         m.SBU,
		Designation: m.Designation,
	}
}
