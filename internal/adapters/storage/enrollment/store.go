package enrollment

import (
	"context"

	domain "traindesk/internal/domain/enrollment"
)

// Store persists enrollments. SaveWithSeat couples the enrollment write to
// the owning course's seat counter so approval decisions and seat state
// cannot drift apart.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Enrollment, error)
	GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (domain.Enrollment, error)
	Save(ctx context.Context, value domain.Enrollment) error
	SaveWithSeat(ctx context.Context, value domain.Enrollment, seatDelta int) error
	List(ctx context.Context, filter ListFilter) ([]domain.Enrollment, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit             int
	Offset            int
	CourseID          string
	StudentID         string
	EligibilityStatus string
	ApprovalStatus    string
	SBU               string // filters through the student table
	EligibleOnly      bool   // shortcut for the approval work queue
}
