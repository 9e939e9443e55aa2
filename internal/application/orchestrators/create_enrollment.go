package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"traindesk/internal/domain/enrollment"
)

// EnrollmentStore defines enrollment persistence. SaveWithSeat persists the
// enrollment and moves the owning course's seat counter by seatDelta in one
// transaction; a +1 delta fails with course.ErrSeatLimitExceeded when the
// course is full.
type EnrollmentStore interface {
	GetByID(ctx context.Context, id string) (enrollment.Enrollment, error)
	GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (enrollment.Enrollment, error)
	Save(ctx context.Context, e enrollment.Enrollment) error
	SaveWithSeat(ctx context.Context, e enrollment.Enrollment, seatDelta int) error
}

// CreateEnrollmentInput carries input for enrollment creation. The
// eligibility verdict is computed upstream and recorded verbatim.
type CreateEnrollmentInput struct {
	StudentID         string
	CourseID          string
	EligibilityStatus string
	EligibilityReason string
}

// CreateEnrollmentDeps holds dependencies for CreateEnrollment.
type CreateEnrollmentDeps struct {
	EnrollmentStore EnrollmentStore
	CourseStore     CourseStore
	StudentStore    StudentLookup
	GenerateID      func() string
	Now             func() time.Time
}

// ExecuteCreateEnrollment creates a pending enrollment for a student.
// PRE: student and course exist; student not already enrolled in the course
// POST: Pending enrollment persisted with the denormalized course identity
func ExecuteCreateEnrollment(ctx context.Context, input CreateEnrollmentInput, deps CreateEnrollmentDeps) (enrollment.Enrollment, error) {
	if _, err := deps.StudentStore.GetByID(ctx, input.StudentID); err != nil {
		return enrollment.Enrollment{}, err
	}
	c, err := deps.CourseStore.GetByID(ctx, input.CourseID)
	if err != nil {
		return enrollment.Enrollment{}, err
	}

	if _, err := deps.EnrollmentStore.GetByStudentAndCourse(ctx, input.StudentID, input.CourseID); err == nil {
		return enrollment.Enrollment{}, enrollment.ErrDuplicate
	} else if !errors.Is(err, enrollment.ErrNotFound) {
		return enrollment.Enrollment{}, err
	}

	now := deps.Now()
	e := enrollment.Enrollment{
		ID:                deps.GenerateID(),
		StudentID:         input.StudentID,
		CourseID:          c.ID,
		CourseName:        c.Name,
		BatchCode:         c.BatchCode,
		EligibilityStatus: input.EligibilityStatus,
		EligibilityReason: input.EligibilityReason,
		ApprovalStatus:    enrollment.ApprovalPending,
		CompletionStatus:  enrollment.CompletionInProgress,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	// An unknown class count stays zero on the enrollment until the course
	// publishes one.
	if c.TotalClassesOffered != nil {
		e.TotalClasses = *c.TotalClassesOffered
	}
	if err := e.Validate(); err != nil {
		return enrollment.Enrollment{}, err
	}

	if err := deps.EnrollmentStore.Save(ctx, e); err != nil {
		return enrollment.Enrollment{}, err
	}

	slog.Info("enrollment_event", "event", "enrollment_created", "enrollment_id", e.ID, "student_id", e.StudentID, "course_id", e.CourseID, "eligibility", e.EligibilityStatus)
	return e, nil
}
