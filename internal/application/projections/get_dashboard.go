package projections

import (
	"context"
	"time"

	storageEnrollment "traindesk/internal/adapters/storage/enrollment"
	storageMentor "traindesk/internal/adapters/storage/mentor"
	storageStudent "traindesk/internal/adapters/storage/student"
	"traindesk/internal/domain/course"
	"traindesk/internal/domain/enrollment"
)

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	CourseStore     CourseStore
	EnrollmentStore EnrollmentStore
	StudentStore    StudentStore
	MentorStore     MentorStore
	Now             func() time.Time
}

// DashboardResult is the admin landing page summary.
type DashboardResult struct {
	PlanningCourses   int     `json:"planning_courses"`
	OngoingCourses    int     `json:"ongoing_courses"`
	CompletedCourses  int     `json:"completed_courses"`
	SeatsFilled       int     `json:"seats_filled"`
	SeatsAvailable    int     `json:"seats_available"`
	PendingApprovals  int     `json:"pending_approvals"`
	TotalStudents     int     `json:"total_students"`
	TotalMentors      int     `json:"total_mentors"`
	TotalTrainingCost float64 `json:"total_training_cost"`
}

// QueryDashboard aggregates counts across the whole system. Costs sum the
// effective figures, so staged draft costs on planning courses are included.
func QueryDashboard(ctx context.Context, deps GetDashboardDeps) (DashboardResult, error) {
	now := deps.Now()
	var result DashboardResult

	courses, err := deps.CourseStore.ListAll(ctx)
	if err != nil {
		return DashboardResult{}, err
	}
	for _, c := range courses {
		switch c.Resolve(now) {
		case course.BucketPlanning:
			result.PlanningCourses++
		case course.BucketOngoing:
			result.OngoingCourses++
			result.SeatsFilled += c.CurrentEnrolled
			result.SeatsAvailable += c.SeatLimit - c.CurrentEnrolled
		case course.BucketCompleted:
			result.CompletedCourses++
		}
	}

	// ListAll returns bare rows; load the full aggregate per course so draft
	// costs and mentor payments are part of the total.
	for _, c := range courses {
		full, err := deps.CourseStore.GetByID(ctx, c.ID)
		if err != nil {
			continue
		}
		result.TotalTrainingCost += full.TotalTrainingCost()
	}

	pending, err := deps.EnrollmentStore.Count(ctx, storageEnrollment.ListFilter{
		ApprovalStatus: enrollment.ApprovalPending,
		EligibleOnly:   true,
	})
	if err == nil {
		result.PendingApprovals = pending
	}
	if n, err := deps.StudentStore.Count(ctx, storageStudent.ListFilter{}); err == nil {
		result.TotalStudents = n
	}
	if n, err := deps.MentorStore.Count(ctx, storageMentor.ListFilter{}); err == nil {
		result.TotalMentors = n
	}

	return result, nil
}
