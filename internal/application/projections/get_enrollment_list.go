package projections

import (
	"context"
	"time"

	storageEnrollment "traindesk/internal/adapters/storage/enrollment"
	"traindesk/internal/application/listutil"
	"traindesk/internal/domain/enrollment"
)

// EnrollmentView is one enrollment row with the student identity resolved.
type EnrollmentView struct {
	ID                string     `json:"id"`
	StudentID         string     `json:"student_id"`
	StudentName       string     `json:"student_name"`
	EmployeeID        string     `json:"employee_id"`
	SBU               string     `json:"sbu"`
	CourseID          string     `json:"course_id,omitempty"`
	CourseName        string     `json:"course_name"`
	BatchCode         string     `json:"batch_code"`
	EligibilityStatus string     `json:"eligibility_status"`
	EligibilityReason string     `json:"eligibility_reason,omitempty"`
	ApprovalStatus    string     `json:"approval_status"`
	CompletionStatus  string     `json:"completion_status"`
	RejectionReason   string     `json:"rejection_reason,omitempty"`
	WithdrawalReason  string     `json:"withdrawal_reason,omitempty"`
	Score             *float64   `json:"score,omitempty"`
	ClassesAttended   int        `json:"classes_attended"`
	TotalClasses      int        `json:"total_classes"`
	ApprovedBy        string     `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// GetEnrollmentListQuery carries input for the paged enrollment list.
type GetEnrollmentListQuery struct {
	Params       listutil.ListParams
	EligibleOnly bool // approval work queue shortcut
}

// GetEnrollmentListDeps holds dependencies for the enrollment list projection.
type GetEnrollmentListDeps struct {
	EnrollmentStore EnrollmentStore
	StudentStore    StudentStore
}

// EnrollmentListResult is one page of enrollments with pagination metadata.
type EnrollmentListResult struct {
	Enrollments []EnrollmentView  `json:"enrollments"`
	PageInfo    listutil.PageInfo `json:"page_info"`
}

// QueryEnrollmentList returns a filtered, paged enrollment list with student
// identities resolved. Enrollments whose course was deleted keep showing the
// denormalized course name and batch code.
func QueryEnrollmentList(ctx context.Context, query GetEnrollmentListQuery, deps GetEnrollmentListDeps) (EnrollmentListResult, error) {
	filter := storageEnrollment.ListFilter{
		CourseID:          query.Params.Filters["course_id"],
		StudentID:         query.Params.Filters["student_id"],
		EligibilityStatus: query.Params.Filters["eligibility_status"],
		ApprovalStatus:    query.Params.Filters["approval_status"],
		SBU:               query.Params.Filters["sbu"],
		EligibleOnly:      query.EligibleOnly,
	}

	total, err := deps.EnrollmentStore.Count(ctx, filter)
	if err != nil {
		return EnrollmentListResult{}, err
	}
	pageInfo := listutil.NewPageInfo(query.Params.Page, query.Params.PerPage, total)
	filter.Limit = pageInfo.PerPage
	filter.Offset = pageInfo.Offset()

	enrollments, err := deps.EnrollmentStore.List(ctx, filter)
	if err != nil {
		return EnrollmentListResult{}, err
	}

	result := EnrollmentListResult{PageInfo: pageInfo, Enrollments: make([]EnrollmentView, 0, len(enrollments))}
	for _, e := range enrollments {
		result.Enrollments = append(result.Enrollments, resolveEnrollment(ctx, deps.StudentStore, e))
	}
	return result, nil
}

func resolveEnrollment(ctx context.Context, students StudentStore, e enrollment.Enrollment) EnrollmentView {
	view := EnrollmentView{
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
	}
	if !e.ApprovedAt.IsZero() {
		at := e.ApprovedAt
		view.ApprovedAt = &at
	}
	if s, err := students.GetByID(ctx, e.StudentID); err == nil {
		view.StudentName = s.Name
		view.EmployeeID = s.EmployeeID
		view.SBU = s.SBU
	}
	return view
}
