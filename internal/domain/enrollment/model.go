package enrollment

import (
	"errors"
	"strings"
	"time"
)

// Eligibility verdicts, computed by an external collaborator and consumed
// here as immutable input.
const (
	EligibilityEligible            = "Eligible"
	EligibilityMissingPrerequisite = "Ineligible (Missing Prerequisite)"
	EligibilityAlreadyTaken        = "Ineligible (Already Taken)"
	EligibilityAnnualLimit         = "Ineligible (Annual Limit)"
)

// Approval statuses
const (
	ApprovalPending   = "Pending"
	ApprovalApproved  = "Approved"
	ApprovalRejected  = "Rejected"
	ApprovalWithdrawn = "Withdrawn"
)

// Completion statuses, set by an external grading collaborator.
const (
	CompletionInProgress = "In Progress"
	CompletionCompleted  = "Completed"
	CompletionFailed     = "Failed"
)

// Domain errors
var (
	ErrEmptyStudentID          = errors.New("student ID is required")
	ErrEmptyCourseID           = errors.New("course ID is required")
	ErrInvalidEligibility      = errors.New("unknown eligibility status")
	ErrInvalidApprovalStatus   = errors.New("approval status must be one of: Pending, Approved, Rejected, Withdrawn")
	ErrInvalidCompletionStatus = errors.New("completion status must be one of: In Progress, Completed, Failed")
	ErrInvalidTransition       = errors.New("illegal approval status transition")
	ErrNotEligible             = errors.New("enrollment is not eligible for approval")
	ErrEmptyWithdrawalReason   = errors.New("withdrawal reason cannot be empty")
	ErrEmptyActor              = errors.New("acting user is required")
	ErrScoreOutOfRange         = errors.New("score must be between 0 and 100")
	ErrDuplicate               = errors.New("student is already enrolled in this course")
	ErrNotFound                = errors.New("enrollment not found")
)

// Enrollment links a student to a course batch. The approval status is
// mutated only through the transition methods below; the owning course's
// seat counter moves in lockstep with Approved transitions.
type Enrollment struct {
	ID                string
	StudentID         string
	CourseID          string // empty once the course has been deleted
	CourseName        string // denormalized for history preservation
	BatchCode         string
	EligibilityStatus string
	EligibilityReason string
	ApprovalStatus    string
	CompletionStatus  string
	RejectionReason   string
	WithdrawalReason  string
	Score             *float64 // nil until graded
	ClassesAttended   int
	TotalClasses      int
	ApprovedBy        string
	ApprovedAt        time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate checks if the Enrollment has valid data.
// PRE: Enrollment struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Enrollment) Validate() error {
	if e.StudentID == "" {
		return ErrEmptyStudentID
	}
	if e.CourseID == "" && e.CourseName == "" {
		return ErrEmptyCourseID
	}
	if !isValidEligibility(e.EligibilityStatus) {
		return ErrInvalidEligibility
	}
	if !isValidApproval(e.ApprovalStatus) {
		return ErrInvalidApprovalStatus
	}
	if e.CompletionStatus != "" && !isValidCompletion(e.CompletionStatus) {
		return ErrInvalidCompletionStatus
	}
	if e.ApprovalStatus == ApprovalWithdrawn && strings.TrimSpace(e.WithdrawalReason) == "" {
		return ErrEmptyWithdrawalReason
	}
	if e.Score != nil && (*e.Score < 0 || *e.Score > 100) {
		return ErrScoreOutOfRange
	}
	return nil
}

// IsApproved returns true if the enrollment currently occupies a seat.
// INVARIANT: ApprovalStatus field is not mutated
func (e *Enrollment) IsApproved() bool {
	return e.ApprovalStatus == ApprovalApproved
}

// Approve moves a pending, eligible enrollment to Approved. The caller is
// responsible for reserving a seat on the owning course in the same
// transaction.
// PRE: ApprovalStatus == Pending, EligibilityStatus == Eligible
// POST: ApprovalStatus == Approved, ApprovedBy and ApprovedAt set
func (e *Enrollment) Approve(approvedBy string, now time.Time) error {
	if approvedBy == "" {
		return ErrEmptyActor
	}
	if e.ApprovalStatus != ApprovalPending {
		return ErrInvalidTransition
	}
	if e.EligibilityStatus != EligibilityEligible {
		return ErrNotEligible
	}
	e.ApprovalStatus = ApprovalApproved
	e.ApprovedBy = approvedBy
	e.ApprovedAt = now
	e.UpdatedAt = now
	return nil
}

// Reject moves a pending enrollment to Rejected. No seat is involved.
// PRE: ApprovalStatus == Pending
// POST: ApprovalStatus == Rejected, RejectionReason recorded
func (e *Enrollment) Reject(reason, decidedBy string, now time.Time) error {
	if decidedBy == "" {
		return ErrEmptyActor
	}
	if e.ApprovalStatus != ApprovalPending {
		return ErrInvalidTransition
	}
	e.ApprovalStatus = ApprovalRejected
	e.RejectionReason = reason
	e.ApprovedBy = decidedBy
	e.UpdatedAt = now
	return nil
}

// Withdraw moves an approved enrollment to Withdrawn. The caller must
// release the seat on the owning course in the same transaction.
// PRE: ApprovalStatus == Approved, reason non-empty
// POST: ApprovalStatus == Withdrawn, WithdrawalReason recorded
func (e *Enrollment) Withdraw(reason, decidedBy string, now time.Time) error {
	if decidedBy == "" {
		return ErrEmptyActor
	}
	if strings.TrimSpace(reason) == "" {
		return ErrEmptyWithdrawalReason
	}
	if e.ApprovalStatus != ApprovalApproved {
		return ErrInvalidTransition
	}
	e.ApprovalStatus = ApprovalWithdrawn
	e.WithdrawalReason = reason
	e.UpdatedAt = now
	return nil
}

// Reapprove moves a rejected or withdrawn enrollment back to Approved. The
// caller must reserve a seat on the owning course in the same transaction.
// PRE: ApprovalStatus is Rejected or Withdrawn
// POST: ApprovalStatus == Approved, ApprovedBy and ApprovedAt set
func (e *Enrollment) Reapprove(approvedBy string, now time.Time) error {
	if approvedBy == "" {
		return ErrEmptyActor
	}
	if e.ApprovalStatus != ApprovalRejected && e.ApprovalStatus != ApprovalWithdrawn {
		return ErrInvalidTransition
	}
	e.ApprovalStatus = ApprovalApproved
	e.ApprovedBy = approvedBy
	e.ApprovedAt = now
	e.WithdrawalReason = ""
	e.UpdatedAt = now
	return nil
}

func isValidEligibility(s string) bool {
	switch s {
	case EligibilityEligible, EligibilityMissingPrerequisite, EligibilityAlreadyTaken, EligibilityAnnualLimit:
		return true
	}
	return false
}

func isValidApproval(s string) bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected, ApprovalWithdrawn:
		return true
	}
	return false
}

func isValidCompletion(s string) bool {
	switch s {
	case CompletionInProgress, CompletionCompleted, CompletionFailed:
		return true
	}
	return false
}
