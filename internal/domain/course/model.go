package course

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength      = 200
	MaxBatchCodeLength = 50
)

// Explicit status flag values. An empty status means the lifecycle bucket
// is derived from the course dates instead.
const (
	StatusDraft     = "draft"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
)

// Bucket is the derived lifecycle bucket of a course.
type Bucket string

// Lifecycle buckets
const (
	BucketPlanning  Bucket = "planning"
	BucketOngoing   Bucket = "ongoing"
	BucketCompleted Bucket = "completed"
)

// Domain errors
var (
	ErrEmptyName         = errors.New("course name cannot be empty")
	ErrEmptyBatchCode    = errors.New("batch code cannot be empty")
	ErrMissingStartDate  = errors.New("course start date is required")
	ErrInvalidStatus     = errors.New("status must be 'draft', 'ongoing', 'completed', or empty")
	ErrNegativeSeatLimit = errors.New("seat limit cannot be negative")
	ErrNegativeCost      = errors.New("cost cannot be negative")
	ErrNegativeHours     = errors.New("hours taught cannot be negative")
	ErrNegativeAmount    = errors.New("amount paid cannot be negative")
	ErrSeatLimitExceeded = errors.New("course has no available seats")
	ErrCourseNotDraft    = errors.New("course is not in draft status")
	ErrInvalidState      = errors.New("operation not valid for current course status")
	ErrMentorNotAssigned = errors.New("mentor is not assigned to this course")
	ErrNotFound          = errors.New("course not found")
	ErrEmptyActor        = errors.New("acting user is required")
	ErrDuplicateBatch    = errors.New("a course with this name and batch code already exists")
	ErrOverlappingBatch  = errors.New("another batch of this course overlaps the given dates")
)

// MentorAssignment links a mentor to a course with taught hours and payment.
// Owned exclusively by its Course; at most one assignment per mentor.
type MentorAssignment struct {
	ID          string
	MentorID    string
	HoursTaught float64
	AmountPaid  float64
}

// Validate checks if the MentorAssignment has valid data.
// PRE: MentorAssignment struct is populated
// POST: Returns nil if valid, error otherwise
func (a *MentorAssignment) Validate() error {
	if a.MentorID == "" {
		return errors.New("mentor ID is required")
	}
	if a.HoursTaught < 0 {
		return ErrNegativeHours
	}
	if a.AmountPaid < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// Course holds state for one training batch.
type Course struct {
	ID                  string
	Name                string
	BatchCode           string
	Description         string
	Status              string // draft, ongoing, completed, or "" (dates decide)
	StartDate           time.Time
	EndDate             time.Time // zero = open-ended
	SeatLimit           int
	CurrentEnrolled     int
	TotalClassesOffered *int // nil = not yet known
	FoodCost            float64
	OtherCost           float64
	Mentors             []MentorAssignment
	Draft               *Draft // present only while Status == draft
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Validate checks if the Course has valid data.
// PRE: Course struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: CurrentEnrolled never exceeds SeatLimit
func (c *Course) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return errors.New("course name cannot exceed 200 characters")
	}
	if strings.TrimSpace(c.BatchCode) == "" {
		return ErrEmptyBatchCode
	}
	if len(c.BatchCode) > MaxBatchCodeLength {
		return errors.New("batch code cannot exceed 50 characters")
	}
	if c.Status != "" && c.Status != StatusDraft && c.Status != StatusOngoing && c.Status != StatusCompleted {
		return ErrInvalidStatus
	}
	if c.StartDate.IsZero() {
		return ErrMissingStartDate
	}
	if !c.EndDate.IsZero() && c.EndDate.Before(c.StartDate) {
		return errors.New("end date must not be before start date")
	}
	if c.SeatLimit < 0 {
		return ErrNegativeSeatLimit
	}
	if c.CurrentEnrolled < 0 || c.CurrentEnrolled > c.SeatLimit {
		return errors.New("current enrolled must be between 0 and the seat limit")
	}
	if c.TotalClassesOffered != nil && *c.TotalClassesOffered < 0 {
		return errors.New("total classes offered cannot be negative")
	}
	if c.FoodCost < 0 || c.OtherCost < 0 {
		return ErrNegativeCost
	}
	if c.Draft != nil && c.Status != StatusDraft {
		return errors.New("a non-draft course cannot carry a draft")
	}
	return nil
}

// IsDraft returns true if the course is still in the planning stage.
// INVARIANT: Status field is not mutated
func (c *Course) IsDraft() bool {
	return c.Status == StatusDraft
}

// Resolve maps the course to its lifecycle bucket at the given instant.
// The explicit status flag always wins over date logic; with no flag the
// dates decide. Every course resolves to exactly one bucket.
// PRE: now is a valid time
// POST: Returns exactly one of planning, ongoing, completed
// INVARIANT: Course fields are not mutated
func (c *Course) Resolve(now time.Time) Bucket {
	switch c.Status {
	case StatusDraft:
		return BucketPlanning
	case StatusCompleted:
		return BucketCompleted
	case StatusOngoing:
		// An explicit flag is authoritative even past the end date.
		return BucketOngoing
	}
	if !c.EndDate.IsZero() && c.EndDate.Before(now) {
		return BucketCompleted
	}
	if !c.StartDate.After(now) {
		return BucketOngoing
	}
	return BucketPlanning
}

// AssignMentor upserts an official mentor assignment, overwriting any
// pre-existing assignment for the same mentor.
// PRE: assignment has been validated
// POST: Exactly one assignment for assignment.MentorID exists
func (c *Course) AssignMentor(assignment MentorAssignment) {
	for i := range c.Mentors {
		if c.Mentors[i].MentorID == assignment.MentorID {
			if assignment.ID == "" {
				assignment.ID = c.Mentors[i].ID
			}
			c.Mentors[i] = assignment
			return
		}
	}
	c.Mentors = append(c.Mentors, assignment)
}

// RemoveMentor removes the official assignment for the given mentor.
// PRE: mentorID is non-empty
// POST: Returns ErrMentorNotAssigned if no assignment existed
func (c *Course) RemoveMentor(mentorID string) error {
	for i := range c.Mentors {
		if c.Mentors[i].MentorID == mentorID {
			c.Mentors = append(c.Mentors[:i], c.Mentors[i+1:]...)
			return nil
		}
	}
	return ErrMentorNotAssigned
}

// ReserveSeat increments the enrolled counter if a seat is free.
// PRE: Course struct is initialized
// POST: CurrentEnrolled incremented, or ErrSeatLimitExceeded and no change
func (c *Course) ReserveSeat() error {
	if c.CurrentEnrolled >= c.SeatLimit {
		return ErrSeatLimitExceeded
	}
	c.CurrentEnrolled++
	return nil
}

// ReleaseSeat decrements the enrolled counter.
// POST: CurrentEnrolled decremented, never below zero
func (c *Course) ReleaseSeat() {
	if c.CurrentEnrolled > 0 {
		c.CurrentEnrolled--
	}
}

// TotalMentorCost sums amount paid over the effective mentor list. While the
// course is in draft status with a draft present, the draft assignments fully
// supersede the official ones; they are never merged for display.
// INVARIANT: Course fields are not mutated
func (c *Course) TotalMentorCost() float64 {
	var total float64
	if c.IsDraft() && c.Draft != nil {
		for _, a := range c.Draft.MentorAssignments {
			total += a.AmountPaid
		}
		return total
	}
	for _, a := range c.Mentors {
		total += a.AmountPaid
	}
	return total
}

// EffectiveFoodCost returns the draft override when present, else the
// official value.
func (c *Course) EffectiveFoodCost() float64 {
	if c.IsDraft() && c.Draft != nil && c.Draft.FoodCost != nil {
		return *c.Draft.FoodCost
	}
	return c.FoodCost
}

// EffectiveOtherCost returns the draft override when present, else the
// official value.
func (c *Course) EffectiveOtherCost() float64 {
	if c.IsDraft() && c.Draft != nil && c.Draft.OtherCost != nil {
		return *c.Draft.OtherCost
	}
	return c.OtherCost
}

// TotalTrainingCost is the mentor cost plus effective food and other costs.
// INVARIANT: Equal immediately before and after draft approval
func (c *Course) TotalTrainingCost() float64 {
	return c.TotalMentorCost() + c.EffectiveFoodCost() + c.EffectiveOtherCost()
}

// Overlaps reports whether this course's active interval overlaps the
// interval [start, end]. An open-ended end date extends to infinity.
// PRE: start is non-zero; end may be zero (open-ended)
func (c *Course) Overlaps(start, end time.Time) bool {
	if !end.IsZero() && c.StartDate.After(end) {
		return false
	}
	if !c.EndDate.IsZero() && c.EndDate.Before(start) {
		return false
	}
	return true
}
