package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"traindesk/internal/domain/course"
)

// SaveDraftInput carries a whole draft to store against a planning course.
// The payload replaces any existing draft; concurrent editors are resolved
// last writer wins.
type SaveDraftInput struct {
	CourseID          string
	MentorAssignments []course.DraftAssignment
	FoodCost          *float64
	OtherCost         *float64
}

// SaveDraftDeps holds dependencies for SaveDraft.
type SaveDraftDeps struct {
	CourseStore CourseStore
	Now         func() time.Time
}

// ExecuteSaveDraft replaces the draft of a planning course with the given
// payload, creating the draft if absent.
// PRE: course exists and is in draft status
// POST: draft holds exactly the staged assignments and cost overrides given
func ExecuteSaveDraft(ctx context.Context, input SaveDraftInput, deps SaveDraftDeps) (course.Course, error) {
	c, err := deps.CourseStore.GetByID(ctx, input.CourseID)
	if err != nil {
		return course.Course{}, err
	}
	if !c.IsDraft() {
		return course.Course{}, course.ErrCourseNotDraft
	}

	if (input.FoodCost != nil && *input.FoodCost < 0) || (input.OtherCost != nil && *input.OtherCost < 0) {
		return course.Course{}, course.ErrNegativeCost
	}
	draft := course.Draft{FoodCost: input.FoodCost, OtherCost: input.OtherCost}
	for _, a := range input.MentorAssignments {
		if err := a.Validate(); err != nil {
			return course.Course{}, err
		}
		draft.MentorAssignments = append(draft.MentorAssignments, a)
	}
	c.Draft = &draft
	c.UpdatedAt = deps.Now()

	if err := deps.CourseStore.Save(ctx, c); err != nil {
		return course.Course{}, err
	}

	slog.Info("course_event", "event", "draft_saved", "course_id", c.ID, "staged_mentors", len(draft.MentorAssignments))
	return c, nil
}

// ApproveCourseInput carries input for approving a planning course.
type ApproveCourseInput struct {
	CourseID   string
	ApprovedBy string
}

// ApproveCourseDeps holds dependencies for ApproveCourse.
type ApproveCourseDeps struct {
	CourseStore CourseStore
	Now         func() time.Time
}

// ExecuteApproveCourse reconciles a course's draft into its official records
// and moves the course out of planning. Staged assignments win per mentor;
// staged cost overrides apply only where set. The store persists the merged
// aggregate and drops the draft rows in one transaction.
// PRE: course is in draft status
// POST: status is ongoing, draft cleared, total training cost unchanged
func ExecuteApproveCourse(ctx context.Context, input ApproveCourseInput, deps ApproveCourseDeps) (course.Course, error) {
	if input.ApprovedBy == "" {
		return course.Course{}, course.ErrEmptyActor
	}

	c, err := deps.CourseStore.GetByID(ctx, input.CourseID)
	if err != nil {
		return course.Course{}, err
	}

	if err := c.ApplyDraft(); err != nil {
		return course.Course{}, err
	}
	c.UpdatedAt = deps.Now()

	if err := deps.CourseStore.Save(ctx, c); err != nil {
		return course.Course{}, err
	}

	slog.Info("course_event", "event", "course_approved", "course_id", c.ID, "approved_by", input.ApprovedBy, "mentor_count", len(c.Mentors), "total_cost", c.TotalTrainingCost())
	return c, nil
}
