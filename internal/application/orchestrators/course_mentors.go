package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"traindesk/internal/domain/course"
	"traindesk/internal/domain/mentor"
)

// MentorLookup defines the mentor store interface needed to verify referents.
type MentorLookup interface {
	GetByID(ctx context.Context, id string) (mentor.Mentor, error)
}

// AssignMentorInput carries input for assigning a mentor to a course.
type AssignMentorInput struct {
	CourseID    string
	MentorID    string
	HoursTaught float64
	AmountPaid  float64
}

// AssignMentorDeps holds dependencies for AssignMentor.
type AssignMentorDeps struct {
	CourseStore CourseStore
	MentorStore MentorLookup
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteAssignMentor records a mentor assignment on a course. The course
// state decides the destination exactly once: planning courses stage the
// assignment on the draft, all other courses write the official record.
// PRE: course and mentor exist
// POST: at most one assignment per (course, mentor) on the chosen side
func ExecuteAssignMentor(ctx context.Context, input AssignMentorInput, deps AssignMentorDeps) (course.Course, error) {
	c, err := deps.CourseStore.GetByID(ctx, input.CourseID)
	if err != nil {
		return course.Course{}, err
	}
	if _, err := deps.MentorStore.GetByID(ctx, input.MentorID); err != nil {
		return course.Course{}, err
	}

	target := "official"
	if c.IsDraft() {
		target = "draft"
		err = c.UpsertDraftMentor(course.DraftAssignment{
			MentorID:    input.MentorID,
			HoursTaught: input.HoursTaught,
			AmountPaid:  input.AmountPaid,
		})
	} else {
		a := course.MentorAssignment{
			ID:          deps.GenerateID(),
			MentorID:    input.MentorID,
			HoursTaught: input.HoursTaught,
			AmountPaid:  input.AmountPaid,
		}
		if err = a.Validate(); err == nil {
			c.AssignMentor(a)
		}
	}
	if err != nil {
		return course.Course{}, err
	}

	c.UpdatedAt = deps.Now()
	if err := deps.CourseStore.Save(ctx, c); err != nil {
		return course.Course{}, err
	}

	slog.Info("course_event", "event", "mentor_assigned", "course_id", c.ID, "mentor_id", input.MentorID, "target", target, "amount_paid", input.AmountPaid)
	return c, nil
}

// RemoveMentorInput carries input for removing a mentor from a course.
type RemoveMentorInput struct {
	CourseID string
	MentorID string
}

// RemoveMentorDeps holds dependencies for RemoveMentor.
type RemoveMentorDeps struct {
	CourseStore CourseStore
	Now         func() time.Time
}

// ExecuteRemoveMentor removes a mentor assignment, branching on course state
// the same way as ExecuteAssignMentor. Removing an unstaged mentor from a
// planning course is a no-op; removing an unassigned mentor from an official
// course fails ErrMentorNotAssigned.
func ExecuteRemoveMentor(ctx context.Context, input RemoveMentorInput, deps RemoveMentorDeps) (course.Course, error) {
	c, err := deps.CourseStore.GetByID(ctx, input.CourseID)
	if err != nil {
		return course.Course{}, err
	}

	if c.IsDraft() {
		err = c.RemoveDraftMentor(input.MentorID)
	} else {
		err = c.RemoveMentor(input.MentorID)
	}
	if err != nil {
		return course.Course{}, err
	}

	c.UpdatedAt = deps.Now()
	if err := deps.CourseStore.Save(ctx, c); err != nil {
		return course.Course{}, err
	}

	slog.Info("course_event", "event", "mentor_removed", "course_id", c.ID, "mentor_id", input.MentorID, "draft", c.IsDraft())
	return c, nil
}

// SetCostsInput carries the partial cost update. Nil fields are left alone.
type SetCostsInput struct {
	CourseID  string
	FoodCost  *float64
	OtherCost *float64
}

// SetCostsDeps holds dependencies for SetCosts.
type SetCostsDeps struct {
	CourseStore CourseStore
	Now         func() time.Time
}

// ExecuteSetCosts updates food and other costs, staging them on the draft for
// planning courses and writing official values otherwise. Only fields present
// in the input change; an explicit zero is a real value, not "inherit".
func ExecuteSetCosts(ctx context.Context, input SetCostsInput, deps SetCostsDeps) (course.Course, error) {
	c, err := deps.CourseStore.GetByID(ctx, input.CourseID)
	if err != nil {
		return course.Course{}, err
	}

	if c.IsDraft() {
		if err := c.SetDraftCosts(input.FoodCost, input.OtherCost); err != nil {
			return course.Course{}, err
		}
	} else {
		if (input.FoodCost != nil && *input.FoodCost < 0) || (input.OtherCost != nil && *input.OtherCost < 0) {
			return course.Course{}, course.ErrNegativeCost
		}
		if input.FoodCost != nil {
			c.FoodCost = *input.FoodCost
		}
		if input.OtherCost != nil {
			c.OtherCost = *input.OtherCost
		}
	}

	c.UpdatedAt = deps.Now()
	if err := deps.CourseStore.Save(ctx, c); err != nil {
		return course.Course{}, err
	}

	slog.Info("course_event", "event", "costs_set", "course_id", c.ID, "draft", c.IsDraft(), "food_cost", c.EffectiveFoodCost(), "other_cost", c.EffectiveOtherCost())
	return c, nil
}
