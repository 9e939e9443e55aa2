package projections

import (
	"bytes"
	"context"
	"time"

	"github.com/yuin/goldmark"
)

// MentorAssignmentView is one mentor line on the course detail page, with
// the mentor identity resolved.
type MentorAssignmentView struct {
	MentorID    string  `json:"mentor_id"`
	MentorName  string  `json:"mentor_name"`
	IsInternal  bool    `json:"is_internal"`
	HoursTaught float64 `json:"hours_taught"`
	AmountPaid  float64 `json:"amount_paid"`
	Staged      bool    `json:"staged"` // true for draft assignments
}

// DraftView is the staged draft shown alongside a planning course.
type DraftView struct {
	MentorAssignments []MentorAssignmentView `json:"mentor_assignments"`
	FoodCost          *float64               `json:"food_cost,omitempty"`
	OtherCost         *float64               `json:"other_cost,omitempty"`
}

// CourseDetailResult is the full course view: identity, lifecycle, mentors,
// effective costs and the staged draft when one exists.
type CourseDetailResult struct {
	CourseSummary
	Description         string                 `json:"description"`
	DescriptionHTML     string                 `json:"description_html"`
	TotalClassesOffered *int                   `json:"total_classes_offered"` // null until the class count is known
	Mentors             []MentorAssignmentView `json:"mentors"`
	Draft               *DraftView             `json:"draft,omitempty"`
	FoodCost            float64                `json:"food_cost"`
	OtherCost           float64                `json:"other_cost"`
	TotalMentorCost     float64                `json:"total_mentor_cost"`
	TotalTrainingCost   float64                `json:"total_training_cost"`
}

// GetCourseDetailDeps holds dependencies for the course detail projection.
type GetCourseDetailDeps struct {
	CourseStore CourseStore
	MentorStore MentorStore
	Now         func() time.Time
}

// QueryCourseDetail loads one course with mentor identities resolved. While
// the course is in draft status the effective costs and the mentor cost come
// from the staged values; the official figures stay visible next to them.
// PRE: courseID is non-empty
// POST: returns the detail view or course.ErrNotFound
func QueryCourseDetail(ctx context.Context, courseID string, deps GetCourseDetailDeps) (CourseDetailResult, error) {
	c, err := deps.CourseStore.GetByID(ctx, courseID)
	if err != nil {
		return CourseDetailResult{}, err
	}

	result := CourseDetailResult{
		CourseSummary:       summarize(c, deps.Now()),
		Description:         c.Description,
		DescriptionHTML:     renderMarkdown(c.Description),
		TotalClassesOffered: c.TotalClassesOffered,
		FoodCost:            c.EffectiveFoodCost(),
		OtherCost:           c.EffectiveOtherCost(),
		TotalMentorCost:     c.TotalMentorCost(),
		TotalTrainingCost:   c.TotalTrainingCost(),
	}

	for _, a := range c.Mentors {
		result.Mentors = append(result.Mentors, resolveAssignment(ctx, deps.MentorStore, a.MentorID, a.HoursTaught, a.AmountPaid, false))
	}
	if c.Draft != nil {
		draft := &DraftView{FoodCost: c.Draft.FoodCost, OtherCost: c.Draft.OtherCost}
		for _, a := range c.Draft.MentorAssignments {
			draft.MentorAssignments = append(draft.MentorAssignments, resolveAssignment(ctx, deps.MentorStore, a.MentorID, a.HoursTaught, a.AmountPaid, true))
		}
		result.Draft = draft
	}
	return result, nil
}

func resolveAssignment(ctx context.Context, store MentorStore, mentorID string, hours, amount float64, staged bool) MentorAssignmentView {
	view := MentorAssignmentView{
		MentorID:    mentorID,
		HoursTaught: hours,
		AmountPaid:  amount,
		Staged:      staged,
	}
	if m, err := store.GetByID(ctx, mentorID); err == nil {
		view.MentorName = m.Name
		view.IsInternal = m.IsInternal
	}
	return view
}

// renderMarkdown converts the stored markdown description to HTML. A render
// failure falls back to the raw text rather than failing the whole view.
func renderMarkdown(src string) string {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return src
	}
	return buf.String()
}
