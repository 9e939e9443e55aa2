package course

// DraftAssignment is a staged mentor assignment inside a course draft.
type DraftAssignment struct {
	MentorID    string
	HoursTaught float64
	AmountPaid  float64
}

// Validate checks if the DraftAssignment has valid data.
// PRE: DraftAssignment struct is populated
// POST: Returns nil if valid, error otherwise
func (a *DraftAssignment) Validate() error {
	if a.MentorID == "" {
		return ErrMentorNotAssigned
	}
	if a.HoursTaught < 0 {
		return ErrNegativeHours
	}
	if a.AmountPaid < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// Draft is the staging area attached to a planning-stage course. Mentor
// assignments and cost overrides accumulate here and become permanent only
// at course approval. Nil cost fields mean "inherit the official value".
type Draft struct {
	MentorAssignments []DraftAssignment
	FoodCost          *float64
	OtherCost         *float64
}

// ensureDraft lazily creates the staging object on first write.
func (c *Course) ensureDraft() (*Draft, error) {
	if !c.IsDraft() {
		return nil, ErrCourseNotDraft
	}
	if c.Draft == nil {
		c.Draft = &Draft{}
	}
	return c.Draft, nil
}

// UpsertDraftMentor stages a mentor assignment, replacing any staged entry
// for the same mentor. The draft is created on first write.
// PRE: assignment has been validated
// POST: Exactly one staged entry for assignment.MentorID exists
// INVARIANT: Fails with ErrCourseNotDraft unless Status == draft
func (c *Course) UpsertDraftMentor(assignment DraftAssignment) error {
	if err := assignment.Validate(); err != nil {
		return err
	}
	d, err := c.ensureDraft()
	if err != nil {
		return err
	}
	for i := range d.MentorAssignments {
		if d.MentorAssignments[i].MentorID == assignment.MentorID {
			d.MentorAssignments = append(d.MentorAssignments[:i], d.MentorAssignments[i+1:]...)
			break
		}
	}
	d.MentorAssignments = append(d.MentorAssignments, assignment)
	return nil
}

// RemoveDraftMentor removes the staged entry for the given mentor.
// Removing an absent entry is a no-op, not an error.
// POST: No staged entry for mentorID remains
// INVARIANT: Fails with ErrCourseNotDraft unless Status == draft
func (c *Course) RemoveDraftMentor(mentorID string) error {
	if !c.IsDraft() {
		return ErrCourseNotDraft
	}
	if c.Draft == nil {
		return nil
	}
	for i := range c.Draft.MentorAssignments {
		if c.Draft.MentorAssignments[i].MentorID == mentorID {
			c.Draft.MentorAssignments = append(c.Draft.MentorAssignments[:i], c.Draft.MentorAssignments[i+1:]...)
			return nil
		}
	}
	return nil
}

// SetDraftCosts stages cost overrides. Only non-nil fields are set; a field
// left nil keeps its current staged value (partial update semantics).
// PRE: provided values are non-negative
// POST: Provided fields staged, unspecified fields untouched
// INVARIANT: Fails with ErrCourseNotDraft unless Status == draft
func (c *Course) SetDraftCosts(foodCost, otherCost *float64) error {
	if foodCost != nil && *foodCost < 0 {
		return ErrNegativeCost
	}
	if otherCost != nil && *otherCost < 0 {
		return ErrNegativeCost
	}
	d, err := c.ensureDraft()
	if err != nil {
		return err
	}
	if foodCost != nil {
		v := *foodCost
		d.FoodCost = &v
	}
	if otherCost != nil {
		v := *otherCost
		d.OtherCost = &v
	}
	return nil
}

// ApplyDraft merges the staging object into the permanent record and moves
// the course to ongoing. Staged assignments win over official ones per
// mentor; staged costs apply only when set. Approval relocates values, it
// never changes the total training cost.
// PRE: Status == draft
// POST: Status == ongoing, Draft == nil, staged values merged
// INVARIANT: TotalTrainingCost is equal before and after
func (c *Course) ApplyDraft() error {
	if !c.IsDraft() {
		return ErrInvalidState
	}
	if c.Draft != nil {
		for _, staged := range c.Draft.MentorAssignments {
			c.AssignMentor(MentorAssignment{
				MentorID:    staged.MentorID,
				HoursTaught: staged.HoursTaught,
				AmountPaid:  staged.AmountPaid,
			})
		}
		if c.Draft.FoodCost != nil {
			c.FoodCost = *c.Draft.FoodCost
		}
		if c.Draft.OtherCost != nil {
			c.OtherCost = *c.Draft.OtherCost
		}
	}
	c.Status = StatusOngoing
	c.Draft = nil
	return nil
}
