// Package orchestrators contains the write-side use cases. Each orchestrator
// is a pure function over an input struct and a deps struct so stores, clock
// and ID generation are injectable in tests.
package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"traindesk/internal/domain/course"
)

// CourseStore defines course aggregate persistence. Save persists the course
// row, its mentor assignments and its draft in a single transaction.
type CourseStore interface {
	GetByID(ctx context.Context, id string) (course.Course, error)
	Save(ctx context.Context, c course.Course) error
	ListByName(ctx context.Context, name string) ([]course.Course, error)
	DeletePreservingHistory(ctx context.Context, id string) error
}

// CreateCourseInput carries input for course creation.
type CreateCourseInput struct {
	Name                string
	BatchCode           string
	Description         string
	Status              string // empty lets the dates decide the bucket
	StartDate           time.Time
	EndDate             time.Time
	SeatLimit           int
	TotalClassesOffered *int // nil when the class count is not yet known
	FoodCost            float64
	OtherCost           float64
}

// CreateCourseDeps holds dependencies for CreateCourse.
type CreateCourseDeps struct {
	CourseStore CourseStore
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteCreateCourse creates a new course batch.
// PRE: no course with the same (name, batch code) exists
// POST: Course persisted; ErrDuplicateBatch or ErrOverlappingBatch on clash
func ExecuteCreateCourse(ctx context.Context, input CreateCourseInput, deps CreateCourseDeps) (course.Course, error) {
	now := deps.Now()
	c := course.Course{
		ID:                  deps.GenerateID(),
		Name:                input.Name,
		BatchCode:           input.BatchCode,
		Description:         input.Description,
		Status:              input.Status,
		StartDate:           input.StartDate,
		EndDate:             input.EndDate,
		SeatLimit:           input.SeatLimit,
		TotalClassesOffered: input.TotalClassesOffered,
		FoodCost:            input.FoodCost,
		OtherCost:           input.OtherCost,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := c.Validate(); err != nil {
		return course.Course{}, err
	}

	if err := checkBatchClash(ctx, deps.CourseStore, c, ""); err != nil {
		return course.Course{}, err
	}

	if err := deps.CourseStore.Save(ctx, c); err != nil {
		return course.Course{}, err
	}

	slog.Info("course_event", "event", "course_created", "course_id", c.ID, "name", c.Name, "batch_code", c.BatchCode, "status", c.Status)
	return c, nil
}

// UpdateCourseInput carries input for course updates. All fields are applied;
// callers send the full editable set.
type UpdateCourseInput struct {
	CourseID            string
	Name                string
	BatchCode           string
	Description         string
	Status              string
	StartDate           time.Time
	EndDate             time.Time
	SeatLimit           int
	TotalClassesOffered *int
}

// UpdateCourseDeps holds dependencies for UpdateCourse.
type UpdateCourseDeps struct {
	CourseStore CourseStore
	Now         func() time.Time
}

// ExecuteUpdateCourse updates the editable fields of a course.
// PRE: course exists; new (name, batch code) does not clash with another course
// POST: Course persisted with updated fields
// INVARIANT: a course with a pending draft leaves planning only via approval
func ExecuteUpdateCourse(ctx context.Context, input UpdateCourseInput, deps UpdateCourseDeps) (course.Course, error) {
	c, err := deps.CourseStore.GetByID(ctx, input.CourseID)
	if err != nil {
		return course.Course{}, err
	}

	if c.Draft != nil && input.Status != course.StatusDraft {
		return course.Course{}, course.ErrInvalidState
	}

	c.Name = input.Name
	c.BatchCode = input.BatchCode
	c.Description = input.Description
	c.Status = input.Status
	c.StartDate = input.StartDate
	c.EndDate = input.EndDate
	c.SeatLimit = input.SeatLimit
	c.TotalClassesOffered = input.TotalClassesOffered
	c.UpdatedAt = deps.Now()

	if err := c.Validate(); err != nil {
		return course.Course{}, err
	}
	if err := checkBatchClash(ctx, deps.CourseStore, c, c.ID); err != nil {
		return course.Course{}, err
	}

	if err := deps.CourseStore.Save(ctx, c); err != nil {
		return course.Course{}, err
	}

	slog.Info("course_event", "event", "course_updated", "course_id", c.ID, "name", c.Name, "batch_code", c.BatchCode)
	return c, nil
}

// DeleteCourseDeps holds dependencies for DeleteCourse.
type DeleteCourseDeps struct {
	CourseStore CourseStore
}

// ExecuteDeleteCourse removes a course while preserving enrollment history.
// Enrollments keep the denormalized course name and batch code; their
// course_id reference is cleared by the store in the same transaction.
// PRE: course exists
// POST: course, assignments and draft deleted; enrollments retain history
func ExecuteDeleteCourse(ctx context.Context, courseID string, deps DeleteCourseDeps) error {
	c, err := deps.CourseStore.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if err := deps.CourseStore.DeletePreservingHistory(ctx, c.ID); err != nil {
		return err
	}
	slog.Info("course_event", "event", "course_deleted", "course_id", c.ID, "name", c.Name, "batch_code", c.BatchCode)
	return nil
}

// checkBatchClash rejects a course whose (name, batch code) duplicates
// another course, or whose dates overlap another batch of the same name.
func checkBatchClash(ctx context.Context, store CourseStore, c course.Course, excludeID string) error {
	existing, err := store.ListByName(ctx, c.Name)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == excludeID {
			continue
		}
		if other.BatchCode == c.BatchCode {
			return course.ErrDuplicateBatch
		}
		if other.Overlaps(c.StartDate, c.EndDate) {
			return course.ErrOverlappingBatch
		}
	}
	return nil
}
