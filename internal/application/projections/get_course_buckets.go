package projections

import (
	"context"
	"time"

	"traindesk/internal/domain/course"
)

// CourseSummary is one course row in a bucket listing.
type CourseSummary struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	BatchCode       string        `json:"batch_code"`
	Status          string        `json:"status"`
	Bucket          course.Bucket `json:"bucket"`
	StartDate       time.Time     `json:"start_date"`
	EndDate         *time.Time    `json:"end_date,omitempty"`
	SeatLimit       int           `json:"seat_limit"`
	CurrentEnrolled int           `json:"current_enrolled"`
}

// GetCourseBucketsQuery carries input for the bucket projection. A zero At
// means "now". A non-nil Window reclassifies by interval overlap and drops
// courses that ended before the window start.
type GetCourseBucketsQuery struct {
	At     time.Time
	Window *course.Window
}

// GetCourseBucketsDeps holds dependencies for the bucket projection.
type GetCourseBucketsDeps struct {
	CourseStore CourseStore
	Now         func() time.Time
}

// CourseBucketsResult groups every course into exactly one lifecycle bucket.
type CourseBucketsResult struct {
	At        time.Time       `json:"at"`
	Planning  []CourseSummary `json:"planning"`
	Ongoing   []CourseSummary `json:"ongoing"`
	Completed []CourseSummary `json:"completed"`
}

// QueryCourseBuckets resolves each course to its lifecycle bucket at the
// given instant. The same course set queried at a later instant may shift
// buckets without any writes having happened.
// POST: without a window every stored course appears in exactly one bucket;
// with a window a course appears in at most one
func QueryCourseBuckets(ctx context.Context, query GetCourseBucketsQuery, deps GetCourseBucketsDeps) (CourseBucketsResult, error) {
	at := query.At
	if at.IsZero() {
		at = deps.Now()
	}

	courses, err := deps.CourseStore.ListAll(ctx)
	if err != nil {
		return CourseBucketsResult{}, err
	}

	buckets := course.Classify(courses, query.Window, at)

	result := CourseBucketsResult{At: at}
	result.Planning = summarizeAll(buckets.Planning, course.BucketPlanning, at)
	result.Ongoing = summarizeAll(buckets.Ongoing, course.BucketOngoing, at)
	result.Completed = summarizeAll(buckets.Completed, course.BucketCompleted, at)
	return result, nil
}

func summarizeAll(courses []course.Course, bucket course.Bucket, at time.Time) []CourseSummary {
	var out []CourseSummary
	for _, c := range courses {
		s := summarize(c, at)
		s.Bucket = bucket
		out = append(out, s)
	}
	return out
}

func summarize(c course.Course, at time.Time) CourseSummary {
	s := CourseSummary{
		ID:              c.ID,
		Name:            c.Name,
		BatchCode:       c.BatchCode,
		Status:          c.Status,
		Bucket:          c.Resolve(at),
		StartDate:       c.StartDate,
		SeatLimit:       c.SeatLimit,
		CurrentEnrolled: c.CurrentEnrolled,
	}
	if !c.EndDate.IsZero() {
		end := c.EndDate
		s.EndDate = &end
	}
	return s
}
