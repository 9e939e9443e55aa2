package projections

import (
	"context"
	"time"

	storageCourse "traindesk/internal/adapters/storage/course"
	"traindesk/internal/application/listutil"
)

// GetCourseListQuery carries input for the paged course list.
type GetCourseListQuery struct {
	Params listutil.ListParams
}

// GetCourseListDeps holds dependencies for the course list projection.
type GetCourseListDeps struct {
	CourseStore CourseStore
	Now         func() time.Time
}

// CourseListResult is one page of courses with pagination metadata.
type CourseListResult struct {
	Courses  []CourseSummary   `json:"courses"`
	PageInfo listutil.PageInfo `json:"page_info"`
}

// QueryCourseList returns a filtered, paged course list with each row
// resolved to its lifecycle bucket.
func QueryCourseList(ctx context.Context, query GetCourseListQuery, deps GetCourseListDeps) (CourseListResult, error) {
	filter := storageCourse.ListFilter{
		Status: query.Params.Filters["status"],
		Search: query.Params.Search,
	}

	total, err := deps.CourseStore.Count(ctx, filter)
	if err != nil {
		return CourseListResult{}, err
	}
	pageInfo := listutil.NewPageInfo(query.Params.Page, query.Params.PerPage, total)
	filter.Limit = pageInfo.PerPage
	filter.Offset = pageInfo.Offset()

	courses, err := deps.CourseStore.List(ctx, filter)
	if err != nil {
		return CourseListResult{}, err
	}

	now := deps.Now()
	result := CourseListResult{PageInfo: pageInfo, Courses: make([]CourseSummary, 0, len(courses))}
	for _, c := range courses {
		result.Courses = append(result.Courses, summarize(c, now))
	}
	return result, nil
}
