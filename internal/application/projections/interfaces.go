package projections

import (
	"context"

	storageCourse "traindesk/internal/adapters/storage/course"
	storageEnrollment "traindesk/internal/adapters/storage/enrollment"
	storageMentor "traindesk/internal/adapters/storage/mentor"
	storageStudent "traindesk/internal/adapters/storage/student"
	domainCourse "traindesk/internal/domain/course"
	domainEnrollment "traindesk/internal/domain/enrollment"
	domainMentor "traindesk/internal/domain/mentor"
	domainStudent "traindesk/internal/domain/student"
)

// CourseStore interface for course queries.
type CourseStore interface {
	GetByID(ctx context.Context, id string) (domainCourse.Course, error)
	ListAll(ctx context.Context) ([]domainCourse.Course, error)
	List(ctx context.Context, filter storageCourse.ListFilter) ([]domainCourse.Course, error)
	Count(ctx context.Context, filter storageCourse.ListFilter) (int, error)
}

// EnrollmentStore interface for enrollment queries.
type EnrollmentStore interface {
	GetByID(ctx context.Context, id string) (domainEnrollment.Enrollment, error)
	List(ctx context.Context, filter storageEnrollment.ListFilter) ([]domainEnrollment.Enrollment, error)
	Count(ctx context.Context, filter storageEnrollment.ListFilter) (int, error)
}

// StudentStore interface for student queries.
type StudentStore interface {
	GetByID(ctx context.Context, id string) (domainStudent.Student, error)
	List(ctx context.Context, filter storageStudent.ListFilter) ([]domainStudent.Student, error)
	Count(ctx context.Context, filter storageStudent.ListFilter) (int, error)
}

// MentorStore interface for mentor queries.
type MentorStore interface {
	GetByID(ctx context.Context, id string) (domainMentor.Mentor, error)
	List(ctx context.Context, filter storageMentor.ListFilter) ([]domainMentor.Mentor, error)
	Count(ctx context.Context, filter storageMentor.ListFilter) (int, error)
}
