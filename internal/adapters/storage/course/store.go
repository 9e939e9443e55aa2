package course

import (
	"context"

	domain "traindesk/internal/domain/course"
)

// Store persists the Course aggregate: the course row, its official mentor
// assignments and its draft.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Course, error)
	Save(ctx context.Context, value domain.Course) error
	DeletePreservingHistory(ctx context.Context, id string) error
	ListByName(ctx context.Context, name string) ([]domain.Course, error)
	ListAll(ctx context.Context) ([]domain.Course, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Course, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Status string // explicit status flag
	Search string // name or batch code substring
}
