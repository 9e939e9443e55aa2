// Package mentor persists instructor records.
package mentor

import (
	"context"
	"database/sql"

	"traindesk/internal/adapters/storage"
	domain "traindesk/internal/domain/mentor"
)

// Store persists mentors.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Mentor, error)
	Save(ctx context.Context, value domain.Mentor) error
	List(ctx context.Context, filter ListFilter) ([]domain.Mentor, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit        int
	Offset       int
	InternalOnly bool
	ExternalOnly bool
	Search       string // name or email substring
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new MentorStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const mentorColumns = "id, name, email, is_internal, student_id, sbu, designation"

func scanMentor(scan func(dest ...any) error) (domain.Mentor, error) {
	var entity domain.Mentor
	var studentID sql.NullString
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.Email,
		&entity.IsInternal,
		&studentID,
		&entity.SBU,
		&entity.Designation,
	)
	entity.StudentID = studentID.String
	return entity, err
}

// GetByID retrieves a Mentor by its ID.
// PRE: id is non-empty
// POST: Returns the mentor or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Mentor, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+mentorColumns+" FROM mentor WHERE id = ?", id)
	entity, err := scanMentor(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Mentor{}, domain.ErrNotFound
	}
	return entity, err
}

// Save upserts a Mentor.
// PRE: entity has been validated
// POST: Mentor is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Mentor) error {
	var studentID any
	if entity.StudentID != "" {
		studentID = entity.StudentID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mentor (`+mentorColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, email=excluded.email, is_internal=excluded.is_internal,
			student_id=excluded.student_id, sbu=excluded.sbu, designation=excluded.designation`,
		entity.ID, entity.Name, entity.Email, entity.IsInternal,
		studentID, entity.SBU, entity.Designation,
	)
	return err
}

func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.InternalOnly {
		where += " AND is_internal = 1"
	}
	if filter.ExternalOnly {
		where += " AND is_internal = 0"
	}
	if filter.Search != "" {
		where += " AND (name LIKE ? OR email LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	return where, args
}

// Count returns the total number of mentors matching the filter.
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM mentor"+where, args...).Scan(&count)
	return count, err
}

// List retrieves a page of mentors matching the filter, ordered by name.
// PRE: filter has valid parameters
// POST: Returns matching mentors
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Mentor, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + mentorColumns + " FROM mentor" + where + " ORDER BY name, id"

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Mentor
	for rows.Next() {
		entity, err := scanMentor(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
