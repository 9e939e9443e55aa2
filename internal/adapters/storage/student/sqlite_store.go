// Package student persists employee records.
package student

import (
	"context"
	"database/sql"

	"traindesk/internal/adapters/storage"
	domain "traindesk/internal/domain/student"
)

// Store persists students.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Student, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (domain.Student, error)
	Save(ctx context.Context, value domain.Student) error
	List(ctx context.Context, filter ListFilter) ([]domain.Student, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	SBU    string
	Search string // name, employee ID or email substring
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new StudentStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const studentColumns = "id, employee_id, name, email, sbu, designation, experience_years"

func scanStudent(scan func(dest ...any) error) (domain.Student, error) {
	var entity domain.Student
	err := scan(
		&entity.ID,
		&entity.EmployeeID,
		&entity.Name,
		&entity.Email,
		&entity.SBU,
		&entity.Designation,
		&entity.ExperienceYears,
	)
	return entity, err
}

// GetByID retrieves a Student by its ID.
// PRE: id is non-empty
// POST: Returns the student or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Student, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+studentColumns+" FROM student WHERE id = ?", id)
	entity, err := scanStudent(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Student{}, domain.ErrNotFound
	}
	return entity, err
}

// GetByEmployeeID retrieves a Student by the company employee ID, used for
// the duplicate check at creation time.
// PRE: employeeID is non-empty
// POST: Returns the student or ErrNotFound
func (s *SQLiteStore) GetByEmployeeID(ctx context.Context, employeeID string) (domain.Student, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+studentColumns+" FROM student WHERE employee_id = ?", employeeID)
	entity, err := scanStudent(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Student{}, domain.ErrNotFound
	}
	return entity, err
}

// Save upserts a Student.
// PRE: entity has been validated
// POST: Student is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Student) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO student (`+studentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id=excluded.employee_id, name=excluded.name, email=excluded.email,
			sbu=excluded.sbu, designation=excluded.designation,
			experience_years=excluded.experience_years`,
		entity.ID, entity.EmployeeID, entity.Name, entity.Email,
		entity.SBU, entity.Designation, entity.ExperienceYears,
	)
	return err
}

func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.SBU != "" {
		where += " AND sbu = ?"
		args = append(args, filter.SBU)
	}
	if filter.Search != "" {
		where += " AND (name LIKE ? OR employee_id LIKE ? OR email LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term, term)
	}
	return where, args
}

// Count returns the total number of students matching the filter.
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM student"+where, args...).Scan(&count)
	return count, err
}

// List retrieves a page of students matching the filter, ordered by name.
// PRE: filter has valid parameters
// POST: Returns matching students
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Student, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + studentColumns + " FROM student" + where + " ORDER BY name, id"

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

	var results []domain.Student
	for rows.Next() {
		entity, err := scanStudent(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
