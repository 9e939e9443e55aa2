package course

import (
	"context"
	"database/sql"
	"time"

	"traindesk/internal/adapters/storage"
	domain "traindesk/internal/domain/course"
)

const dateFormat = time.RFC3339

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new CourseStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const courseColumns = "id, name, batch_code, description, status, start_date, end_date, seat_limit, current_enrolled, total_classes_offered, food_cost, other_cost, created_at, updated_at"

// scanCourse reads one course row. Works for both *sql.Row and *sql.Rows.
func scanCourse(scan func(dest ...any) error) (domain.Course, error) {
	var entity domain.Course
	var startStr, createdStr, updatedStr string
	var endStr sql.NullString
	var totalClasses sql.NullInt64
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.BatchCode,
		&entity.Description,
		&entity.Status,
		&startStr,
		&endStr,
		&entity.SeatLimit,
		&entity.CurrentEnrolled,
		&totalClasses,
		&entity.FoodCost,
		&entity.OtherCost,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		return domain.Course{}, err
	}
	entity.StartDate, _ = time.Parse(dateFormat, startStr)
	if endStr.Valid {
		entity.EndDate, _ = time.Parse(dateFormat, endStr.String)
	}
	if totalClasses.Valid {
		n := int(totalClasses.Int64)
		entity.TotalClassesOffered = &n
	}
	entity.CreatedAt, _ = time.Parse(dateFormat, createdStr)
	entity.UpdatedAt, _ = time.Parse(dateFormat, updatedStr)
	return entity, nil
}

// GetByID retrieves a Course with its assignments and draft.
// PRE: id is non-empty
// POST: Returns the full aggregate or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Course, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+courseColumns+" FROM course WHERE id = ?", id)
	entity, err := scanCourse(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Course{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Course{}, err
	}

	if entity.Mentors, err = s.loadAssignments(ctx, id); err != nil {
		return domain.Course{}, err
	}
	if entity.Draft, err = s.loadDraft(ctx, id); err != nil {
		return domain.Course{}, err
	}
	return entity, nil
}

func (s *SQLiteStore) loadAssignments(ctx context.Context, courseID string) ([]domain.MentorAssignment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, mentor_id, hours_taught, amount_paid FROM course_mentor_assignment WHERE course_id = ? ORDER BY id",
		courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.MentorAssignment
	for rows.Next() {
		var a domain.MentorAssignment
		if err := rows.Scan(&a.ID, &a.MentorID, &a.HoursTaught, &a.AmountPaid); err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) loadDraft(ctx context.Context, courseID string) (*domain.Draft, error) {
	row := s.db.QueryRowContext(ctx, "SELECT food_cost, other_cost FROM course_draft WHERE course_id = ?", courseID)
	var food, other sql.NullFloat64
	err := row.Scan(&food, &other)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	draft := &domain.Draft{}
	if food.Valid {
		draft.FoodCost = &food.Float64
	}
	if other.Valid {
		draft.OtherCost = &other.Float64
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT mentor_id, hours_taught, amount_paid FROM draft_mentor_assignment WHERE course_id = ? ORDER BY position",
		courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var a domain.DraftAssignment
		if err := rows.Scan(&a.MentorID, &a.HoursTaught, &a.AmountPaid); err != nil {
			return nil, err
		}
		draft.MentorAssignments = append(draft.MentorAssignments, a)
	}
	return draft, rows.Err()
}

// Save persists the Course aggregate in a single transaction. Assignments
// and draft rows are replaced wholesale so the database always mirrors the
// in-memory aggregate; approving a course therefore drops its draft rows
// and writes the merged official records atomically.
// PRE: entity has been validated
// POST: course row, assignments and draft match the given aggregate
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Course) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var endDate any
	if !entity.EndDate.IsZero() {
		endDate = entity.EndDate.Format(dateFormat)
	}
	var totalClasses any
	if entity.TotalClassesOffered != nil {
		totalClasses = *entity.TotalClassesOffered
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO course (`+courseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, batch_code=excluded.batch_code, description=excluded.description,
			status=excluded.status, start_date=excluded.start_date, end_date=excluded.end_date,
			seat_limit=excluded.seat_limit, current_enrolled=excluded.current_enrolled,
			total_classes_offered=excluded.total_classes_offered,
			food_cost=excluded.food_cost, other_cost=excluded.other_cost,
			updated_at=excluded.updated_at`,
		entity.ID, entity.Name, entity.BatchCode, entity.Description, entity.Status,
		entity.StartDate.Format(dateFormat), endDate,
		entity.SeatLimit, entity.CurrentEnrolled, totalClasses,
		entity.FoodCost, entity.OtherCost,
		entity.CreatedAt.Format(dateFormat), entity.UpdatedAt.Format(dateFormat),
	)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM course_mentor_assignment WHERE course_id = ?", entity.ID); err != nil {
		return err
	}
	for _, a := range entity.Mentors {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO course_mentor_assignment (id, course_id, mentor_id, hours_taught, amount_paid) VALUES (?, ?, ?, ?, ?)",
			a.ID, entity.ID, a.MentorID, a.HoursTaught, a.AmountPaid); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM draft_mentor_assignment WHERE course_id = ?", entity.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM course_draft WHERE course_id = ?", entity.ID); err != nil {
		return err
	}
	if entity.Draft != nil {
		var food, other any
		if entity.Draft.FoodCost != nil {
			food = *entity.Draft.FoodCost
		}
		if entity.Draft.OtherCost != nil {
			other = *entity.Draft.OtherCost
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO course_draft (course_id, food_cost, other_cost) VALUES (?, ?, ?)",
			entity.ID, food, other); err != nil {
			return err
		}
		for i, a := range entity.Draft.MentorAssignments {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO draft_mentor_assignment (course_id, mentor_id, hours_taught, amount_paid, position) VALUES (?, ?, ?, ?, ?)",
				entity.ID, a.MentorID, a.HoursTaught, a.AmountPaid, i); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// DeletePreservingHistory removes a course while stamping its identity onto
// its enrollments. Enrollments keep the denormalized course name and batch
// code and lose only the foreign key, all in one transaction.
// PRE: id is non-empty
// POST: course, assignments and draft rows removed; enrollment history intact
func (s *SQLiteStore) DeletePreservingHistory(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE enrollment SET
			course_name = (SELECT name FROM course WHERE id = ?),
			batch_code = (SELECT batch_code FROM course WHERE id = ?),
			course_id = NULL
		WHERE course_id = ?`,
		id, id, id)
	if err != nil {
		return err
	}

	for _, stmt := range []string{
		"DELETE FROM draft_mentor_assignment WHERE course_id = ?",
		"DELETE FROM course_draft WHERE course_id = ?",
		"DELETE FROM course_mentor_assignment WHERE course_id = ?",
		"DELETE FROM course WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListByName retrieves all batches of a course name, bare rows only.
// PRE: name is non-empty
// POST: Returns matching courses ordered by start date
func (s *SQLiteStore) ListByName(ctx context.Context, name string) ([]domain.Course, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+courseColumns+" FROM course WHERE name = ? ORDER BY start_date", name)
	if err != nil {
		return nil, err
	}
	return collectCourses(rows)
}

// ListAll retrieves every course as bare rows, for bucket classification.
// POST: Returns all courses ordered by start date
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.Course, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+courseColumns+" FROM course ORDER BY start_date")
	if err != nil {
		return nil, err
	}
	return collectCourses(rows)
}

// listWhereClause builds the WHERE clause and args for List/Count queries.
func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		where += " AND (name LIKE ? OR batch_code LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	return where, args
}

// Count returns the total number of courses matching the filter.
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM course"+where, args...).Scan(&count)
	return count, err
}

// List retrieves a page of courses matching the filter, bare rows only.
// PRE: filter has valid parameters
// POST: Returns matching courses, newest start date first
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Course, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + courseColumns + " FROM course" + where + " ORDER BY start_date DESC"

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
	return collectCourses(rows)
}

func collectCourses(rows *sql.Rows) ([]domain.Course, error) {
	defer rows.Close()
	var results []domain.Course
	for rows.Next() {
		entity, err := scanCourse(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
