package enrollment

import (
	"context"
	"database/sql"
	"time"

	"traindesk/internal/adapters/storage"
	"traindesk/internal/domain/course"
	domain "traindesk/internal/domain/enrollment"
)

const dateFormat = time.RFC3339

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new EnrollmentStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const enrollmentColumns = "id, student_id, course_id, course_name, batch_code, eligibility_status, eligibility_reason, approval_status, completion_status, rejection_reason, withdrawal_reason, score, classes_attended, total_classes, approved_by, approved_at, created_at, updated_at"

func scanEnrollment(scan func(dest ...any) error) (domain.Enrollment, error) {
	var entity domain.Enrollment
	var courseID sql.NullString
	var score sql.NullFloat64
	var approvedAt sql.NullString
	var createdStr, updatedStr string
	err := scan(
		&entity.ID,
		&entity.StudentID,
		&courseID,
		&entity.CourseName,
		&entity.BatchCode,
		&entity.EligibilityStatus,
		&entity.EligibilityReason,
		&entity.ApprovalStatus,
		&entity.CompletionStatus,
		&entity.RejectionReason,
		&entity.WithdrawalReason,
		&score,
		&entity.ClassesAttended,
		&entity.TotalClasses,
		&entity.ApprovedBy,
		&approvedAt,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		return domain.Enrollment{}, err
	}
	entity.CourseID = courseID.String
	if score.Valid {
		entity.Score = &score.Float64
	}
	if approvedAt.Valid {
		entity.ApprovedAt, _ = time.Parse(dateFormat, approvedAt.String)
	}
	entity.CreatedAt, _ = time.Parse(dateFormat, createdStr)
	entity.UpdatedAt, _ = time.Parse(dateFormat, updatedStr)
	return entity, nil
}

// GetByID retrieves an Enrollment by its ID.
// PRE: id is non-empty
// POST: Returns the enrollment or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Enrollment, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+enrollmentColumns+" FROM enrollment WHERE id = ?", id)
	entity, err := scanEnrollment(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Enrollment{}, domain.ErrNotFound
	}
	return entity, err
}

// GetByStudentAndCourse retrieves the enrollment of a student in a course,
// used for the duplicate check at creation time.
// PRE: studentID and courseID are non-empty
// POST: Returns the enrollment or ErrNotFound
func (s *SQLiteStore) GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (domain.Enrollment, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+enrollmentColumns+" FROM enrollment WHERE student_id = ? AND course_id = ?",
		studentID, courseID)
	entity, err := scanEnrollment(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Enrollment{}, domain.ErrNotFound
	}
	return entity, err
}

func upsertEnrollment(ctx context.Context, db interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, entity domain.Enrollment) error {
	var courseID any
	if entity.CourseID != "" {
		courseID = entity.CourseID
	}
	var score any
	if entity.Score != nil {
		score = *entity.Score
	}
	var approvedAt any
	if !entity.ApprovedAt.IsZero() {
		approvedAt = entity.ApprovedAt.Format(dateFormat)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO enrollment (`+enrollmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			student_id=excluded.student_id, course_id=excluded.course_id,
			course_name=excluded.course_name, batch_code=excluded.batch_code,
			eligibility_status=excluded.eligibility_status, eligibility_reason=excluded.eligibility_reason,
			approval_status=excluded.approval_status, completion_status=excluded.completion_status,
			rejection_reason=excluded.rejection_reason, withdrawal_reason=excluded.withdrawal_reason,
			score=excluded.score, classes_attended=excluded.classes_attended,
			total_classes=excluded.total_classes, approved_by=excluded.approved_by,
			approved_at=excluded.approved_at, updated_at=excluded.updated_at`,
		entity.ID, entity.StudentID, courseID, entity.CourseName, entity.BatchCode,
		entity.EligibilityStatus, entity.EligibilityReason,
		entity.ApprovalStatus, entity.CompletionStatus,
		entity.RejectionReason, entity.WithdrawalReason,
		score, entity.ClassesAttended, entity.TotalClasses,
		entity.ApprovedBy, approvedAt,
		entity.CreatedAt.Format(dateFormat), entity.UpdatedAt.Format(dateFormat),
	)
	return err
}

// Save upserts an Enrollment without touching seat state.
// PRE: entity has been validated
// POST: Enrollment is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Enrollment) error {
	return upsertEnrollment(ctx, s.db, entity)
}

// SaveWithSeat upserts an Enrollment and moves the owning course's seat
// counter in the same transaction. A positive delta is guarded against the
// seat limit at the SQL level, so two concurrent approvals cannot both take
// the last seat. When the enrollment no longer references a course (history
// rows after a course delete) the seat step is skipped.
// PRE: entity has been validated; seatDelta is -1, 0 or +1
// POST: Enrollment and seat counter persisted atomically, or
// course.ErrSeatLimitExceeded and no change
func (s *SQLiteStore) SaveWithSeat(ctx context.Context, entity domain.Enrollment, seatDelta int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if entity.CourseID != "" && seatDelta != 0 {
		result, err := tx.ExecContext(ctx,
			`UPDATE course SET current_enrolled = MAX(current_enrolled + ?, 0)
			WHERE id = ? AND (? <= 0 OR current_enrolled < seat_limit)`,
			seatDelta, entity.CourseID, seatDelta)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			if seatDelta > 0 {
				return course.ErrSeatLimitExceeded
			}
			return course.ErrNotFound
		}
	}

	if err := upsertEnrollment(ctx, tx, entity); err != nil {
		return err
	}
	return tx.Commit()
}

// listWhereClause builds the WHERE clause and args for List/Count queries.
// The SBU filter joins through the student table.
func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.CourseID != "" {
		where += " AND e.course_id = ?"
		args = append(args, filter.CourseID)
	}
	if filter.StudentID != "" {
		where += " AND e.student_id = ?"
		args = append(args, filter.StudentID)
	}
	if filter.EligibilityStatus != "" {
		where += " AND e.eligibility_status = ?"
		args = append(args, filter.EligibilityStatus)
	}
	if filter.EligibleOnly {
		where += " AND e.eligibility_status = ?"
		args = append(args, domain.EligibilityEligible)
	}
	if filter.ApprovalStatus != "" {
		where += " AND e.approval_status = ?"
		args = append(args, filter.ApprovalStatus)
	}
	if filter.SBU != "" {
		where += " AND e.student_id IN (SELECT id FROM student WHERE sbu = ?)"
		args = append(args, filter.SBU)
	}
	return where, args
}

const prefixedColumns = "e.id, e.student_id, e.course_id, e.course_name, e.batch_code, e.eligibility_status, e.eligibility_reason, e.approval_status, e.completion_status, e.rejection_reason, e.withdrawal_reason, e.score, e.classes_attended, e.total_classes, e.approved_by, e.approved_at, e.created_at, e.updated_at"

// Count returns the total number of enrollments matching the filter.
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM enrollment e"+where, args...).Scan(&count)
	return count, err
}

// List retrieves a page of enrollments matching the filter, newest first.
// PRE: filter has valid parameters
// POST: Returns matching enrollments ordered by creation time descending
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Enrollment, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + prefixedColumns + " FROM enrollment e" + where + " ORDER BY e.created_at DESC, e.id"

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

	var results []domain.Enrollment
	for rows.Next() {
		entity, err := scanEnrollment(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
