package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"traindesk/internal/domain/enrollment"
)

// ImportRow is one already-validated row from an upstream import pipeline.
// Eligibility has been computed before the row reaches this system.
type ImportRow struct {
	StudentID         string
	CourseID          string
	EligibilityStatus string
	EligibilityReason string
}

// ImportResult summarizes an import run.
type ImportResult struct {
	Created int
	Skipped int // duplicates
	Failed  []string
}

// ExecuteImportEnrollments creates pending enrollments from validated rows.
// Duplicate rows are skipped; other failures are collected per row without
// aborting the run.
// POST: every row is created, counted as a duplicate, or reported in Failed
func ExecuteImportEnrollments(ctx context.Context, rows []ImportRow, deps CreateEnrollmentDeps) (ImportResult, error) {
	var result ImportResult
	for i, row := range rows {
		_, err := ExecuteCreateEnrollment(ctx, CreateEnrollmentInput{
			StudentID:         row.StudentID,
			CourseID:          row.CourseID,
			EligibilityStatus: row.EligibilityStatus,
			EligibilityReason: row.EligibilityReason,
		}, deps)
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, enrollment.ErrDuplicate):
			result.Skipped++
		default:
			result.Failed = append(result.Failed, fmt.Sprintf("row %d (student %s): %v", i+1, row.StudentID, err))
		}
	}

	slog.Info("enrollment_event", "event", "enrollments_imported", "created", result.Created, "skipped", result.Skipped, "failed", len(result.Failed))
	return result, nil
}
