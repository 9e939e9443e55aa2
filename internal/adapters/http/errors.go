package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"traindesk/internal/application/orchestrators"
	"traindesk/internal/domain/course"
	"traindesk/internal/domain/enrollment"
	"traindesk/internal/domain/mentor"
	"traindesk/internal/domain/student"
)

// apiError is the JSON error envelope returned by every endpoint.
type apiError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

// errMapping binds one domain sentinel to its machine-readable kind and HTTP
// status.
type errMapping struct {
	target error
	kind   string
	status int
}

var errMappings = []errMapping{
	{course.ErrNotFound, "NotFound", http.StatusNotFound},
	{enrollment.ErrNotFound, "NotFound", http.StatusNotFound},
	{mentor.ErrNotFound, "NotFound", http.StatusNotFound},
	{student.ErrNotFound, "NotFound", http.StatusNotFound},

	{course.ErrInvalidState, "InvalidState", http.StatusConflict},
	{course.ErrSeatLimitExceeded, "SeatLimitExceeded", http.StatusConflict},
	{course.ErrCourseNotDraft, "CourseNotDraft", http.StatusConflict},
	{course.ErrDuplicateBatch, "DuplicateBatch", http.StatusConflict},
	{course.ErrOverlappingBatch, "OverlappingBatch", http.StatusConflict},
	{course.ErrMentorNotAssigned, "MentorNotAssigned", http.StatusConflict},
	{enrollment.ErrInvalidTransition, "InvalidTransition", http.StatusConflict},
	{enrollment.ErrNotEligible, "NotEligible", http.StatusConflict},
	{enrollment.ErrDuplicate, "DuplicateEnrollment", http.StatusConflict},
	{student.ErrDuplicateID, "DuplicateEmployee", http.StatusConflict},
}

// validationErrors all map to the ValidationError kind.
var validationErrors = []error{
	course.ErrEmptyName,
	course.ErrEmptyBatchCode,
	course.ErrMissingStartDate,
	course.ErrInvalidStatus,
	course.ErrNegativeSeatLimit,
	course.ErrNegativeCost,
	course.ErrNegativeHours,
	course.ErrNegativeAmount,
	course.ErrEmptyActor,
	enrollment.ErrEmptyStudentID,
	enrollment.ErrEmptyCourseID,
	enrollment.ErrInvalidEligibility,
	enrollment.ErrInvalidApprovalStatus,
	enrollment.ErrInvalidCompletionStatus,
	enrollment.ErrEmptyWithdrawalReason,
	enrollment.ErrEmptyActor,
	enrollment.ErrScoreOutOfRange,
	mentor.ErrEmptyName,
	mentor.ErrInvalidEmail,
	mentor.ErrMissingStudentID,
	mentor.ErrUnexpectedStudent,
	student.ErrEmptyEmployeeID,
	student.ErrEmptyName,
	student.ErrInvalidEmail,
	student.ErrInvalidSBU,
	orchestrators.ErrUnknownDecision,
}

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error to an HTTP status and the error envelope.
// Unrecognised errors are logged and reported as a generic StorageError so
// persistence details never leak to the client (OWASP A05).
func writeError(w http.ResponseWriter, err error) {
	for _, m := range errMappings {
		if errors.Is(err, m.target) {
			writeJSON(w, m.status, errorResponse{apiError{Kind: m.kind, Message: err.Error()}})
			return
		}
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			writeJSON(w, http.StatusBadRequest, errorResponse{apiError{Kind: "ValidationError", Message: err.Error()}})
			return
		}
	}
	slog.Error("internal_error", "error", err.Error())
	writeJSON(w, http.StatusInternalServerError, errorResponse{apiError{Kind: "StorageError", Message: "internal server error"}})
}

// writeBadRequest reports a malformed request body or parameter.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{apiError{Kind: "ValidationError", Message: message}})
}
