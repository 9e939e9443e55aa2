package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"traindesk/internal/application/projections"
)

// timeNow returns the current time. Tests can replace it for deterministic
// bucket and timestamp behavior.
var timeNow = time.Now

// generateID returns a new unique ID for created records.
var generateID = func() string { return uuid.New().String() }

// registerRoutes wires every endpoint on the mux. Literal segments such as
// /buckets take precedence over {id} matches, so the registration order does
// not matter.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/dashboard", handleDashboard)
	mux.HandleFunc("GET /api/perf", handlePerf)

	mux.HandleFunc("GET /api/courses", handleCourseList)
	mux.HandleFunc("POST /api/courses", handleCreateCourse)
	mux.HandleFunc("GET /api/courses/buckets", handleCourseBuckets)
	mux.HandleFunc("GET /api/courses/{id}", handleCourseDetail)
	mux.HandleFunc("PUT /api/courses/{id}", handleUpdateCourse)
	mux.HandleFunc("DELETE /api/courses/{id}", handleDeleteCourse)
	mux.HandleFunc("GET /api/courses/{id}/draft", handleCourseDraft)
	mux.HandleFunc("PUT /api/courses/{id}/draft", handleSaveDraft)
	mux.HandleFunc("POST /api/courses/{id}/approve", handleApproveCourse)
	mux.HandleFunc("POST /api/courses/{id}/mentors", handleAssignMentor)
	mux.HandleFunc("DELETE /api/courses/{id}/mentors/{mentorID}", handleRemoveMentor)
	mux.HandleFunc("PUT /api/courses/{id}/costs", handleSetCosts)

	mux.HandleFunc("GET /api/enrollments", handleEnrollmentList)
	mux.HandleFunc("GET /api/enrollments/eligible", handleEligibleEnrollments)
	mux.HandleFunc("POST /api/enrollments", handleCreateEnrollment)
	mux.HandleFunc("POST /api/enrollments/import", handleImportEnrollments)
	mux.HandleFunc("POST /api/enrollments/bulk-decide", handleBulkDecide)
	mux.HandleFunc("GET /api/enrollments/{id}", handleEnrollmentDetail)
	mux.HandleFunc("POST /api/enrollments/{id}/decide", handleDecideEnrollment)
	mux.HandleFunc("POST /api/enrollments/{id}/withdraw", handleWithdrawEnrollment)
	mux.HandleFunc("POST /api/enrollments/{id}/reapprove", handleReapproveEnrollment)

	mux.HandleFunc("GET /api/students", handleStudentList)
	mux.HandleFunc("POST /api/students", handleCreateStudent)
	mux.HandleFunc("GET /api/students/{id}", handleStudentDetail)

	mux.HandleFunc("GET /api/mentors", handleMentorList)
	mux.HandleFunc("POST /api/mentors", handleCreateMentor)
	mux.HandleFunc("GET /api/mentors/{id}", handleMentorDetail)
}

// strictDecode decodes a JSON request body into v, rejecting unknown fields
// and trailing data.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// actorOrHeader returns the actor from the request body field, falling back
// to the X-Actor header for clients that authenticate out of band.
func actorOrHeader(r *http.Request, bodyActor string) string {
	if bodyActor != "" {
		return bodyActor
	}
	return r.Header.Get("X-Actor")
}

// parseDate accepts a date-only value or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// handleHealth handles GET /api/health.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDashboard handles GET /api/dashboard.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryDashboard(r.Context(), projections.GetDashboardDeps{
		CourseStore:     stores.CourseStore,
		EnrollmentStore: stores.EnrollmentStore,
		StudentStore:    stores.StudentStore,
		MentorStore:     stores.MentorStore,
		Now:             timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handlePerf handles GET /api/perf. The window defaults to the last
// 15 minutes; ?window=1h widens it.
func handlePerf(w http.ResponseWriter, r *http.Request) {
	window := 15 * time.Minute
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeBadRequest(w, "window must be a positive duration such as 15m or 1h")
			return
		}
		window = d
	}
	snapshot := perfCollector.Snapshot(timeNow().Add(-window), 10)
	writeJSON(w, http.StatusOK, snapshot)
}
