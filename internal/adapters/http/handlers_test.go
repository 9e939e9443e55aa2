package web

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"traindesk/internal/adapters/http/perf"
	"traindesk/internal/adapters/storage"
	courseStore "traindesk/internal/adapters/storage/course"
	enrollmentStore "traindesk/internal/adapters/storage/enrollment"
	mentorStore "traindesk/internal/adapters/storage/mentor"
	studentStore "traindesk/internal/adapters/storage/student"
	"traindesk/internal/application/projections"
	"traindesk/internal/domain/course"
	"traindesk/internal/domain/enrollment"
)

// newTestHandler wires the full mux over an in-memory database.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// An in-memory database exists per connection; keep the pool at one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	RateLimitPerSecond = 10000 // keep the limiter out of the way

	s := &Stores{
		CourseStore:     courseStore.NewSQLiteStore(db),
		EnrollmentStore: enrollmentStore.NewSQLiteStore(db),
		StudentStore:    studentStore.NewSQLiteStore(db),
		MentorStore:     mentorStore.NewSQLiteStore(db),
	}
	return NewMux(s, perf.NewCollector(perf.DefaultRingSize))
}

// doJSON performs one request against the handler and decodes the response
// body into out when out is non-nil.
func doJSON(t *testing.T, h http.Handler, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return rec
}

func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func errorKind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Error.Kind
}

func createCourse(t *testing.T, h http.Handler, name, batch, status string, start time.Time, seatLimit int) projections.CourseDetailResult {
	t.Helper()
	var detail projections.CourseDetailResult
	rec := doJSON(t, h, http.MethodPost, "/api/courses", map[string]any{
		"name":                  name,
		"batch_code":            batch,
		"status":                status,
		"start_date":            start.Format("2006-01-02"),
		"seat_limit":            seatLimit,
		"total_classes_offered": 10,
	}, &detail)
	mustStatus(t, rec, http.StatusCreated)
	return detail
}

func createStudent(t *testing.T, h http.Handler, employeeID, name string) studentJSON {
	t.Helper()
	var s studentJSON
	rec := doJSON(t, h, http.MethodPost, "/api/students", map[string]any{
		"employee_id": employeeID,
		"name":        name,
		"email":       employeeID + "@corp.example",
		"sbu":         "IT",
	}, &s)
	mustStatus(t, rec, http.StatusCreated)
	return s
}

func createEnrollment(t *testing.T, h http.Handler, studentID, courseID string) enrollmentJSON {
	t.Helper()
	var e enrollmentJSON
	rec := doJSON(t, h, http.MethodPost, "/api/enrollments", map[string]any{
		"student_id":         studentID,
		"course_id":          courseID,
		"eligibility_status": enrollment.EligibilityEligible,
	}, &e)
	mustStatus(t, rec, http.StatusCreated)
	return e
}

// TestAPI_CourseLifecycle walks a course from planning through approval and
// deletion, checking that mutations respond with the detail view.
func TestAPI_CourseLifecycle(t *testing.T) {
	h := newTestHandler(t)
	start := time.Now().AddDate(0, 1, 0)

	detail := createCourse(t, h, "Go for Backend Engineers", "GO-01", course.StatusDraft, start, 20)
	if detail.Status != course.StatusDraft {
		t.Fatalf("status = %q, want draft", detail.Status)
	}

	var m mentorJSON
	rec := doJSON(t, h, http.MethodPost, "/api/mentors", map[string]any{
		"name":        "Farhana Rahman",
		"email":       "farhana@vendor.example",
		"is_internal": false,
	}, &m)
	mustStatus(t, rec, http.StatusCreated)

	// Assignments on a planning course land on the draft.
	rec = doJSON(t, h, http.MethodPost, "/api/courses/"+detail.ID+"/mentors", map[string]any{
		"mentor_id":    m.ID,
		"hours_taught": 12,
		"amount_paid":  6000,
	}, &detail)
	mustStatus(t, rec, http.StatusOK)
	if detail.Draft == nil || len(detail.Mentors) != 1 || !detail.Mentors[0].Staged {
		t.Fatalf("expected one staged assignment, got %+v", detail)
	}

	rec = doJSON(t, h, http.MethodPut, "/api/courses/"+detail.ID+"/costs", map[string]any{
		"food_cost": 150.0,
	}, &detail)
	mustStatus(t, rec, http.StatusOK)
	if detail.FoodCost != 150 {
		t.Fatalf("effective food cost = %v, want 150", detail.FoodCost)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/courses/"+detail.ID+"/approve", map[string]any{
		"approved_by": "training-admin",
	}, &detail)
	mustStatus(t, rec, http.StatusOK)
	if detail.Status != course.StatusOngoing {
		t.Fatalf("status after approval = %q, want ongoing", detail.Status)
	}
	if detail.Draft != nil {
		t.Fatal("draft should be cleared by approval")
	}
	if detail.FoodCost != 150 || detail.TotalMentorCost != 6000 || detail.TotalTrainingCost != 6150 {
		t.Fatalf("costs after approval = %v/%v/%v", detail.FoodCost, detail.TotalMentorCost, detail.TotalTrainingCost)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/courses/"+detail.ID, nil, nil)
	mustStatus(t, rec, http.StatusNoContent)
	rec = doJSON(t, h, http.MethodGet, "/api/courses/"+detail.ID, nil, nil)
	mustStatus(t, rec, http.StatusNotFound)
}

// TestAPI_EnrollmentFlow covers the approval state machine and seat
// accounting over the wire.
func TestAPI_EnrollmentFlow(t *testing.T) {
	h := newTestHandler(t)
	start := time.Now().AddDate(0, 0, -7)

	detail := createCourse(t, h, "Effective Business Writing", "EBW-01", course.StatusOngoing, start, 1)
	s1 := createStudent(t, h, "EMP-1001", "Nusrat Jahan")
	s2 := createStudent(t, h, "EMP-1002", "Rafiul Islam")

	e1 := createEnrollment(t, h, s1.ID, detail.ID)
	if e1.ApprovalStatus != enrollment.ApprovalPending {
		t.Fatalf("new enrollment status = %q, want Pending", e1.ApprovalStatus)
	}

	rec := doJSON(t, h, http.MethodPost, "/api/enrollments/"+e1.ID+"/decide", map[string]any{
		"decision":   "approve",
		"decided_by": "training-admin",
	}, &e1)
	mustStatus(t, rec, http.StatusOK)
	if e1.ApprovalStatus != enrollment.ApprovalApproved || e1.ApprovedAt == nil {
		t.Fatalf("after approve = %+v", e1)
	}

	// The single seat is taken; the next approval must fail and leave the
	// enrollment pending.
	e2 := createEnrollment(t, h, s2.ID, detail.ID)
	rec = doJSON(t, h, http.MethodPost, "/api/enrollments/"+e2.ID+"/decide", map[string]any{
		"decision":   "approve",
		"decided_by": "training-admin",
	}, nil)
	mustStatus(t, rec, http.StatusConflict)
	if kind := errorKind(t, rec); kind != "SeatLimitExceeded" {
		t.Fatalf("kind = %q, want SeatLimitExceeded", kind)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/enrollments/"+e1.ID+"/withdraw", map[string]any{
		"reason":     "schedule clash",
		"decided_by": "training-admin",
	}, &e1)
	mustStatus(t, rec, http.StatusOK)
	if e1.ApprovalStatus != enrollment.ApprovalWithdrawn {
		t.Fatalf("after withdraw = %q", e1.ApprovalStatus)
	}

	// The released seat lets the second enrollment through now.
	rec = doJSON(t, h, http.MethodPost, "/api/enrollments/"+e2.ID+"/decide", map[string]any{
		"decision":   "approve",
		"decided_by": "training-admin",
	}, nil)
	mustStatus(t, rec, http.StatusOK)

	rec = doJSON(t, h, http.MethodPost, "/api/enrollments/"+e1.ID+"/reapprove", map[string]any{
		"decided_by": "training-admin",
	}, nil)
	mustStatus(t, rec, http.StatusConflict)
}

// TestAPI_EnrollmentWorkQueue verifies the eligible=true shortcut.
func TestAPI_EnrollmentWorkQueue(t *testing.T) {
	h := newTestHandler(t)
	start := time.Now().AddDate(0, 0, -7)

	detail := createCourse(t, h, "Data Analysis with SQL", "SQL-01", course.StatusOngoing, start, 20)
	s1 := createStudent(t, h, "EMP-2001", "Tanvir Ahmed")
	s2 := createStudent(t, h, "EMP-2002", "Sadia Khanam")

	createEnrollment(t, h, s1.ID, detail.ID)
	var blocked enrollmentJSON
	rec := doJSON(t, h, http.MethodPost, "/api/enrollments", map[string]any{
		"student_id":         s2.ID,
		"course_id":          detail.ID,
		"eligibility_status": enrollment.EligibilityAnnualLimit,
		"eligibility_reason": "Already attended 3 trainings this year",
	}, &blocked)
	mustStatus(t, rec, http.StatusCreated)

	var list projections.EnrollmentListResult
	rec = doJSON(t, h, http.MethodGet, "/api/enrollments?eligible=true&approval_status="+
		"Pending", nil, &list)
	mustStatus(t, rec, http.StatusOK)
	if len(list.Enrollments) != 1 || list.Enrollments[0].StudentID != s1.ID {
		t.Fatalf("work queue = %+v, want only the eligible row", list.Enrollments)
	}

	var full projections.EnrollmentListResult
	rec = doJSON(t, h, http.MethodGet, "/api/enrollments", nil, &full)
	mustStatus(t, rec, http.StatusOK)
	if len(full.Enrollments) != 2 {
		t.Fatalf("unfiltered rows = %d, want 2", len(full.Enrollments))
	}
}

// TestAPI_ErrorMapping checks the JSON error envelope for each error class.
func TestAPI_ErrorMapping(t *testing.T) {
	h := newTestHandler(t)
	start := time.Now().AddDate(0, 1, 0)
	createCourse(t, h, "Go for Backend Engineers", "GO-01", course.StatusDraft, start, 20)

	rec := doJSON(t, h, http.MethodGet, "/api/courses/no-such-id", nil, nil)
	mustStatus(t, rec, http.StatusNotFound)
	if kind := errorKind(t, rec); kind != "NotFound" {
		t.Errorf("kind = %q, want NotFound", kind)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/courses", map[string]any{
		"batch_code": "GO-02",
		"start_date": start.Format("2006-01-02"),
	}, nil)
	mustStatus(t, rec, http.StatusBadRequest)
	if kind := errorKind(t, rec); kind != "ValidationError" {
		t.Errorf("kind = %q, want ValidationError", kind)
	}

	// Same (name, batch code) pair again.
	rec = doJSON(t, h, http.MethodPost, "/api/courses", map[string]any{
		"name":       "Go for Backend Engineers",
		"batch_code": "GO-01",
		"status":     course.StatusDraft,
		"start_date": start.Format("2006-01-02"),
		"seat_limit": 20,
	}, nil)
	mustStatus(t, rec, http.StatusConflict)
	if kind := errorKind(t, rec); kind != "DuplicateBatch" {
		t.Errorf("kind = %q, want DuplicateBatch", kind)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/courses", map[string]any{
		"name":          "Another",
		"batch_code":    "X-01",
		"start_date":    start.Format("2006-01-02"),
		"unknown_field": true,
	}, nil)
	mustStatus(t, rec, http.StatusBadRequest)
}

// TestAPI_DecisionRequiresActor rejects decisions without an actor in body
// or header.
func TestAPI_DecisionRequiresActor(t *testing.T) {
	h := newTestHandler(t)
	start := time.Now().AddDate(0, 0, -7)

	detail := createCourse(t, h, "Effective Business Writing", "EBW-01", course.StatusOngoing, start, 5)
	s := createStudent(t, h, "EMP-3001", "Mahmudul Hasan")
	e := createEnrollment(t, h, s.ID, detail.ID)

	rec := doJSON(t, h, http.MethodPost, "/api/enrollments/"+e.ID+"/decide", map[string]any{
		"decision": "approve",
	}, nil)
	mustStatus(t, rec, http.StatusBadRequest)

	// The header fallback satisfies the actor requirement.
	var buf bytes.Buffer
	fmt.Fprint(&buf, `{"decision":"approve"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/enrollments/"+e.ID+"/decide", &buf)
	req.Header.Set("X-Actor", "training-admin")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	mustStatus(t, rec, http.StatusOK)
}

// TestAPI_CourseBuckets verifies the bucket endpoint and the ?at= override.
func TestAPI_CourseBuckets(t *testing.T) {
	h := newTestHandler(t)
	now := time.Now()

	createCourse(t, h, "Go for Backend Engineers", "GO-01", "", now.AddDate(0, 1, 0), 20)
	createCourse(t, h, "Effective Business Writing", "EBW-01", "", now.AddDate(0, 0, -7), 20)

	var buckets projections.CourseBucketsResult
	rec := doJSON(t, h, http.MethodGet, "/api/courses/buckets", nil, &buckets)
	mustStatus(t, rec, http.StatusOK)
	if len(buckets.Planning) != 1 || len(buckets.Ongoing) != 1 || len(buckets.Completed) != 0 {
		t.Fatalf("buckets = %d/%d/%d, want 1/1/0",
			len(buckets.Planning), len(buckets.Ongoing), len(buckets.Completed))
	}

	at := now.AddDate(0, 2, 0).Format(time.RFC3339)
	rec = doJSON(t, h, http.MethodGet, "/api/courses/buckets?at="+at, nil, &buckets)
	mustStatus(t, rec, http.StatusOK)
	if len(buckets.Planning) != 0 || len(buckets.Ongoing) != 2 {
		t.Fatalf("buckets at +2mo = %d planning, %d ongoing, want 0/2",
			len(buckets.Planning), len(buckets.Ongoing))
	}

	rec = doJSON(t, h, http.MethodGet, "/api/courses/buckets?at=not-a-date", nil, nil)
	mustStatus(t, rec, http.StatusBadRequest)
}

// TestAPI_Health exercises the liveness endpoint through the middleware
// chain.
func TestAPI_Health(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/api/health", nil, nil)
	mustStatus(t, rec, http.StatusOK)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("nosniff header = %q", got)
	}
}

// TestAPI_Perf drives real traffic through the timed mux and checks the
// snapshot endpoint reports it in the wire shape clients consume.
func TestAPI_Perf(t *testing.T) {
	h := newTestHandler(t)
	doJSON(t, h, http.MethodGet, "/api/health", nil, nil)
	doJSON(t, h, http.MethodGet, "/api/courses", nil, nil)

	var snap struct {
		Since         time.Time `json:"since"`
		TotalRequests int64     `json:"total_requests"`
		SlowestPaths  []struct {
			Path  string  `json:"path"`
			AvgMs float64 `json:"avg_ms"`
			Count int     `json:"count"`
		} `json:"slowest_paths"`
	}
	rec := doJSON(t, h, http.MethodGet, "/api/perf?window=1h", nil, &snap)
	mustStatus(t, rec, http.StatusOK)

	if snap.TotalRequests < 2 {
		t.Errorf("total_requests = %d, want at least the two warm-up calls", snap.TotalRequests)
	}
	if snap.Since.IsZero() {
		t.Error("since must carry the window start")
	}
	paths := make(map[string]bool)
	for _, p := range snap.SlowestPaths {
		paths[p.Path] = true
		if p.Count < 1 {
			t.Errorf("path %s count = %d, want >= 1", p.Path, p.Count)
		}
	}
	if !paths["GET /api/health"] || !paths["GET /api/courses"] {
		t.Errorf("slowest_paths = %v, want the recorded routes", paths)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/perf?window=banana", nil, nil)
	mustStatus(t, rec, http.StatusBadRequest)
}
