package web

import (
	"net/http"
	"time"

	"traindesk/internal/application/listutil"
	"traindesk/internal/application/orchestrators"
	"traindesk/internal/application/projections"
	"traindesk/internal/domain/course"
)

// courseFilterKeys are the query parameters accepted by the course list.
// Free-text search rides on the q parameter.
var courseFilterKeys = []string{"status"}

// writeCourseDetail responds with the full course detail view. Mutations use
// it so every write returns the same shape as GET /api/courses/{id}.
func writeCourseDetail(w http.ResponseWriter, r *http.Request, courseID string, status int) {
	result, err := projections.QueryCourseDetail(r.Context(), courseID, projections.GetCourseDetailDeps{
		CourseStore: stores.CourseStore,
		MentorStore: stores.MentorStore,
		Now:         timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, result)
}

// handleCourseList handles GET /api/courses.
func handleCourseList(w http.ResponseWriter, r *http.Request) {
	params := listutil.ParseListParams(r.URL.Query(), courseFilterKeys)
	result, err := projections.QueryCourseList(r.Context(), projections.GetCourseListQuery{Params: params}, projections.GetCourseListDeps{
		CourseStore: stores.CourseStore,
		Now:         timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCourseBuckets handles GET /api/courses/buckets. An ?at= timestamp
// reclassifies the catalog as of that instant; ?from= and ?to= classify by
// overlap with a reporting window instead.
func handleCourseBuckets(w http.ResponseWriter, r *http.Request) {
	var at time.Time
	if v := r.URL.Query().Get("at"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			writeBadRequest(w, "at must be a date or RFC 3339 timestamp")
			return
		}
		at = t
	}

	var window *course.Window
	from, errFrom := parseDate(r.URL.Query().Get("from"))
	to, errTo := parseDate(r.URL.Query().Get("to"))
	if errFrom != nil || errTo != nil {
		writeBadRequest(w, "from and to must be dates or RFC 3339 timestamps")
		return
	}
	if !from.IsZero() || !to.IsZero() {
		if from.IsZero() || to.IsZero() || !from.Before(to) {
			writeBadRequest(w, "window requires from before to")
			return
		}
		window = &course.Window{Start: from, End: to}
	}

	result, err := projections.QueryCourseBuckets(r.Context(), projections.GetCourseBucketsQuery{At: at, Window: window}, projections.GetCourseBucketsDeps{
		CourseStore: stores.CourseStore,
		Now:         timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCourseDetail handles GET /api/courses/{id}.
func handleCourseDetail(w http.ResponseWriter, r *http.Request) {
	writeCourseDetail(w, r, r.PathValue("id"), http.StatusOK)
}

type courseRequest struct {
	Name                string  `json:"name"`
	BatchCode           string  `json:"batch_code"`
	Description         string  `json:"description"`
	Status              string  `json:"status"`
	StartDate           string  `json:"start_date"`
	EndDate             string  `json:"end_date"`
	SeatLimit           int     `json:"seat_limit"`
	TotalClassesOffered *int    `json:"total_classes_offered"`
	FoodCost            float64 `json:"food_cost"`
	OtherCost           float64 `json:"other_cost"`
}

// handleCreateCourse handles POST /api/courses.
func handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if err := strictDecode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		writeBadRequest(w, "start_date must be a date such as 2026-01-15")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeBadRequest(w, "end_date must be a date such as 2026-03-15")
		return
	}

	c, err := orchestrators.ExecuteCreateCourse(r.Context(), orchestrators.CreateCourseInput{
		Name:                req.Name,
		BatchCode:           req.BatchCode,
		Description:         req.Description,
		Status:              req.Status,
		StartDate:           start,
		EndDate:             end,
		SeatLimit:           req.SeatLimit,
		TotalClassesOffered: req.TotalClassesOffered,
		FoodCost:            req.FoodCost,
		OtherCost:           req.OtherCost,
	}, orchestrators.CreateCourseDeps{
		CourseStore: stores.CourseStore,
		GenerateID:  generateID,
		Now:         timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeCourseDetail(w, r, c.ID, http.StatusCreated)
}

// handleUpdateCourse handles PUT /api/courses/{id}. Costs are excluded here;
// they have their own endpoint so updates cannot silently bypass draft
// staging.
func handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                string `json:"name"`
		BatchCode           string `json:"batch_code"`
		Description         string `json:"description"`
		Status              string `json:"status"`
		StartDate           string `json:"start_date"`
		EndDate             string `json:"end_date"`
		SeatLimit           int    `json:"seat_limit"`
		TotalClassesOffered *int   `json:"total_classes_offered"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		writeBadRequest(w, "start_date must be a date such as 2026-01-15")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeBadRequest(w, "end_date must be a date such as 2026-03-15")
		return
	}

	c, err := orchestrators.ExecuteUpdateCourse(r.Context(), orchestrators.UpdateCourseInput{
		CourseID:            r.PathValue("id"),
		Name:                req.Name,
		BatchCode:           req.BatchCode,
		Description:         req.Description,
		Status:              req.Status,
		StartDate:           start,
		EndDate:             end,
		SeatLimit:           req.SeatLimit,
		TotalClassesOffered: req.TotalClassesOffered,
	}, orchestrators.UpdateCourseDeps{
		CourseStore: stores.CourseStore,
		Now:         timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeCourseDetail(w, r, c.ID, http.StatusOK)
}

// handleDeleteCourse handles DELETE /api/courses/{id}.
func handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteDeleteCourse(r.Context(), r.PathValue("id"), orchestrators.DeleteCourseDeps{
		CourseStore: stores.CourseStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCourseDraft handles GET /api/courses/{id}/draft. A course without
// staged changes reports not found.
func handleCourseDraft(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryCourseDetail(r.Context(), r.PathValue("id"), projections.GetCourseDetailDeps{
		CourseStore: stores.CourseStore,
		MentorStore: stores.MentorStore,
		Now:         timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if result.Draft == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{apiError{Kind: "NotFound", Message: "course has no draft"}})
		return
	}
	writeJSON(w, http.StatusOK, result.Draft)
}

type draftAssignmentRequest struct {
	MentorID    string  `json:"mentor_id"`
	HoursTaught float64 `json:"hours_taught"`
	AmountPaid  float64 `json:"amount_paid"`
}

// handleSaveDraft handles PUT /api/courses/{id}/draft. The payload replaces
// the staged state wholesale.
func handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MentorAssignments []draftAssignmentRequest `json:"mentor_assignments"`
		FoodCost          *float64                 `json:"food_cost"`
		OtherCost         *float64                 `json:"other_cost"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	assignments := make([]course.DraftAssignment, 0, len(req.MentorAssignments))
	for _, a := range req.MentorAssignments {
		assignments = append(assignments, course.DraftAssignment{
			MentorID:    a.MentorID,
			HoursTaught: a.HoursTaught,
			AmountPaid:  a.AmountPaid,
		})
	}

	c, err := orchestrators.ExecuteSaveDraft(r.Context(), orchestrators.SaveDraftInput{
		CourseID:          r.PathValue("id"),
		MentorAssignments: assignments,
		FoodCost:          req.FoodCost,
		OtherCost:         req.OtherCost,
	}, orchestrators.SaveDraftDeps{
		CourseStore: stores.CourseStore,
		Now:         timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeCourseDetail(w, r, c.ID, http.StatusOK)
}

// handleApproveCourse handles POST /api/courses/{id}/approve.
func handleApproveCourse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ApprovedBy string `json:"approved_by"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	c, err := orchestrators.ExecuteApproveCourse(r.Context(), orchestrators.ApproveCourseInput{
		CourseID:   r.PathValue("id"),
		ApprovedBy: actorOrHeader(r, req.ApprovedBy),
	}, orchestrators.ApproveCourseDeps{
		CourseStore: stores.CourseStore,
		Now:         timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeCourseDetail(w, r, c.ID, http.StatusOK)
}

// handleAssignMentor handles POST /api/courses/{id}/mentors.
func handleAssignMentor(w http.ResponseWriter, r *http.Request) {
	var req draftAssignmentRequest
	if err := strictDecode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	c, err := orchestrators.ExecuteAssignMentor(r.Context(), orchestrators.AssignMentorInput{
		CourseID:    r.PathValue("id"),
		MentorID:    req.MentorID,
		HoursTaught: req.HoursTaught,
		AmountPaid:  req.AmountPaid,
	}, orchestrators.AssignMentorDeps{
		CourseStore: stores.CourseStore,
		MentorStore: stores.MentorStore,
		GenerateID:  generateID,
		Now:         timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeCourseDetail(w, r, c.ID, http.StatusOK)
}

// handleRemoveMentor handles DELETE /api/courses/{id}/mentors/{mentorID}.
func handleRemoveMentor(w http.ResponseWriter, r *http.Request) {
	c, err := orchestrators.ExecuteRemoveMentor(r.Context(), orchestrators.RemoveMentorInput{
		CourseID: r.PathValue("id"),
		MentorID: r.PathValue("mentorID"),
	}, orchestrators.RemoveMentorDeps{
		CourseStore: stores.CourseStore,
		Now:         timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeCourseDetail(w, r, c.ID, http.StatusOK)
}

// handleSetCosts handles PUT /api/courses/{id}/costs. Absent fields are left
// unchanged; an explicit zero is a real value.
func handleSetCosts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FoodCost  *float64 `json:"food_cost"`
		OtherCost *float64 `json:"other_cost"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	c, err := orchestrators.ExecuteSetCosts(r.Context(), orchestrators.SetCostsInput{
		CourseID:  r.PathValue("id"),
		FoodCost:  req.FoodCost,
		OtherCost: req.OtherCost,
	}, orchestrators.SetCostsDeps{
		CourseStore: stores.CourseStore,
		Now:         timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeCourseDetail(w, r, c.ID, http.StatusOK)
}
