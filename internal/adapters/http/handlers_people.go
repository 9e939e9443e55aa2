package web

import (
	"net/http"

	mentorStore "traindesk/internal/adapters/storage/mentor"
	studentStore "traindesk/internal/adapters/storage/student"
	"traindesk/internal/application/listutil"
	"traindesk/internal/application/orchestrators"
)

// handleStudentList handles GET /api/students.
func handleStudentList(w http.ResponseWriter, r *http.Request) {
	params := listutil.ParseListParams(r.URL.Query(), []string{"sbu"})
	filter := studentStore.ListFilter{
		SBU:    params.Filters["sbu"],
		Search: params.Search,
	}

	total, err := stores.StudentStore.Count(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	pageInfo := listutil.NewPageInfo(params.Page, params.PerPage, total)
	filter.Limit = pageInfo.PerPage
	filter.Offset = pageInfo.Offset()

	students, err := stores.StudentStore.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]studentJSON, 0, len(students))
	for _, s := range students {
		views = append(views, newStudentJSON(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"students":  views,
		"page_info": pageInfo,
	})
}

// handleStudentDetail handles GET /api/students/{id}.
func handleStudentDetail(w http.ResponseWriter, r *http.Request) {
	s, err := stores.StudentStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newStudentJSON(s))
}

// handleCreateStudent handles POST /api/students.
func handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID      string `json:"employee_id"`
		Name            string `json:"name"`
		Email           string `json:"email"`
		SBU             string `json:"sbu"`
		Designation     string `json:"designation"`
		ExperienceYears int    `json:"experience_years"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	s, err := orchestrators.ExecuteCreateStudent(r.Context(), orchestrators.CreateStudentInput{
		EmployeeID:      req.EmployeeID,
		Name:            req.Name,
		Email:           req.Email,
		SBU:             req.SBU,
		Designation:     req.Designation,
		ExperienceYears: req.ExperienceYears,
	}, orchestrators.CreateStudentDeps{
		StudentStore: stores.StudentStore,
		GenerateID:   generateID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newStudentJSON(s))
}

// handleMentorList handles GET /api/mentors. ?kind=internal or
// ?kind=external narrows the list.
func handleMentorList(w http.ResponseWriter, r *http.Request) {
	params := listutil.ParseListParams(r.URL.Query(), []string{"kind"})
	filter := mentorStore.ListFilter{
		InternalOnly: params.Filters["kind"] == "internal",
		ExternalOnly: params.Filters["kind"] == "external",
		Search:       params.Search,
	}

	total, err := stores.MentorStore.Count(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	pageInfo := listutil.NewPageInfo(params.Page, params.PerPage, total)
	filter.Limit = pageInfo.PerPage
	filter.Offset = pageInfo.Offset()

	mentors, err := stores.MentorStore.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]mentorJSON, 0, len(mentors))
	for _, m := range mentors {
		views = append(views, newMentorJSON(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mentors":   views,
		"page_info": pageInfo,
	})
}

// handleMentorDetail handles GET /api/mentors/{id}.
func handleMentorDetail(w http.ResponseWriter, r *http.Request) {
	m, err := stores.MentorStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newMentorJSON(m))
}

// handleCreateMentor handles POST /api/mentors. Internal mentors must
// reference an existing employee record.
func handleCreateMentor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		IsInternal  bool   `json:"is_internal"`
		StudentID   string `json:"student_id"`
		SBU         string `json:"sbu"`
		Designation string `json:"designation"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	m, err := orchestrators.ExecuteCreateMentor(r.Context(), orchestrators.CreateMentorInput{
		Name:        req.Name,
		Email:       req.Email,
		IsInternal:  req.IsInternal,
		StudentID:   req.StudentID,
		SBU:         req.SBU,
		Designation: req.Designation,
	}, orchestrators.CreateMentorDeps{
		MentorStore:  stores.MentorStore,
		StudentStore: stores.StudentStore,
		GenerateID:   generateID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMentorJSON(m))
}
