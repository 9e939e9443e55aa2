package web

import (
	"net/http"

	"traindesk/internal/application/listutil"
	"traindesk/internal/application/orchestrators"
	"traindesk/internal/application/projections"
	"traindesk/internal/domain/enrollment"
)

// enrollmentFilterKeys are the query parameters accepted by the enrollment
// list.
var enrollmentFilterKeys = []string{"course_id", "student_id", "eligibility_status", "approval_status", "sbu"}

// notifyDeps builds the notification dependencies from the configured email
// sender. A nil sender disables notifications without failing decisions.
func notifyDeps() orchestrators.NotifyDeps {
	return orchestrators.NotifyDeps{
		Sender:       emailSender,
		StudentStore: stores.StudentStore,
		From:         emailFromAddress,
		ReplyTo:      emailReplyTo,
	}
}

func decideDeps() orchestrators.DecideEnrollmentDeps {
	return orchestrators.DecideEnrollmentDeps{
		EnrollmentStore: stores.EnrollmentStore,
		Notify:          notifyDeps(),
		Now:             timeNow,
	}
}

// handleEnrollmentList handles GET /api/enrollments. ?eligible=true narrows
// the list to the approval work queue.
func handleEnrollmentList(w http.ResponseWriter, r *http.Request) {
	params := listutil.ParseListParams(r.URL.Query(), enrollmentFilterKeys)
	result, err := projections.QueryEnrollmentList(r.Context(), projections.GetEnrollmentListQuery{
		Params:       params,
		EligibleOnly: r.URL.Query().Get("eligible") == "true",
	}, projections.GetEnrollmentListDeps{
		EnrollmentStore: stores.EnrollmentStore,
		StudentStore:    stores.StudentStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleEligibleEnrollments handles GET /api/enrollments/eligible, the
// approval work queue: Eligible students still awaiting a decision.
func handleEligibleEnrollments(w http.ResponseWriter, r *http.Request) {
	params := listutil.ParseListParams(r.URL.Query(), enrollmentFilterKeys)
	if params.Filters["approval_status"] == "" {
		params.Filters["approval_status"] = enrollment.ApprovalPending
	}
	result, err := projections.QueryEnrollmentList(r.Context(), projections.GetEnrollmentListQuery{
		Params:       params,
		EligibleOnly: true,
	}, projections.GetEnrollmentListDeps{
		EnrollmentStore: stores.EnrollmentStore,
		StudentStore:    stores.StudentStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleEnrollmentDetail handles GET /api/enrollments/{id}.
func handleEnrollmentDetail(w http.ResponseWriter, r *http.Request) {
	e, err := stores.EnrollmentStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEnrollmentJSON(e))
}

// handleCreateEnrollment handles POST /api/enrollments. The eligibility
// verdict is computed upstream and recorded verbatim.
func handleCreateEnrollment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID         string `json:"student_id"`
		CourseID          string `json:"course_id"`
		EligibilityStatus string `json:"eligibility_status"`
		EligibilityReason string `json:"eligibility_reason"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	e, err := orchestrators.ExecuteCreateEnrollment(r.Context(), orchestrators.CreateEnrollmentInput{
		StudentID:         req.StudentID,
		CourseID:          req.CourseID,
		EligibilityStatus: req.EligibilityStatus,
		EligibilityReason: req.EligibilityReason,
	}, createEnrollmentDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newEnrollmentJSON(e))
}

func createEnrollmentDeps() orchestrators.CreateEnrollmentDeps {
	return orchestrators.CreateEnrollmentDeps{
		EnrollmentStore: stores.EnrollmentStore,
		CourseStore:     stores.CourseStore,
		StudentStore:    stores.StudentStore,
		GenerateID:      generateID,
		Now:             timeNow,
	}
}

// handleImportEnrollments handles POST /api/enrollments/import. Rows arrive
// pre-validated from the upstream eligibility pipeline; duplicates are
// skipped and per-row failures collected without aborting the run.
func handleImportEnrollments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rows []struct {
			StudentID         string `json:"student_id"`
			CourseID          string `json:"course_id"`
			EligibilityStatus string `json:"eligibility_status"`
			EligibilityReason string `json:"eligibility_reason"`
		} `json:"rows"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	rows := make([]orchestrators.ImportRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, orchestrators.ImportRow{
			StudentID:         row.StudentID,
			CourseID:          row.CourseID,
			EligibilityStatus: row.EligibilityStatus,
			EligibilityReason: row.EligibilityReason,
		})
	}

	result, err := orchestrators.ExecuteImportEnrollments(r.Context(), rows, createEnrollmentDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"created": result.Created,
		"skipped": result.Skipped,
		"failed":  result.Failed,
	})
}

// handleDecideEnrollment handles POST /api/enrollments/{id}/decide.
func handleDecideEnrollment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Decision  string `json:"decision"`
		Reason    string `json:"reason"`
		DecidedBy string `json:"decided_by"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	err := orchestrators.ExecuteDecideEnrollment(r.Context(), orchestrators.DecideEnrollmentInput{
		EnrollmentID: r.PathValue("id"),
		Decision:     req.Decision,
		Reason:       req.Reason,
		DecidedBy:    actorOrHeader(r, req.DecidedBy),
	}, decideDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	e, err := stores.EnrollmentStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEnrollmentJSON(e))
}

// handleWithdrawEnrollment handles POST /api/enrollments/{id}/withdraw.
func handleWithdrawEnrollment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason    string `json:"reason"`
		DecidedBy string `json:"decided_by"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	err := orchestrators.ExecuteWithdrawEnrollment(r.Context(), orchestrators.WithdrawEnrollmentInput{
		EnrollmentID: r.PathValue("id"),
		Reason:       req.Reason,
		DecidedBy:    actorOrHeader(r, req.DecidedBy),
	}, decideDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	e, err := stores.EnrollmentStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEnrollmentJSON(e))
}

// handleReapproveEnrollment handles POST /api/enrollments/{id}/reapprove.
func handleReapproveEnrollment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DecidedBy string `json:"decided_by"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	err := orchestrators.ExecuteReapproveEnrollment(r.Context(), orchestrators.ReapproveEnrollmentInput{
		EnrollmentID: r.PathValue("id"),
		DecidedBy:    actorOrHeader(r, req.DecidedBy),
	}, decideDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	e, err := stores.EnrollmentStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEnrollmentJSON(e))
}

// handleBulkDecide handles POST /api/enrollments/bulk-decide. Items fail
// independently; the response reports how many succeeded and why the rest
// did not.
func handleBulkDecide(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Decisions []struct {
			EnrollmentID string `json:"enrollment_id"`
			Decision     string `json:"decision"`
			Reason       string `json:"reason"`
		} `json:"decisions"`
		DecidedBy string `json:"decided_by"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	decisions := make([]orchestrators.BulkDecision, 0, len(req.Decisions))
	for _, d := range req.Decisions {
		decisions = append(decisions, orchestrators.BulkDecision{
			EnrollmentID: d.EnrollmentID,
			Decision:     d.Decision,
			Reason:       d.Reason,
		})
	}

	result, err := orchestrators.ExecuteBulkDecideEnrollments(r.Context(), orchestrators.BulkDecideInput{
		Decisions: decisions,
		DecidedBy: actorOrHeader(r, req.DecidedBy),
	}, decideDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	failed := make([]map[string]string, 0, len(result.Failed))
	for _, f := range result.Failed {
		failed = append(failed, map[string]string{"enrollment_id": f.EnrollmentID, "error": f.Error})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"succeeded": result.Succeeded,
		"failed":    failed,
	})
}
