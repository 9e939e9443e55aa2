package orchestrators

import (
	"context"
	"testing"

	emailAdapter "traindesk/internal/adapters/email"
	"traindesk/internal/domain/course"
	"traindesk/internal/domain/enrollment"
)

type mockSender struct {
	sent    []emailAdapter.SendRequest
	batches [][]emailAdapter.SendRequest
}

func (m *mockSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	m.sent = append(m.sent, req)
	return emailAdapter.SendResult{MessageID: "mock"}, nil
}

func (m *mockSender) SendBatch(_ context.Context, reqs []emailAdapter.SendRequest) ([]emailAdapter.SendResult, error) {
	m.batches = append(m.batches, reqs)
	return make([]emailAdapter.SendResult, len(reqs)), nil
}

// seatFixture builds a near-full course with pending enrollments for seat tests.
func seatFixture() (*mockCourseStore, *mockEnrollmentStore) {
	courses := newMockCourseStore()
	c := ongoingCourse("c1")
	c.SeatLimit = 1
	courses.courses["c1"] = c

	enrollments := newMockEnrollmentStore(courses)
	for _, id := range []string{"e1", "e2"} {
		enrollments.enrollments[id] = enrollment.Enrollment{
			ID: id, StudentID: "s-" + id, CourseID: "c1",
			CourseName: c.Name, BatchCode: c.BatchCode,
			EligibilityStatus: enrollment.EligibilityEligible,
			ApprovalStatus:    enrollment.ApprovalPending,
		}
	}
	return courses, enrollments
}

// TestExecuteDecideEnrollment_ApproveFillsSeat tests that approval consumes a
// seat and a full course rejects further approvals.
func TestExecuteDecideEnrollment_ApproveFillsSeat(t *testing.T) {
	courses, enrollments := seatFixture()
	deps := DecideEnrollmentDeps{EnrollmentStore: enrollments, Now: fixedNow}

	if err := ExecuteDecideEnrollment(context.Background(), DecideEnrollmentInput{
		EnrollmentID: "e1", Decision: DecisionApprove, DecidedBy: "admin",
	}, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := courses.courses["c1"].CurrentEnrolled; got != 1 {
		t.Errorf("expected 1 seat taken, got %d", got)
	}

	err := ExecuteDecideEnrollment(context.Background(), DecideEnrollmentInput{
		EnrollmentID: "e2", Decision: DecisionApprove, DecidedBy: "admin",
	}, deps)
	if err != course.ErrSeatLimitExceeded {
		t.Errorf("expected ErrSeatLimitExceeded, got %v", err)
	}
	if got := enrollments.enrollments["e2"].ApprovalStatus; got != enrollment.ApprovalPending {
		t.Errorf("failed approval must leave enrollment pending, got %s", got)
	}
}

// TestExecuteDecideEnrollment_Reject tests rejection takes no seat and notifies.
func TestExecuteDecideEnrollment_Reject(t *testing.T) {
	courses, enrollments := seatFixture()
	sender := &mockSender{}
	deps := DecideEnrollmentDeps{
		EnrollmentStore: enrollments,
		Notify: NotifyDeps{
			Sender:       sender,
			StudentStore: newMockStudentStore("s-e1"),
			From:         "TrainDesk <noreply@traindesk.example>",
		},
		Now: fixedNow,
	}

	if err := ExecuteDecideEnrollment(context.Background(), DecideEnrollmentInput{
		EnrollmentID: "e1", Decision: DecisionReject, Reason: "budget freeze", DecidedBy: "admin",
	}, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := courses.courses["c1"].CurrentEnrolled; got != 0 {
		t.Errorf("rejection must not consume a seat, got %d", got)
	}
	if got := enrollments.enrollments["e1"].RejectionReason; got != "budget freeze" {
		t.Errorf("expected rejection reason recorded, got %q", got)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(sender.sent))
	}
	if to := sender.sent[0].To[0]; to != "s-e1@corp.example" {
		t.Errorf("expected notification to the student, got %s", to)
	}
}

// TestExecuteDecideEnrollment_UnknownDecision tests the decision enum guard.
func TestExecuteDecideEnrollment_UnknownDecision(t *testing.T) {
	_, enrollments := seatFixture()
	err := ExecuteDecideEnrollment(context.Background(), DecideEnrollmentInput{
		EnrollmentID: "e1", Decision: "maybe", DecidedBy: "admin",
	}, DecideEnrollmentDeps{EnrollmentStore: enrollments, Now: fixedNow})
	if err != ErrUnknownDecision {
		t.Errorf("expected ErrUnknownDecision, got %v", err)
	}
}

// TestExecuteWithdrawEnrollment tests withdrawal releases the seat.
func TestExecuteWithdrawEnrollment(t *testing.T) {
	courses, enrollments := seatFixture()
	deps := DecideEnrollmentDeps{EnrollmentStore: enrollments, Now: fixedNow}

	if err := ExecuteDecideEnrollment(context.Background(), DecideEnrollmentInput{
		EnrollmentID: "e1", Decision: DecisionApprove, DecidedBy: "admin",
	}, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ExecuteWithdrawEnrollment(context.Background(), WithdrawEnrollmentInput{
		EnrollmentID: "e1", Reason: "relocated", DecidedBy: "admin",
	}, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := courses.courses["c1"].CurrentEnrolled; got != 0 {
		t.Errorf("expected seat released, got %d", got)
	}

	// The freed seat can be taken again via re-approval of the other request.
	if err := ExecuteDecideEnrollment(context.Background(), DecideEnrollmentInput{
		EnrollmentID: "e2", Decision: DecisionApprove, DecidedBy: "admin",
	}, deps); err != nil {
		t.Errorf("freed seat should be claimable, got %v", err)
	}
}

// TestExecuteReapproveEnrollment tests the rejected -> approved path with seats.
func TestExecuteReapproveEnrollment(t *testing.T) {
	courses, enrollments := seatFixture()
	deps := DecideEnrollmentDeps{EnrollmentStore: enrollments, Now: fixedNow}

	if err := ExecuteDecideEnrollment(context.Background(), DecideEnrollmentInput{
		EnrollmentID: "e1", Decision: DecisionReject, Reason: "late", DecidedBy: "admin",
	}, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ExecuteReapproveEnrollment(context.Background(), ReapproveEnrollmentInput{
		EnrollmentID: "e1", DecidedBy: "admin2",
	}, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := enrollments.enrollments["e1"]
	if e.ApprovalStatus != enrollment.ApprovalApproved || e.ApprovedBy != "admin2" {
		t.Errorf("expected re-approved by admin2, got %s / %s", e.ApprovalStatus, e.ApprovedBy)
	}
	if got := courses.courses["c1"].CurrentEnrolled; got != 1 {
		t.Errorf("expected seat reserved on re-approval, got %d", got)
	}
}

// TestExecuteBulkDecideEnrollments tests per-item error collection and the
// single notification batch.
func TestExecuteBulkDecideEnrollments(t *testing.T) {
	_, enrollments := seatFixture()
	enrollments.enrollments["e3"] = enrollment.Enrollment{
		ID: "e3", StudentID: "s-e3", CourseID: "c1",
		EligibilityStatus: enrollment.EligibilityAnnualLimit,
		ApprovalStatus:    enrollment.ApprovalPending,
	}
	sender := &mockSender{}
	deps := DecideEnrollmentDeps{
		EnrollmentStore: enrollments,
		Notify: NotifyDeps{
			Sender:       sender,
			StudentStore: newMockStudentStore("s-e1", "s-e2", "s-e3"),
		},
		Now: fixedNow,
	}

	result, err := ExecuteBulkDecideEnrollments(context.Background(), BulkDecideInput{
		DecidedBy: "admin",
		Decisions: []BulkDecision{
			{EnrollmentID: "e1", Decision: DecisionApprove},
			{EnrollmentID: "e3", Decision: DecisionApprove}, // ineligible
			{EnrollmentID: "e2", Decision: DecisionReject, Reason: "seat given to e1"},
			{EnrollmentID: "ghost", Decision: DecisionApprove},
		},
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Succeeded != 2 {
		t.Errorf("expected 2 succeeded, got %d", result.Succeeded)
	}
	if len(result.Failed) != 2 {
		t.Fatalf("expected 2 failed items, got %+v", result.Failed)
	}
	if result.Failed[0].EnrollmentID != "e3" || result.Failed[1].EnrollmentID != "ghost" {
		t.Errorf("unexpected failed items: %+v", result.Failed)
	}
	if got := enrollments.enrollments["e2"].ApprovalStatus; got != enrollment.ApprovalRejected {
		t.Errorf("batch must continue past failures, e2 status = %s", got)
	}
	if len(sender.sent) != 0 {
		t.Errorf("bulk flow must not send individual emails, got %d", len(sender.sent))
	}
	if len(sender.batches) != 1 || len(sender.batches[0]) != 2 {
		t.Errorf("expected one batch of 2 notifications, got %+v", sender.batches)
	}
}
