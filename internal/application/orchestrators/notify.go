package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	emailAdapter "traindesk/internal/adapters/email"
	"traindesk/internal/domain/enrollment"
	"traindesk/internal/domain/student"
)

// StudentLookup defines the student store interface needed to resolve
// notification recipients.
type StudentLookup interface {
	GetByID(ctx context.Context, id string) (student.Student, error)
}

// NotifyDeps carries the optional email notification dependencies. A zero
// value disables notifications entirely.
type NotifyDeps struct {
	Sender       emailAdapter.Sender
	StudentStore StudentLookup
	From         string
	ReplyTo      string
}

func (n NotifyDeps) enabled() bool {
	return n.Sender != nil && n.StudentStore != nil
}

// decisionEmail builds the notification for an enrollment decision. The
// subject and body depend on the approval status the enrollment landed in.
func decisionEmail(e enrollment.Enrollment, s student.Student, from, replyTo string) emailAdapter.SendRequest {
	courseName := e.CourseName
	if courseName == "" {
		courseName = "your course"
	}

	var subject, detail string
	switch e.ApprovalStatus {
	case enrollment.ApprovalApproved:
		subject = fmt.Sprintf("Enrollment approved: %s", courseName)
		detail = fmt.Sprintf("<p>Your enrollment in <strong>%s</strong> (%s) has been approved by %s. See you in class.</p>", courseName, e.BatchCode, e.ApprovedBy)
	case enrollment.ApprovalRejected:
		subject = fmt.Sprintf("Enrollment not approved: %s", courseName)
		detail = fmt.Sprintf("<p>Your enrollment in <strong>%s</strong> (%s) was not approved.</p><p>Reason: %s</p>", courseName, e.BatchCode, e.RejectionReason)
	case enrollment.ApprovalWithdrawn:
		subject = fmt.Sprintf("Enrollment withdrawn: %s", courseName)
		detail = fmt.Sprintf("<p>Your enrollment in <strong>%s</strong> (%s) has been withdrawn.</p><p>Reason: %s</p>", courseName, e.BatchCode, e.WithdrawalReason)
	default:
		subject = fmt.Sprintf("Enrollment update: %s", courseName)
		detail = fmt.Sprintf("<p>Your enrollment in <strong>%s</strong> (%s) is now %s.</p>", courseName, e.BatchCode, e.ApprovalStatus)
	}

	html := fmt.Sprintf("<p>Hi %s,</p>%s<p>Training Desk</p>", s.Name, detail)
	return emailAdapter.SendRequest{
		To:      []string{s.Email},
		From:    from,
		Subject: subject,
		HTML:    html,
		ReplyTo: replyTo,
	}
}

// notifyDecision sends a decision email to the affected student. Delivery is
// best-effort: failures are logged, never returned, so a provider outage
// cannot roll back an already committed decision.
func notifyDecision(ctx context.Context, e enrollment.Enrollment, deps NotifyDeps) {
	if !deps.enabled() {
		return
	}
	s, err := deps.StudentStore.GetByID(ctx, e.StudentID)
	if err != nil {
		slog.Warn("enrollment_event", "event", "notify_skipped", "enrollment_id", e.ID, "error", err)
		return
	}
	if _, err := deps.Sender.Send(ctx, decisionEmail(e, s, deps.From, deps.ReplyTo)); err != nil {
		slog.Warn("enrollment_event", "event", "notify_failed", "enrollment_id", e.ID, "error", err)
	}
}
