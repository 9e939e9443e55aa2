package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	emailAdapter "traindesk/internal/adapters/email"
)

// Decision values accepted by the decide orchestrators.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// ErrUnknownDecision is returned when a decision is neither approve nor reject.
var ErrUnknownDecision = errors.New("decision must be 'approve' or 'reject'")

// DecideEnrollmentInput carries one approval decision.
type DecideEnrollmentInput struct {
	EnrollmentID string
	Decision     string // approve or reject
	Reason       string // required for reject
	DecidedBy    string
}

// DecideEnrollmentDeps holds dependencies for DecideEnrollment.
type DecideEnrollmentDeps struct {
	EnrollmentStore EnrollmentStore
	Notify          NotifyDeps
	Now             func() time.Time
}

// ExecuteDecideEnrollment applies an approve or reject decision to a pending
// enrollment. Approval reserves a seat on the owning course in the same
// transaction as the status change; a full course fails the decision and
// leaves the enrollment pending.
// PRE: enrollment is Pending; approve additionally requires Eligible
// POST: status transitioned, seat counter moved for approvals, student notified
func ExecuteDecideEnrollment(ctx context.Context, input DecideEnrollmentInput, deps DecideEnrollmentDeps) error {
	e, err := deps.EnrollmentStore.GetByID(ctx, input.EnrollmentID)
	if err != nil {
		return err
	}
	now := deps.Now()

	switch input.Decision {
	case DecisionApprove:
		if err := e.Approve(input.DecidedBy, now); err != nil {
			return err
		}
		if err := deps.EnrollmentStore.SaveWithSeat(ctx, e, +1); err != nil {
			return err
		}
	case DecisionReject:
		if err := e.Reject(input.Reason, input.DecidedBy, now); err != nil {
			return err
		}
		if err := deps.EnrollmentStore.Save(ctx, e); err != nil {
			return err
		}
	default:
		return ErrUnknownDecision
	}

	slog.Info("enrollment_event", "event", "enrollment_decided", "enrollment_id", e.ID, "decision", input.Decision, "decided_by", input.DecidedBy, "status", e.ApprovalStatus)
	notifyDecision(ctx, e, deps.Notify)
	return nil
}

// WithdrawEnrollmentInput carries input for withdrawing an approved enrollment.
type WithdrawEnrollmentInput struct {
	EnrollmentID string
	Reason       string
	DecidedBy    string
}

// ExecuteWithdrawEnrollment withdraws an approved enrollment and releases its
// seat in the same transaction.
// PRE: enrollment is Approved; reason is non-empty
// POST: status Withdrawn, seat released, student notified
func ExecuteWithdrawEnrollment(ctx context.Context, input WithdrawEnrollmentInput, deps DecideEnrollmentDeps) error {
	e, err := deps.EnrollmentStore.GetByID(ctx, input.EnrollmentID)
	if err != nil {
		return err
	}
	if err := e.Withdraw(input.Reason, input.DecidedBy, deps.Now()); err != nil {
		return err
	}
	if err := deps.EnrollmentStore.SaveWithSeat(ctx, e, -1); err != nil {
		return err
	}

	slog.Info("enrollment_event", "event", "enrollment_withdrawn", "enrollment_id", e.ID, "decided_by", input.DecidedBy, "reason", input.Reason)
	notifyDecision(ctx, e, deps.Notify)
	return nil
}

// ReapproveEnrollmentInput carries input for re-approving a rejected or
// withdrawn enrollment.
type ReapproveEnrollmentInput struct {
	EnrollmentID string
	DecidedBy    string
}

// ExecuteReapproveEnrollment moves a rejected or withdrawn enrollment back to
// Approved, reserving a seat again.
// PRE: enrollment is Rejected or Withdrawn
// POST: status Approved, seat reserved, withdrawal reason cleared
func ExecuteReapproveEnrollment(ctx context.Context, input ReapproveEnrollmentInput, deps DecideEnrollmentDeps) error {
	e, err := deps.EnrollmentStore.GetByID(ctx, input.EnrollmentID)
	if err != nil {
		return err
	}
	if err := e.Reapprove(input.DecidedBy, deps.Now()); err != nil {
		return err
	}
	if err := deps.EnrollmentStore.SaveWithSeat(ctx, e, +1); err != nil {
		return err
	}

	slog.Info("enrollment_event", "event", "enrollment_reapproved", "enrollment_id", e.ID, "decided_by", input.DecidedBy)
	notifyDecision(ctx, e, deps.Notify)
	return nil
}

// BulkDecision is one item of a bulk approval request.
type BulkDecision struct {
	EnrollmentID string
	Decision     string
	Reason       string
}

// BulkItemError records why one item of a bulk decision failed.
type BulkItemError struct {
	EnrollmentID string
	Error        string
}

// BulkDecideResult summarizes a bulk decision run.
type BulkDecideResult struct {
	Succeeded int
	Failed    []BulkItemError
}

// BulkDecideInput carries a batch of decisions from one actor.
type BulkDecideInput struct {
	Decisions []BulkDecision
	DecidedBy string
}

// ExecuteBulkDecideEnrollments applies each decision independently. A failing
// item is recorded and skipped; the rest of the batch proceeds. Notifications
// for the whole batch go out in one provider batch call at the end.
// POST: every item either transitioned or reported in Failed
func ExecuteBulkDecideEnrollments(ctx context.Context, input BulkDecideInput, deps DecideEnrollmentDeps) (BulkDecideResult, error) {
	var result BulkDecideResult
	var notifications []emailAdapter.SendRequest

	// Individual decisions run without per-item notification so the batch
	// can be sent in one call below.
	itemDeps := DecideEnrollmentDeps{EnrollmentStore: deps.EnrollmentStore, Now: deps.Now}

	for _, d := range input.Decisions {
		err := ExecuteDecideEnrollment(ctx, DecideEnrollmentInput{
			EnrollmentID: d.EnrollmentID,
			Decision:     d.Decision,
			Reason:       d.Reason,
			DecidedBy:    input.DecidedBy,
		}, itemDeps)
		if err != nil {
			result.Failed = append(result.Failed, BulkItemError{EnrollmentID: d.EnrollmentID, Error: err.Error()})
			continue
		}
		result.Succeeded++

		if deps.Notify.enabled() {
			e, err := deps.EnrollmentStore.GetByID(ctx, d.EnrollmentID)
			if err != nil {
				continue
			}
			if s, err := deps.Notify.StudentStore.GetByID(ctx, e.StudentID); err == nil {
				notifications = append(notifications, decisionEmail(e, s, deps.Notify.From, deps.Notify.ReplyTo))
			}
		}
	}

	if len(notifications) > 0 {
		if _, err := deps.Notify.Sender.SendBatch(ctx, notifications); err != nil {
			slog.Warn("enrollment_event", "event", "bulk_notify_failed", "count", len(notifications), "error", err)
		}
	}

	slog.Info("enrollment_event", "event", "bulk_decided", "decided_by", input.DecidedBy, "succeeded", result.Succeeded, "failed", len(result.Failed))
	return result, nil
}
