package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/approval"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
)

// No-workflow policies: what a submission does when no definition matches.
const (
	PolicyDefault     = "default"
	PolicyAutoApprove = "auto_approve"
	PolicyReject      = "reject"
)

// Engine drives guarded state transitions for every approvable entity. Each
// transition runs in one transaction: the target row is locked, the guards
// re-checked against the locked state, and the UPDATE conditioned on the
// expected (status, level) pair so concurrent deciders can never both win.
type Engine struct {
	run       database.TxRunner
	workflows approval.WorkflowRepository
	resolver  *Resolver
	directory *Directory
	policy    string
}

func NewEngine(run database.TxRunner, workflows approval.WorkflowRepository, resolver *Resolver, directory *Directory, noWorkflowPolicy string) *Engine {
	return &Engine{
		run:       run,
		workflows: workflows,
		resolver:  resolver,
		directory: directory,
		policy:    noWorkflowPolicy,
	}
}

// Outcome describes one applied transition for audit and notification
// side effects. ActorID is nil when the system acted (auto-approval).
type Outcome struct {
	ID             string
	EntityType     approval.EntityType
	EmployeeID     string
	OldStatus      string
	NewStatus      string
	FromLevel      int
	ToLevel        int
	ActorID        *string
	NextApproverID *string
	DecidedAt      *time.Time
}

// Decided reports whether the transition reached a terminal status.
func (o Outcome) Decided() bool {
	return o.NewStatus != approval.StatusPending
}

// SubmissionPlan is the approval state a new submission starts with.
type SubmissionPlan struct {
	Status            string
	WorkflowID        *string
	ApprovalLevel     int
	MaxApprovalLevel  int
	CurrentApproverID *string
	DecidedAt         *time.Time
}

// PlanSubmission resolves the workflow and first approver for a submission
// by the given employee. The no-workflow policy decides what happens when
// nothing matches: the built-in chain, immediate approval, or a domain
// error.
func (e *Engine) PlanSubmission(ctx context.Context, entityType approval.EntityType, employeeID string, amount *decimal.Decimal) (SubmissionPlan, error) {
	emp, err := e.directory.employees.GetByID(ctx, employeeID)
	if err != nil {
		return SubmissionPlan{}, fmt.Errorf("failed to load submitting employee: %w", err)
	}

	var steps []approval.Step
	var workflowID *string

	workflow, err := e.resolver.Resolve(ctx, entityType, emp.DepartmentID, emp.PositionID, amount)
	switch {
	case err == nil:
		steps = workflow.Steps
		workflowID = &workflow.ID
	case errors.Is(err, approval.ErrNoWorkflowMatched):
		switch e.policy {
		case PolicyAutoApprove:
			now := time.Now()
			return SubmissionPlan{Status: approval.StatusApproved, DecidedAt: &now}, nil
		case PolicyReject:
			return SubmissionPlan{}, approval.ErrNoWorkflowMatched
		default:
			steps = approval.DefaultSteps()
		}
	default:
		return SubmissionPlan{}, err
	}

	approverID, level, done, err := e.nextApprover(ctx, steps, 0, employeeID)
	if err != nil {
		return SubmissionPlan{}, err
	}
	if done {
		// Every step skippable and unresolvable: nothing left to approve.
		now := time.Now()
		return SubmissionPlan{
			Status:           approval.StatusApproved,
			WorkflowID:       workflowID,
			ApprovalLevel:    len(steps),
			MaxApprovalLevel: len(steps),
			DecidedAt:        &now,
		}, nil
	}

	return SubmissionPlan{
		Status:            approval.StatusPending,
		WorkflowID:        workflowID,
		ApprovalLevel:     level,
		MaxApprovalLevel:  len(steps),
		CurrentApproverID: &approverID,
	}, nil
}

// Approve advances the target one level on behalf of its current approver.
// Reaching the final level decides the request.
func (e *Engine) Approve(ctx context.Context, store approval.TargetStore, id string, actor user.Actor) (Outcome, error) {
	return e.approve(ctx, store, id, &actor)
}

// AutoApprove advances the target one level as the system, skipping the
// current-approver check. Used by the deadline sweep.
func (e *Engine) AutoApprove(ctx context.Context, store approval.TargetStore, id string) (Outcome, error) {
	return e.approve(ctx, store, id, nil)
}

func (e *Engine) approve(ctx context.Context, store approval.TargetStore, id string, actor *user.Actor) (Outcome, error) {
	var out Outcome
	err := e.run(ctx, func(txCtx context.Context) error {
		state, err := store.LockForTransition(txCtx, id)
		if err != nil {
			return err
		}
		if state.Status != approval.StatusPending {
			return approval.ErrAlreadyDecided
		}
		if actor != nil {
			if state.CurrentApproverID == nil || *state.CurrentApproverID != actor.UserID {
				return approval.ErrNotCurrentApprover
			}
		}

		steps, err := e.stepsFor(txCtx, state)
		if err != nil {
			return err
		}

		now := time.Now()
		tr := approval.Transition{
			ID:         id,
			FromStatus: state.Status,
			FromLevel:  state.ApprovalLevel,
		}

		newLevel := state.ApprovalLevel + 1
		if newLevel >= state.MaxApprovalLevel {
			tr.ToStatus = approval.StatusApproved
			tr.ToLevel = state.MaxApprovalLevel
			tr.DecidedAt = &now
		} else {
			approverID, effLevel, done, err := e.nextApprover(txCtx, steps, newLevel, state.EmployeeID)
			if err != nil {
				return err
			}
			if done {
				tr.ToStatus = approval.StatusApproved
				tr.ToLevel = state.MaxApprovalLevel
				tr.DecidedAt = &now
			} else {
				tr.ToStatus = approval.StatusPending
				tr.ToLevel = effLevel
				tr.CurrentApproverID = &approverID
			}
		}

		applied, err := store.ApplyTransition(txCtx, tr)
		if err != nil {
			return err
		}
		if !applied {
			return approval.ErrConcurrentTransition
		}

		out = outcomeFrom(state, tr, actor)
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// Reject terminally declines the target at its current level. Only the
// current approver may reject.
func (e *Engine) Reject(ctx context.Context, store approval.TargetStore, id string, actor user.Actor) (Outcome, error) {
	var out Outcome
	err := e.run(ctx, func(txCtx context.Context) error {
		state, err := store.LockForTransition(txCtx, id)
		if err != nil {
			return err
		}
		if state.Status != approval.StatusPending {
			return approval.ErrAlreadyDecided
		}
		if state.CurrentApproverID == nil || *state.CurrentApproverID != actor.UserID {
			return approval.ErrNotCurrentApprover
		}

		now := time.Now()
		tr := approval.Transition{
			ID:         id,
			FromStatus: state.Status,
			FromLevel:  state.ApprovalLevel,
			ToStatus:   approval.StatusRejected,
			ToLevel:    state.ApprovalLevel,
			DecidedAt:  &now,
		}

		applied, err := store.ApplyTransition(txCtx, tr)
		if err != nil {
			return err
		}
		if !applied {
			return approval.ErrConcurrentTransition
		}

		out = outcomeFrom(state, tr, &actor)
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// Cancel terminally withdraws a pending target. Only the requester may
// cancel their own submission.
func (e *Engine) Cancel(ctx context.Context, store approval.TargetStore, id string, actor user.Actor) (Outcome, error) {
	var out Outcome
	err := e.run(ctx, func(txCtx context.Context) error {
		state, err := store.LockForTransition(txCtx, id)
		if err != nil {
			return err
		}
		if state.Status != approval.StatusPending {
			return approval.ErrAlreadyDecided
		}
		if !actor.OwnsEmployee(state.EmployeeID) {
			return approval.ErrNotRequester
		}

		now := time.Now()
		tr := approval.Transition{
			ID:         id,
			FromStatus: state.Status,
			FromLevel:  state.ApprovalLevel,
			ToStatus:   approval.StatusCancelled,
			ToLevel:    state.ApprovalLevel,
			DecidedAt:  &now,
		}

		applied, err := store.ApplyTransition(txCtx, tr)
		if err != nil {
			return err
		}
		if !applied {
			return approval.ErrConcurrentTransition
		}

		out = outcomeFrom(state, tr, &actor)
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// Delegate hands the current step to another user. Allowed only for the
// current approver, and only when the awaited step permits delegation.
func (e *Engine) Delegate(ctx context.Context, store approval.TargetStore, id string, actor user.Actor, toUserID string) (Outcome, error) {
	var out Outcome
	err := e.run(ctx, func(txCtx context.Context) error {
		state, err := store.LockForTransition(txCtx, id)
		if err != nil {
			return err
		}
		if state.Status != approval.StatusPending {
			return approval.ErrAlreadyDecided
		}
		if state.CurrentApproverID == nil || *state.CurrentApproverID != actor.UserID {
			return approval.ErrNotCurrentApprover
		}

		steps, err := e.stepsFor(txCtx, state)
		if err != nil {
			return err
		}
		if state.ApprovalLevel >= len(steps) || !steps[state.ApprovalLevel].CanDelegate {
			return approval.ErrDelegationNotAllowed
		}

		delegatee, err := e.directory.users.GetByID(txCtx, toUserID)
		if err != nil {
			return err
		}
		if !delegatee.IsActive {
			return user.ErrUserInactive
		}

		tr := approval.Transition{
			ID:                id,
			FromStatus:        state.Status,
			FromLevel:         state.ApprovalLevel,
			ToStatus:          approval.StatusPending,
			ToLevel:           state.ApprovalLevel,
			CurrentApproverID: &delegatee.ID,
		}

		applied, err := store.ApplyTransition(txCtx, tr)
		if err != nil {
			return err
		}
		if !applied {
			return approval.ErrConcurrentTransition
		}

		out = outcomeFrom(state, tr, &actor)
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// stepsFor loads the steps governing a target: its workflow's when bound,
// the built-in default chain otherwise.
func (e *Engine) stepsFor(ctx context.Context, state approval.TargetState) ([]approval.Step, error) {
	if state.WorkflowID == nil {
		return approval.DefaultSteps(), nil
	}
	workflow, err := e.workflows.GetByID(ctx, *state.WorkflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load governing workflow: %w", err)
	}
	sortSteps(&workflow)
	return workflow.Steps, nil
}

// nextApprover resolves the approver for the step at fromLevel, skipping
// unresolvable optional steps. done means every remaining step was skipped.
func (e *Engine) nextApprover(ctx context.Context, steps []approval.Step, fromLevel int, requesterEmployeeID string) (approverID string, effLevel int, done bool, err error) {
	for lvl := fromLevel; lvl < len(steps); lvl++ {
		uid, err := e.directory.ResolveStepApprover(ctx, steps[lvl], requesterEmployeeID)
		if err == nil {
			return uid, lvl, false, nil
		}
		if errors.Is(err, approval.ErrApproverUnresolved) && stepSkippable(steps[lvl]) {
			continue
		}
		return "", 0, false, err
	}
	return "", len(steps), true, nil
}

func stepSkippable(step approval.Step) bool {
	return step.CanSkip || !step.IsRequired
}

func outcomeFrom(state approval.TargetState, tr approval.Transition, actor *user.Actor) Outcome {
	out := Outcome{
		ID:             state.ID,
		EntityType:     state.EntityType,
		EmployeeID:     state.EmployeeID,
		OldStatus:      state.Status,
		NewStatus:      tr.ToStatus,
		FromLevel:      tr.FromLevel,
		ToLevel:        tr.ToLevel,
		NextApproverID: tr.CurrentApproverID,
		DecidedAt:      tr.DecidedAt,
	}
	if actor != nil {
		actorID := actor.UserID
		out.ActorID = &actorID
	}
	return out
}

// SweepTarget registers one entity type with the auto-approve sweep.
type SweepTarget struct {
	Name           string
	Store          approval.TargetStore
	Scanner        approval.PendingScanner
	OnAutoApproved func(ctx context.Context, out Outcome)
}

// SweepAutoApprovals approves every pending target whose awaited step has
// overrun its auto-approve deadline. Individual failures are logged and
// skipped so one broken row cannot stall the sweep. Returns how many
// approvals were applied.
func (e *Engine) SweepAutoApprovals(ctx context.Context, now time.Time, targets ...SweepTarget) int {
	applied := 0
	for _, target := range targets {
		states, err := target.Scanner.ListPendingTargets(ctx)
		if err != nil {
			slog.Error("auto-approve scan failed", "target", target.Name, "error", err)
			continue
		}

		for _, state := range states {
			steps, err := e.stepsFor(ctx, state)
			if err != nil {
				slog.Error("auto-approve step lookup failed", "target", target.Name, "id", state.ID, "error", err)
				continue
			}
			if state.ApprovalLevel >= len(steps) {
				continue
			}
			if !approval.StepPastAutoApproveDeadline(steps[state.ApprovalLevel], state.UpdatedAt, now) {
				continue
			}

			out, err := e.AutoApprove(ctx, target.Store, state.ID)
			if err != nil {
				// A concurrent decision beat the sweep; nothing to do.
				if errors.Is(err, approval.ErrAlreadyDecided) || errors.Is(err, approval.ErrConcurrentTransition) {
					continue
				}
				slog.Error("auto-approve failed", "target", target.Name, "id", state.ID, "error", err)
				continue
			}

			applied++
			if target.OnAutoApproved != nil {
				target.OnAutoApproved(ctx, out)
			}
		}
	}
	return applied
}
