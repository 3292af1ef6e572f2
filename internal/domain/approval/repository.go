package approval

import (
	"context"
	"time"
)

// WorkflowRepository persists workflow definitions and their steps.
type WorkflowRepository interface {
	Create(ctx context.Context, workflow Workflow) (Workflow, error)
	GetByID(ctx context.Context, id string) (Workflow, error)
	List(ctx context.Context, filter ListFilter) ([]Workflow, int64, error)
	// ListActiveByEntityType returns active workflows with their steps,
	// ordered by created_at then id so resolution ties break
	// deterministically.
	ListActiveByEntityType(ctx context.Context, entityType EntityType) ([]Workflow, error)
	Update(ctx context.Context, workflow Workflow) (Workflow, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// ListFilter narrows workflow listings. Zero values mean "no filter".
type ListFilter struct {
	EntityType string
	IsActive   *bool
	Page       int
	Limit      int
}

// TargetState is the approval-machine state stored on a leave or loan row.
// ApprovalLevel counts completed steps; the next awaited step is the one at
// index ApprovalLevel of the workflow's sorted steps.
type TargetState struct {
	ID                string
	EntityType        EntityType
	EmployeeID        string
	Status            string
	ApprovalLevel     int
	MaxApprovalLevel  int
	CurrentApproverID *string
	WorkflowID        *string
	// UpdatedAt doubles as the current step's assignment time for the
	// auto-approve deadline check.
	UpdatedAt time.Time
}

// Transition is one guarded state change to be applied to a target row. The
// UPDATE must only touch rows still in FromStatus at FromLevel; applying to
// zero rows means a concurrent transition won the race.
type Transition struct {
	ID                string
	FromStatus        string
	FromLevel         int
	ToStatus          string
	ToLevel           int
	CurrentApproverID *string
	DecidedAt         *time.Time
}

// TargetStore is the persistence port the transition engine drives. Both
// methods run inside the engine's transaction.
type TargetStore interface {
	// LockForTransition loads the target row FOR UPDATE.
	LockForTransition(ctx context.Context, id string) (TargetState, error)
	// ApplyTransition performs the guarded UPDATE and reports whether a row
	// was changed.
	ApplyTransition(ctx context.Context, tr Transition) (bool, error)
}

// PendingScanner lists pending rows for the auto-approve sweep.
type PendingScanner interface {
	ListPendingTargets(ctx context.Context) ([]TargetState, error)
}
