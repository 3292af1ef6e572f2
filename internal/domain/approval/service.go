package approval

import (
	"context"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
)

// ApprovalService administers workflow definitions and answers dry-run
// resolution queries. Transition execution lives with the owning entity
// services (leave, loan), not here.
type ApprovalService interface {
	CreateWorkflow(ctx context.Context, actor user.Actor, req CreateWorkflowRequest) (WorkflowResponse, error)
	GetWorkflow(ctx context.Context, id string) (WorkflowResponse, error)
	ListWorkflows(ctx context.Context, filter ListFilter) ([]WorkflowResponse, int64, error)
	UpdateWorkflow(ctx context.Context, actor user.Actor, req UpdateWorkflowRequest) (WorkflowResponse, error)
	SetWorkflowActive(ctx context.Context, actor user.Actor, id string, active bool) (WorkflowResponse, error)
	DeleteWorkflow(ctx context.Context, actor user.Actor, id string) error

	// Resolve reports which workflow would govern a submission with the
	// given scope, without creating anything.
	Resolve(ctx context.Context, req ResolveRequest) (ResolveResponse, error)
}
