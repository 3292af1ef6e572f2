package leave

import (
	"context"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
)

// LeaveService is the business surface for leave requests, entitlements and
// balances. Actor-based authorization is enforced here, not at call sites.
type LeaveService interface {
	Submit(ctx context.Context, actor user.Actor, req SubmitRequest) (RequestResponse, error)
	Get(ctx context.Context, actor user.Actor, id string) (RequestResponse, error)
	List(ctx context.Context, actor user.Actor, filter RequestFilter) ([]RequestResponse, int64, error)

	Approve(ctx context.Context, actor user.Actor, id string) (RequestResponse, error)
	Reject(ctx context.Context, actor user.Actor, id string, reason string) (RequestResponse, error)
	Cancel(ctx context.Context, actor user.Actor, id string) (RequestResponse, error)
	Delegate(ctx context.Context, actor user.Actor, id string, req DelegateRequest) (RequestResponse, error)

	ListEntitlements(ctx context.Context) ([]EntitlementResponse, error)
	UpsertEntitlement(ctx context.Context, actor user.Actor, req UpsertEntitlementRequest) (EntitlementResponse, error)
	ComputeBalance(ctx context.Context, actor user.Actor, employeeID string, year int) (BalanceResponse, error)
}
