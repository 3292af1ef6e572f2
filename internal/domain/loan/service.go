package loan

import (
	"context"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
)

type LoanService interface {
	Submit(ctx context.Context, actor user.Actor, req SubmitRequest) (*LoanResponse, error)
	Get(ctx context.Context, actor user.Actor, id string) (*LoanResponse, error)
	List(ctx context.Context, actor user.Actor, filter Filter) ([]LoanResponse, int, error)
	Approve(ctx context.Context, actor user.Actor, id string, req DecisionRequest) (*LoanResponse, error)
	Reject(ctx context.Context, actor user.Actor, id string, req DecisionRequest) (*LoanResponse, error)
	Cancel(ctx context.Context, actor user.Actor, id string, reason string) (*LoanResponse, error)
	Delegate(ctx context.Context, actor user.Actor, id string, req DelegateRequest) (*LoanResponse, error)
	Disburse(ctx context.Context, actor user.Actor, id string) (*LoanResponse, error)
	MarkDefaulted(ctx context.Context, actor user.Actor, id string) (*LoanResponse, error)
}
