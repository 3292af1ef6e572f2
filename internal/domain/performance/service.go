package performance

import (
	"context"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
)

type PerformanceService interface {
	Create(ctx context.Context, actor user.Actor, req CreateRequest) (*ReviewResponse, error)
	Get(ctx context.Context, actor user.Actor, id string) (*ReviewResponse, error)
	List(ctx context.Context, actor user.Actor, filter Filter) ([]ReviewResponse, int, error)
	Update(ctx context.Context, actor user.Actor, id string, req UpdateRequest) (*ReviewResponse, error)
	Submit(ctx context.Context, actor user.Actor, id string) (*ReviewResponse, error)
	Acknowledge(ctx context.Context, actor user.Actor, id string) (*ReviewResponse, error)
	Delete(ctx context.Context, actor user.Actor, id string) error
}
