package shift

import (
	"context"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
)

type ShiftService interface {
	Create(ctx context.Context, actor user.Actor, req CreateShiftRequest) (*ShiftResponse, error)
	Get(ctx context.Context, id string) (*ShiftResponse, error)
	List(ctx context.Context, activeOnly bool) ([]ShiftResponse, error)
	Update(ctx context.Context, actor user.Actor, id string, req UpdateShiftRequest) (*ShiftResponse, error)
	Delete(ctx context.Context, actor user.Actor, id string) error

	Assign(ctx context.Context, actor user.Actor, req AssignRequest) (*AssignmentResponse, error)
	ListAssignments(ctx context.Context, actor user.Actor, filter AssignmentFilter) ([]AssignmentResponse, int, error)
	Unassign(ctx context.Context, actor user.Actor, id string) error
}
