package master

import (
	"context"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/branch"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/department"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/position"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
)

// MasterService manages organisational reference data: branches, departments
// and positions. Deletes are soft; a master that is still referenced cannot
// be deleted at all.
type MasterService interface {
	CreateBranch(ctx context.Context, actor user.Actor, req branch.CreateBranchRequest) (*branch.BranchResponse, error)
	GetBranch(ctx context.Context, actor user.Actor, id string) (*branch.BranchResponse, error)
	ListBranches(ctx context.Context, actor user.Actor, activeOnly bool) ([]branch.BranchResponse, error)
	UpdateBranch(ctx context.Context, actor user.Actor, id string, req branch.UpdateBranchRequest) (*branch.BranchResponse, error)
	DeleteBranch(ctx context.Context, actor user.Actor, id string) error

	CreateDepartment(ctx context.Context, actor user.Actor, req department.CreateDepartmentRequest) (*department.DepartmentResponse, error)
	GetDepartment(ctx context.Context, actor user.Actor, id string) (*department.DepartmentResponse, error)
	ListDepartments(ctx context.Context, actor user.Actor, activeOnly bool) ([]department.DepartmentResponse, error)
	UpdateDepartment(ctx context.Context, actor user.Actor, id string, req department.UpdateDepartmentRequest) (*department.DepartmentResponse, error)
	DeleteDepartment(ctx context.Context, actor user.Actor, id string) error

	CreatePosition(ctx context.Context, actor user.Actor, req position.CreatePositionRequest) (*position.PositionResponse, error)
	GetPosition(ctx context.Context, actor user.Actor, id string) (*position.PositionResponse, error)
	ListPositions(ctx context.Context, actor user.Actor, departmentID string, activeOnly bool) ([]position.PositionResponse, error)
	UpdatePosition(ctx context.Context, actor user.Actor, id string, req position.UpdatePositionRequest) (*position.PositionResponse, error)
	DeletePosition(ctx context.Context, actor user.Actor, id string) error
}
