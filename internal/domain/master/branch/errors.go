package branch

import "github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"

var (
	ErrBranchNotFound   = apperrors.New(apperrors.CodeNotFound, "branch not found")
	ErrBranchNameExists = apperrors.Conflict("branch with this name already exists")
	ErrBranchInUse      = apperrors.Conflict("branch is referenced by departments or employees")
	ErrBranchInactive   = apperrors.Domain("branch is inactive")
)
