package approval

import "github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"

var (
	ErrWorkflowNotFound     = apperrors.New(apperrors.CodeNotFound, "approval workflow not found")
	ErrNoWorkflowMatched    = apperrors.New(apperrors.CodeDomain, "no approval workflow matches this submission")
	ErrNotCurrentApprover   = apperrors.New(apperrors.CodeForbidden, "only the current approver may act on this request")
	ErrNotRequester         = apperrors.New(apperrors.CodeForbidden, "only the requester may cancel this request")
	ErrAlreadyDecided       = apperrors.New(apperrors.CodeDomain, "request has already reached a terminal status")
	ErrConcurrentTransition = apperrors.New(apperrors.CodeConflict, "request was modified concurrently, reload and retry")
	ErrApproverUnresolved   = apperrors.New(apperrors.CodeDomain, "no approver could be resolved for the next step")
	ErrDelegationNotAllowed = apperrors.New(apperrors.CodeDomain, "this step does not allow delegation")
	ErrWorkflowInUse        = apperrors.New(apperrors.CodeConflict, "workflow has pending requests and cannot be deleted")
)
