package approval

import (
	"context"
	"errors"
	"fmt"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/approval"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
)

const auditEntityWorkflow = "approval_workflow"

type approvalServiceImpl struct {
	workflows approval.WorkflowRepository
	resolver  *Resolver
	policy    string
	auditor   audit.Recorder
}

func NewApprovalService(workflows approval.WorkflowRepository, resolver *Resolver, noWorkflowPolicy string, auditor audit.Recorder) approval.ApprovalService {
	return &approvalServiceImpl{
		workflows: workflows,
		resolver:  resolver,
		policy:    noWorkflowPolicy,
		auditor:   auditor,
	}
}

func (s *approvalServiceImpl) CreateWorkflow(ctx context.Context, actor user.Actor, req approval.CreateWorkflowRequest) (approval.WorkflowResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionWorkflowManage) {
		return approval.WorkflowResponse{}, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return approval.WorkflowResponse{}, err
	}

	workflow := approval.Workflow{
		Name:         req.Name,
		EntityType:   approval.EntityType(req.EntityType),
		DepartmentID: req.DepartmentID,
		PositionID:   req.PositionID,
		MinAmount:    req.MinAmount,
		MaxAmount:    req.MaxAmount,
		IsActive:     true,
		Settings:     req.Settings,
		Steps:        stepsFromRequests(req.Steps),
	}
	if req.IsActive != nil {
		workflow.IsActive = *req.IsActive
	}

	created, err := s.workflows.Create(ctx, workflow)
	if err != nil {
		return approval.WorkflowResponse{}, fmt.Errorf("failed to create workflow: %w", err)
	}

	s.resolver.InvalidateCache(ctx, created.EntityType)
	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionCreate,
		EntityType: auditEntityWorkflow,
		EntityID:   created.ID,
		NewValues:  workflowAuditValues(created),
	})

	return created.ToResponse(), nil
}

func (s *approvalServiceImpl) GetWorkflow(ctx context.Context, id string) (approval.WorkflowResponse, error) {
	workflow, err := s.workflows.GetByID(ctx, id)
	if err != nil {
		return approval.WorkflowResponse{}, err
	}
	sortSteps(&workflow)
	return workflow.ToResponse(), nil
}

func (s *approvalServiceImpl) ListWorkflows(ctx context.Context, filter approval.ListFilter) ([]approval.WorkflowResponse, int64, error) {
	workflows, total, err := s.workflows.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workflows: %w", err)
	}

	responses := make([]approval.WorkflowResponse, len(workflows))
	for i := range workflows {
		sortSteps(&workflows[i])
		responses[i] = workflows[i].ToResponse()
	}
	return responses, total, nil
}

func (s *approvalServiceImpl) UpdateWorkflow(ctx context.Context, actor user.Actor, req approval.UpdateWorkflowRequest) (approval.WorkflowResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionWorkflowManage) {
		return approval.WorkflowResponse{}, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return approval.WorkflowResponse{}, err
	}

	existing, err := s.workflows.GetByID(ctx, req.ID)
	if err != nil {
		return approval.WorkflowResponse{}, err
	}
	oldValues := workflowAuditValues(existing)

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.DepartmentID != nil {
		existing.DepartmentID = req.DepartmentID
	}
	if req.PositionID != nil {
		existing.PositionID = req.PositionID
	}
	if req.MinAmount != nil {
		existing.MinAmount = req.MinAmount
	}
	if req.MaxAmount != nil {
		existing.MaxAmount = req.MaxAmount
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if req.Settings != nil {
		existing.Settings = req.Settings
	}
	if req.Steps != nil {
		existing.Steps = stepsFromRequests(req.Steps)
	}

	updated, err := s.workflows.Update(ctx, existing)
	if err != nil {
		return approval.WorkflowResponse{}, fmt.Errorf("failed to update workflow: %w", err)
	}

	s.resolver.InvalidateCache(ctx, updated.EntityType)
	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionUpdate,
		EntityType: auditEntityWorkflow,
		EntityID:   updated.ID,
		OldValues:  oldValues,
		NewValues:  workflowAuditValues(updated),
	})

	return updated.ToResponse(), nil
}

func (s *approvalServiceImpl) SetWorkflowActive(ctx context.Context, actor user.Actor, id string, active bool) (approval.WorkflowResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionWorkflowManage) {
		return approval.WorkflowResponse{}, user.ErrInsufficientPermissions
	}

	existing, err := s.workflows.GetByID(ctx, id)
	if err != nil {
		return approval.WorkflowResponse{}, err
	}

	if existing.IsActive != active {
		if err := s.workflows.SetActive(ctx, id, active); err != nil {
			return approval.WorkflowResponse{}, fmt.Errorf("failed to set workflow active state: %w", err)
		}
		s.resolver.InvalidateCache(ctx, existing.EntityType)
		s.auditor.Record(ctx, audit.Entry{
			ActorID:    &actor.UserID,
			Action:     audit.ActionUpdate,
			EntityType: auditEntityWorkflow,
			EntityID:   id,
			OldValues:  audit.Values{"is_active": existing.IsActive},
			NewValues:  audit.Values{"is_active": active},
		})
		existing.IsActive = active
	}

	sortSteps(&existing)
	return existing.ToResponse(), nil
}

func (s *approvalServiceImpl) DeleteWorkflow(ctx context.Context, actor user.Actor, id string) error {
	if !user.HasPermission(actor.Role, user.PermissionWorkflowManage) {
		return user.ErrInsufficientPermissions
	}

	existing, err := s.workflows.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.workflows.Delete(ctx, id); err != nil {
		return err
	}

	s.resolver.InvalidateCache(ctx, existing.EntityType)
	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionDelete,
		EntityType: auditEntityWorkflow,
		EntityID:   id,
		OldValues:  workflowAuditValues(existing),
	})

	return nil
}

func (s *approvalServiceImpl) Resolve(ctx context.Context, req approval.ResolveRequest) (approval.ResolveResponse, error) {
	if err := req.Validate(); err != nil {
		return approval.ResolveResponse{}, err
	}

	workflow, err := s.resolver.Resolve(ctx, approval.EntityType(req.EntityType), req.DepartmentID, req.PositionID, req.Amount)
	if err != nil {
		if errors.Is(err, approval.ErrNoWorkflowMatched) {
			resp := approval.ResolveResponse{Matched: false, Policy: s.policy}
			if s.policy == PolicyDefault || s.policy == "" {
				resp.Policy = PolicyDefault
				resp.Steps = stepResponses(approval.DefaultSteps())
			}
			return resp, nil
		}
		return approval.ResolveResponse{}, err
	}

	response := workflow.ToResponse()
	return approval.ResolveResponse{
		Matched:  true,
		Workflow: &response,
		Steps:    response.Steps,
	}, nil
}

func stepsFromRequests(reqs []approval.StepRequest) []approval.Step {
	steps := make([]approval.Step, len(reqs))
	for i, r := range reqs {
		required := true
		if r.IsRequired != nil {
			required = *r.IsRequired
		}
		steps[i] = approval.Step{
			StepOrder:             r.StepOrder,
			ApproverType:          approval.ApproverType(r.ApproverType),
			ApproverID:            r.ApproverID,
			PositionID:            r.PositionID,
			RoleID:                r.RoleID,
			DepartmentID:          r.DepartmentID,
			IsRequired:            required,
			CanDelegate:           r.CanDelegate,
			CanSkip:               r.CanSkip,
			AutoApprove:           r.AutoApprove,
			AutoApproveAfterHours: r.AutoApproveAfterHours,
		}
	}
	return steps
}

func stepResponses(steps []approval.Step) []approval.StepResponse {
	out := make([]approval.StepResponse, len(steps))
	for i, s := range steps {
		out[i] = approval.StepResponse{
			ID:                    s.ID,
			StepOrder:             s.StepOrder,
			ApproverType:          string(s.ApproverType),
			ApproverID:            s.ApproverID,
			PositionID:            s.PositionID,
			RoleID:                s.RoleID,
			DepartmentID:          s.DepartmentID,
			IsRequired:            s.IsRequired,
			CanDelegate:           s.CanDelegate,
			CanSkip:               s.CanSkip,
			AutoApprove:           s.AutoApprove,
			AutoApproveAfterHours: s.AutoApproveAfterHours,
		}
	}
	return out
}

func workflowAuditValues(w approval.Workflow) audit.Values {
	return audit.Values{
		"name":          w.Name,
		"entity_type":   string(w.EntityType),
		"department_id": w.DepartmentID,
		"position_id":   w.PositionID,
		"min_amount":    w.MinAmount,
		"max_amount":    w.MaxAmount,
		"is_active":     w.IsActive,
		"steps":         len(w.Steps),
	}
}
