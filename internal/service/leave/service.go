package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/approval"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/leave"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/notification"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/validator"
	approvalsvc "github.com/kelola-hr/hrm-backend-go/internal/service/approval"
)

const auditEntityLeave = "leave_request"

type leaveServiceImpl struct {
	requests     leave.RequestRepository
	entitlements leave.EntitlementRepository
	employees    employee.EmployeeRepository
	users        user.UserRepository
	engine       *approvalsvc.Engine
	run          database.TxRunner
	auditor      audit.Recorder
	notifier     notification.Service
}

func NewLeaveService(
	requests leave.RequestRepository,
	entitlements leave.EntitlementRepository,
	employees employee.EmployeeRepository,
	users user.UserRepository,
	engine *approvalsvc.Engine,
	run database.TxRunner,
	auditor audit.Recorder,
	notifier notification.Service,
) leave.LeaveService {
	return &leaveServiceImpl{
		requests:     requests,
		entitlements: entitlements,
		employees:    employees,
		users:        users,
		engine:       engine,
		run:          run,
		auditor:      auditor,
		notifier:     notifier,
	}
}

func (s *leaveServiceImpl) Submit(ctx context.Context, actor user.Actor, req leave.SubmitRequest) (leave.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.RequestResponse{}, err
	}

	employeeID, err := s.resolveTargetEmployee(actor, req.EmployeeID)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	start, _ := validator.IsValidDate(req.StartDate)
	end, _ := validator.IsValidDate(req.EndDate)

	durationType := leave.DurationFullDay
	if req.DurationType != "" {
		durationType = leave.DurationType(req.DurationType)
	}

	totalDays, err := leave.ComputeDuration(start, end, durationType)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return leave.RequestResponse{}, err
	}
	if !emp.IsActive {
		return leave.RequestResponse{}, employee.ErrEmployeeInactive
	}

	plan, err := s.engine.PlanSubmission(ctx, approval.EntityTypeLeave, employeeID, nil)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	request := leave.Request{
		EmployeeID:        employeeID,
		Type:              leave.Type(req.LeaveType),
		StartDate:         start,
		EndDate:           end,
		DurationType:      durationType,
		TotalDays:         totalDays,
		Reason:            req.Reason,
		Status:            leave.Status(plan.Status),
		WorkflowID:        plan.WorkflowID,
		ApprovalLevel:     plan.ApprovalLevel,
		MaxApprovalLevel:  plan.MaxApprovalLevel,
		CurrentApproverID: plan.CurrentApproverID,
		DecidedAt:         plan.DecidedAt,
	}

	var created leave.Request
	err = s.run(ctx, func(txCtx context.Context) error {
		// Serialize per-employee submissions so two racing requests cannot
		// both pass the overlap and balance checks.
		if err := s.employees.LockByID(txCtx, employeeID); err != nil {
			return err
		}

		overlapping, err := s.requests.ListOverlapping(txCtx, employeeID, start, end, nil)
		if err != nil {
			return fmt.Errorf("failed to check overlapping leave: %w", err)
		}
		if len(overlapping) > 0 {
			return leave.ErrOverlappingLeave
		}

		if err := s.checkBalance(txCtx, employeeID, request.Type, start.Year(), totalDays); err != nil {
			return err
		}

		created, err = s.requests.Create(txCtx, request)
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.RequestResponse{}, err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionCreate,
		EntityType: auditEntityLeave,
		EntityID:   created.ID,
		NewValues: audit.Values{
			"leave_type": string(created.Type),
			"start_date": created.StartDate.Format("2006-01-02"),
			"end_date":   created.EndDate.Format("2006-01-02"),
			"total_days": created.TotalDays,
			"status":     string(created.Status),
		},
	})

	requesterName := emp.FirstName + " " + emp.LastName
	if created.Status == leave.StatusPending && created.CurrentApproverID != nil {
		s.notifyApprover(ctx, *created.CurrentApproverID, requesterName, created)
	}
	if created.Status == leave.StatusApproved {
		s.notifyEmployee(ctx, created.EmployeeID, notification.TypeLeaveApproved,
			"Leave request approved",
			fmt.Sprintf("Your %s leave from %s to %s was approved automatically.",
				created.Type, created.StartDate.Format("2006-01-02"), created.EndDate.Format("2006-01-02")),
			leaveData(created))
	}

	return created.ToResponse(), nil
}

func (s *leaveServiceImpl) Get(ctx context.Context, actor user.Actor, id string) (leave.RequestResponse, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return leave.RequestResponse{}, err
	}
	if err := s.authorizeView(actor, request); err != nil {
		return leave.RequestResponse{}, err
	}
	return request.ToResponse(), nil
}

func (s *leaveServiceImpl) List(ctx context.Context, actor user.Actor, filter leave.RequestFilter) ([]leave.RequestResponse, int64, error) {
	if !user.HasPermission(actor.Role, user.PermissionLeaveViewAll) {
		// Self-service callers see their own requests, or their own approval
		// queue when filtering by themselves as approver.
		switch {
		case filter.CurrentApproverID != "" && filter.CurrentApproverID == actor.UserID:
			// allowed as-is
		case actor.EmployeeID != nil:
			filter.EmployeeID = *actor.EmployeeID
		default:
			return nil, 0, user.ErrInsufficientPermissions
		}
	}

	requests, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.RequestResponse, len(requests))
	for i := range requests {
		responses[i] = requests[i].ToResponse()
	}
	return responses, total, nil
}

func (s *leaveServiceImpl) Approve(ctx context.Context, actor user.Actor, id string) (leave.RequestResponse, error) {
	out, err := s.engine.Approve(ctx, s.requests, id, actor)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	s.recordTransition(ctx, "approve", out, nil)

	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	switch {
	case out.NewStatus == approval.StatusApproved:
		s.notifyEmployee(ctx, request.EmployeeID, notification.TypeLeaveApproved,
			"Leave request approved",
			fmt.Sprintf("Your %s leave from %s to %s was approved.",
				request.Type, request.StartDate.Format("2006-01-02"), request.EndDate.Format("2006-01-02")),
			leaveData(request))
	case out.NextApproverID != nil:
		s.notifyApprover(ctx, *out.NextApproverID, s.employeeName(ctx, request.EmployeeID), request)
	}

	return request.ToResponse(), nil
}

func (s *leaveServiceImpl) Reject(ctx context.Context, actor user.Actor, id string, reason string) (leave.RequestResponse, error) {
	out, err := s.engine.Reject(ctx, s.requests, id, actor)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	extra := audit.Values{}
	if reason != "" {
		extra["reason"] = reason
	}
	s.recordTransition(ctx, "reject", out, extra)

	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	message := fmt.Sprintf("Your %s leave from %s to %s was rejected.",
		request.Type, request.StartDate.Format("2006-01-02"), request.EndDate.Format("2006-01-02"))
	if reason != "" {
		message += " Reason: " + reason
	}
	s.notifyEmployee(ctx, request.EmployeeID, notification.TypeLeaveRejected,
		"Leave request rejected", message, leaveData(request))

	return request.ToResponse(), nil
}

func (s *leaveServiceImpl) Cancel(ctx context.Context, actor user.Actor, id string) (leave.RequestResponse, error) {
	out, err := s.engine.Cancel(ctx, s.requests, id, actor)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	s.recordTransition(ctx, "cancel", out, nil)

	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return leave.RequestResponse{}, err
	}
	return request.ToResponse(), nil
}

func (s *leaveServiceImpl) Delegate(ctx context.Context, actor user.Actor, id string, req leave.DelegateRequest) (leave.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.RequestResponse{}, err
	}

	out, err := s.engine.Delegate(ctx, s.requests, id, actor, req.DelegateTo)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	extra := audit.Values{"delegate_to": req.DelegateTo}
	if req.Reason != "" {
		extra["reason"] = req.Reason
	}
	s.recordTransition(ctx, "delegate", out, extra)

	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	s.notifyApprover(ctx, req.DelegateTo, s.employeeName(ctx, request.EmployeeID), request)

	return request.ToResponse(), nil
}

func (s *leaveServiceImpl) ListEntitlements(ctx context.Context) ([]leave.EntitlementResponse, error) {
	entitlements, err := s.entitlements.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list entitlements: %w", err)
	}

	responses := make([]leave.EntitlementResponse, len(entitlements))
	for i := range entitlements {
		responses[i] = entitlements[i].ToResponse()
	}
	return responses, nil
}

func (s *leaveServiceImpl) UpsertEntitlement(ctx context.Context, actor user.Actor, req leave.UpsertEntitlementRequest) (leave.EntitlementResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionLeaveManageEntitlements) {
		return leave.EntitlementResponse{}, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return leave.EntitlementResponse{}, err
	}

	leaveType := leave.Type(req.LeaveType)
	requiresBalance := leaveType != leave.TypeUnpaid
	if req.RequiresBalance != nil {
		requiresBalance = *req.RequiresBalance
	}

	saved, err := s.entitlements.Upsert(ctx, leave.Entitlement{
		LeaveType:       leaveType,
		AnnualDays:      req.AnnualDays,
		RequiresBalance: requiresBalance,
	})
	if err != nil {
		return leave.EntitlementResponse{}, fmt.Errorf("failed to upsert entitlement: %w", err)
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionUpdate,
		EntityType: "leave_entitlement",
		EntityID:   saved.ID,
		NewValues: audit.Values{
			"leave_type":       string(saved.LeaveType),
			"annual_days":      saved.AnnualDays,
			"requires_balance": saved.RequiresBalance,
		},
	})

	return saved.ToResponse(), nil
}

func (s *leaveServiceImpl) ComputeBalance(ctx context.Context, actor user.Actor, employeeID string, year int) (leave.BalanceResponse, error) {
	target, err := s.resolveTargetEmployee(actor, employeeID)
	if err != nil {
		return leave.BalanceResponse{}, err
	}
	if year == 0 {
		year = time.Now().Year()
	}

	entitlements, err := s.entitlements.List(ctx)
	if err != nil {
		return leave.BalanceResponse{}, fmt.Errorf("failed to list entitlements: %w", err)
	}

	approved, err := s.requests.SumDaysByTypeInYear(ctx, target, year, []leave.Status{leave.StatusApproved})
	if err != nil {
		return leave.BalanceResponse{}, fmt.Errorf("failed to sum approved leave days: %w", err)
	}
	pending, err := s.requests.SumDaysByTypeInYear(ctx, target, year, []leave.Status{leave.StatusPending})
	if err != nil {
		return leave.BalanceResponse{}, fmt.Errorf("failed to sum pending leave days: %w", err)
	}

	balances := make([]leave.Balance, 0, len(entitlements))
	for _, ent := range entitlements {
		balance := leave.Balance{
			LeaveType:       ent.LeaveType,
			EntitledDays:    ent.AnnualDays,
			UsedDays:        approved[ent.LeaveType],
			PendingDays:     pending[ent.LeaveType],
			RequiresBalance: ent.RequiresBalance,
		}
		if ent.RequiresBalance {
			balance.RemainingDays = ent.AnnualDays - balance.UsedDays - balance.PendingDays
		}
		balances = append(balances, balance)
	}

	return leave.BalanceResponse{EmployeeID: target, Year: year, Balances: balances}, nil
}

// resolveTargetEmployee decides which employee a self-or-on-behalf call acts
// on. Acting for someone else needs the view-all permission.
func (s *leaveServiceImpl) resolveTargetEmployee(actor user.Actor, requested string) (string, error) {
	if requested == "" {
		if actor.EmployeeID == nil {
			return "", apperrors.Invalid("employee_id is required for accounts without an employee record")
		}
		return *actor.EmployeeID, nil
	}
	if !actor.OwnsEmployee(requested) && !user.HasPermission(actor.Role, user.PermissionLeaveViewAll) {
		return "", user.ErrInsufficientPermissions
	}
	return requested, nil
}

func (s *leaveServiceImpl) authorizeView(actor user.Actor, request leave.Request) error {
	if user.HasPermission(actor.Role, user.PermissionLeaveViewAll) {
		return nil
	}
	if actor.OwnsEmployee(request.EmployeeID) {
		return nil
	}
	if request.CurrentApproverID != nil && *request.CurrentApproverID == actor.UserID {
		return nil
	}
	return user.ErrInsufficientPermissions
}

func (s *leaveServiceImpl) checkBalance(ctx context.Context, employeeID string, leaveType leave.Type, year int, totalDays float64) error {
	entitlement, err := s.entitlements.GetByType(ctx, leaveType)
	if err != nil {
		return err
	}
	if !entitlement.RequiresBalance {
		return nil
	}

	committed, err := s.requests.SumDaysByTypeInYear(ctx, employeeID, year,
		[]leave.Status{leave.StatusPending, leave.StatusApproved})
	if err != nil {
		return fmt.Errorf("failed to sum committed leave days: %w", err)
	}

	if committed[leaveType]+totalDays > entitlement.AnnualDays {
		return leave.ErrBalanceExceeded
	}
	return nil
}

func (s *leaveServiceImpl) recordTransition(ctx context.Context, action string, out approvalsvc.Outcome, extra audit.Values) {
	newValues := audit.Values{
		"status":         out.NewStatus,
		"approval_level": out.ToLevel,
	}
	for k, v := range extra {
		newValues[k] = v
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    out.ActorID,
		Action:     action,
		EntityType: auditEntityLeave,
		EntityID:   out.ID,
		OldValues: audit.Values{
			"status":         out.OldStatus,
			"approval_level": out.FromLevel,
		},
		NewValues: newValues,
	})
}

func (s *leaveServiceImpl) notifyApprover(ctx context.Context, approverUserID, requesterName string, request leave.Request) {
	s.notifier.Queue(ctx, notification.CreateRequest{
		UserID: approverUserID,
		Type:   notification.TypeApprovalRequested,
		Title:  "Leave approval needed",
		Message: fmt.Sprintf("%s requested %s leave from %s to %s (%.1f days).",
			requesterName, request.Type,
			request.StartDate.Format("2006-01-02"), request.EndDate.Format("2006-01-02"),
			request.TotalDays),
		Data: leaveData(request),
	})
}

// notifyEmployee queues a notification for the employee's user account.
// Employees without an account are skipped silently.
func (s *leaveServiceImpl) notifyEmployee(ctx context.Context, employeeID string, typ notification.Type, title, message string, data map[string]interface{}) {
	account, err := s.users.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			slog.Warn("failed to load notification recipient", "employee_id", employeeID, "error", err)
		}
		return
	}

	s.notifier.Queue(ctx, notification.CreateRequest{
		UserID:  account.ID,
		Type:    typ,
		Title:   title,
		Message: message,
		Data:    data,
	})
}

func (s *leaveServiceImpl) employeeName(ctx context.Context, employeeID string) string {
	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return "An employee"
	}
	return emp.FirstName + " " + emp.LastName
}

func leaveData(request leave.Request) map[string]interface{} {
	return map[string]interface{}{
		"entity_type": "leave",
		"entity_id":   request.ID,
		"leave_type":  string(request.Type),
	}
}
