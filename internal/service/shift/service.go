package shift

import (
	"context"
	"fmt"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/shift"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/validator"
)

const (
	auditEntityShift      = "shift"
	auditEntityAssignment = "shift_assignment"
)

type shiftServiceImpl struct {
	shifts      shift.Repository
	assignments shift.AssignmentRepository
	employees   employee.EmployeeRepository
	auditor     audit.Recorder
}

func NewShiftService(
	shifts shift.Repository,
	assignments shift.AssignmentRepository,
	employees employee.EmployeeRepository,
	auditor audit.Recorder,
) shift.ShiftService {
	return &shiftServiceImpl{
		shifts:      shifts,
		assignments: assignments,
		employees:   employees,
		auditor:     auditor,
	}
}

func (s *shiftServiceImpl) Create(ctx context.Context, actor user.Actor, req shift.CreateShiftRequest) (*shift.ShiftResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionShiftManage) {
		return nil, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sh := &shift.Shift{
		Name:         req.Name,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		BreakMinutes: req.BreakMinutes,
		IsActive:     true,
	}
	sh, err := s.shifts.Create(ctx, sh)
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionCreate,
		EntityType: auditEntityShift,
		EntityID:   sh.ID,
		NewValues: audit.Values{
			"name":       sh.Name,
			"start_time": sh.StartTime,
			"end_time":   sh.EndTime,
		},
	})

	return shift.ToResponse(sh), nil
}

func (s *shiftServiceImpl) Get(ctx context.Context, id string) (*shift.ShiftResponse, error) {
	sh, err := s.shifts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return shift.ToResponse(sh), nil
}

func (s *shiftServiceImpl) List(ctx context.Context, activeOnly bool) ([]shift.ShiftResponse, error) {
	shifts, err := s.shifts.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}

	responses := make([]shift.ShiftResponse, len(shifts))
	for i := range shifts {
		responses[i] = *shift.ToResponse(&shifts[i])
	}
	return responses, nil
}

func (s *shiftServiceImpl) Update(ctx context.Context, actor user.Actor, id string, req shift.UpdateShiftRequest) (*shift.ShiftResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionShiftManage) {
		return nil, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sh, err := s.shifts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	old := audit.Values{
		"name":       sh.Name,
		"start_time": sh.StartTime,
		"end_time":   sh.EndTime,
		"is_active":  sh.IsActive,
	}

	if req.Name != nil {
		sh.Name = *req.Name
	}
	if req.StartTime != nil {
		sh.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		sh.EndTime = *req.EndTime
	}
	if req.BreakMinutes != nil {
		sh.BreakMinutes = *req.BreakMinutes
	}
	if req.IsActive != nil {
		sh.IsActive = *req.IsActive
	}

	if err := s.shifts.Update(ctx, sh); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionUpdate,
		EntityType: auditEntityShift,
		EntityID:   sh.ID,
		OldValues:  old,
		NewValues: audit.Values{
			"name":       sh.Name,
			"start_time": sh.StartTime,
			"end_time":   sh.EndTime,
			"is_active":  sh.IsActive,
		},
	})

	return shift.ToResponse(sh), nil
}

func (s *shiftServiceImpl) Delete(ctx context.Context, actor user.Actor, id string) error {
	if !user.HasPermission(actor.Role, user.PermissionShiftManage) {
		return user.ErrInsufficientPermissions
	}

	sh, err := s.shifts.GetByID(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := s.shifts.HasAssignments(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check shift assignments: %w", err)
	}
	if inUse {
		return shift.ErrShiftInUse
	}

	if err := s.shifts.Delete(ctx, id); err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionDelete,
		EntityType: auditEntityShift,
		EntityID:   id,
		OldValues:  audit.Values{"name": sh.Name},
	})

	return nil
}

func (s *shiftServiceImpl) Assign(ctx context.Context, actor user.Actor, req shift.AssignRequest) (*shift.AssignmentResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionShiftManage) {
		return nil, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	workDate, _ := validator.IsValidDate(req.WorkDate)

	emp, err := s.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !emp.IsActive {
		return nil, employee.ErrEmployeeInactive
	}

	sh, err := s.shifts.GetByID(ctx, req.ShiftID)
	if err != nil {
		return nil, err
	}
	if !sh.IsActive {
		return nil, shift.ErrShiftInactive
	}

	assignment := &shift.Assignment{
		EmployeeID: req.EmployeeID,
		ShiftID:    req.ShiftID,
		WorkDate:   workDate,
	}
	// The unique (employee_id, work_date) constraint rejects a second shift
	// on the same day; the repository maps it to ErrDateAssigned.
	assignment, err = s.assignments.Create(ctx, assignment)
	if err != nil {
		return nil, err
	}

	name := emp.FullName()
	assignment.EmployeeName = &name
	assignment.ShiftName = &sh.Name
	assignment.StartTime = &sh.StartTime
	assignment.EndTime = &sh.EndTime

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     "assign",
		EntityType: auditEntityAssignment,
		EntityID:   assignment.ID,
		NewValues: audit.Values{
			"employee_id": req.EmployeeID,
			"shift_id":    req.ShiftID,
			"work_date":   req.WorkDate,
		},
	})

	return shift.ToAssignmentResponse(assignment), nil
}

// ListAssignments returns the roster. Any authenticated role with shift view
// rights may read it; employees need to see colleagues' schedules to plan
// handovers.
func (s *shiftServiceImpl) ListAssignments(ctx context.Context, actor user.Actor, filter shift.AssignmentFilter) ([]shift.AssignmentResponse, int, error) {
	if !user.HasPermission(actor.Role, user.PermissionShiftView) {
		return nil, 0, user.ErrInsufficientPermissions
	}

	assignments, total, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shift assignments: %w", err)
	}

	responses := make([]shift.AssignmentResponse, len(assignments))
	for i := range assignments {
		responses[i] = *shift.ToAssignmentResponse(&assignments[i])
	}
	return responses, total, nil
}

func (s *shiftServiceImpl) Unassign(ctx context.Context, actor user.Actor, id string) error {
	if !user.HasPermission(actor.Role, user.PermissionShiftManage) {
		return user.ErrInsufficientPermissions
	}

	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.assignments.Delete(ctx, id); err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     "unassign",
		EntityType: auditEntityAssignment,
		EntityID:   id,
		OldValues: audit.Values{
			"employee_id": assignment.EmployeeID,
			"shift_id":    assignment.ShiftID,
			"work_date":   assignment.WorkDate.Format("2006-01-02"),
		},
	})

	return nil
}
