package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/attendance"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/shift"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"
)

const auditEntityAttendance = "attendance"

type attendanceServiceImpl struct {
	attendances attendance.Repository
	employees   employee.EmployeeRepository
	shifts      shift.Repository
	assignments shift.AssignmentRepository
	auditor     audit.Recorder

	// Workday length for unscheduled days, and the grace window after the
	// expected end of day before the auto-close job claims the row.
	standardWorkHours float64
	autoCloseAfter    time.Duration

	now func() time.Time
}

func NewAttendanceService(
	attendances attendance.Repository,
	employees employee.EmployeeRepository,
	shifts shift.Repository,
	assignments shift.AssignmentRepository,
	standardWorkHours float64,
	autoCloseAfterHours int,
	auditor audit.Recorder,
) attendance.AttendanceService {
	return &attendanceServiceImpl{
		attendances:       attendances,
		employees:         employees,
		shifts:            shifts,
		assignments:       assignments,
		auditor:           auditor,
		standardWorkHours: standardWorkHours,
		autoCloseAfter:    time.Duration(autoCloseAfterHours) * time.Hour,
		now:               time.Now,
	}
}

func (s *attendanceServiceImpl) CheckIn(ctx context.Context, actor user.Actor, req attendance.CheckInRequest) (*attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	employeeID, err := s.resolveTargetEmployee(actor, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !emp.IsActive {
		return nil, employee.ErrEmployeeInactive
	}

	now := s.now()
	date := dateOf(now)

	existing, err := s.attendances.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to check today's attendance: %w", err)
	}
	if existing != nil {
		return nil, attendance.ErrAlreadyCheckedIn
	}

	rec := &attendance.Attendance{
		EmployeeID:  employeeID,
		Date:        date,
		CheckInTime: now,
		Notes:       req.Notes,
	}
	// The unique (employee_id, date) constraint backstops a racing second
	// check-in; the repository maps it to ErrAlreadyCheckedIn.
	rec, err = s.attendances.Create(ctx, rec)
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     "check_in",
		EntityType: auditEntityAttendance,
		EntityID:   rec.ID,
		NewValues: audit.Values{
			"employee_id":   employeeID,
			"date":          date.Format("2006-01-02"),
			"check_in_time": now.Format(time.RFC3339),
		},
	})

	return attendance.ToResponse(rec), nil
}

func (s *attendanceServiceImpl) CheckOut(ctx context.Context, actor user.Actor, req attendance.CheckOutRequest) (*attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	employeeID, err := s.resolveTargetEmployee(actor, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	rec, err := s.attendances.GetByEmployeeAndDate(ctx, employeeID, dateOf(now))
	if err != nil {
		return nil, fmt.Errorf("failed to load today's attendance: %w", err)
	}
	if rec == nil {
		return nil, attendance.ErrNotCheckedIn
	}
	if !rec.Open() {
		return nil, attendance.ErrAlreadyCheckedOut
	}

	expected, err := s.expectedHoursFor(ctx, employeeID, rec.Date)
	if err != nil {
		return nil, err
	}

	total, overtime := attendance.ComputeHours(rec.CheckInTime, now, expected)
	rec.CheckOutTime = &now
	rec.TotalHours = &total
	rec.OvertimeHours = &overtime
	if req.Notes != nil {
		rec.Notes = req.Notes
	}

	if err := s.attendances.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     "check_out",
		EntityType: auditEntityAttendance,
		EntityID:   rec.ID,
		NewValues: audit.Values{
			"check_out_time": now.Format(time.RFC3339),
			"total_hours":    total,
			"overtime_hours": overtime,
		},
	})

	return attendance.ToResponse(rec), nil
}

func (s *attendanceServiceImpl) Get(ctx context.Context, actor user.Actor, id string) (*attendance.AttendanceResponse, error) {
	rec, err := s.attendances.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(actor, rec); err != nil {
		return nil, err
	}
	return attendance.ToResponse(rec), nil
}

func (s *attendanceServiceImpl) List(ctx context.Context, actor user.Actor, filter attendance.Filter) ([]attendance.AttendanceResponse, int, error) {
	if !user.HasPermission(actor.Role, user.PermissionAttendanceViewAll) {
		if actor.EmployeeID == nil {
			return nil, 0, user.ErrInsufficientPermissions
		}
		filter.EmployeeID = *actor.EmployeeID
	}

	records, total, err := s.attendances.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, len(records))
	for i := range records {
		responses[i] = *attendance.ToResponse(&records[i])
	}
	return responses, total, nil
}

// Update corrects a recorded day. Hours are re-derived from the corrected
// times against the day's shift.
func (s *attendanceServiceImpl) Update(ctx context.Context, actor user.Actor, id string, req attendance.UpdateRequest) (*attendance.AttendanceResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionAttendanceManage) {
		return nil, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rec, err := s.attendances.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	old := audit.Values{
		"check_in_time": rec.CheckInTime.Format(time.RFC3339),
	}
	if rec.CheckOutTime != nil {
		old["check_out_time"] = rec.CheckOutTime.Format(time.RFC3339)
	}

	if req.CheckInTime != nil {
		rec.CheckInTime = *req.CheckInTime
	}
	if req.CheckOutTime != nil {
		rec.CheckOutTime = req.CheckOutTime
	}
	if req.Notes != nil {
		rec.Notes = req.Notes
	}

	if rec.CheckOutTime != nil {
		if rec.CheckOutTime.Before(rec.CheckInTime) {
			return nil, attendance.ErrCheckOutBeforeIn
		}
		expected, err := s.expectedHoursFor(ctx, rec.EmployeeID, rec.Date)
		if err != nil {
			return nil, err
		}
		total, overtime := attendance.ComputeHours(rec.CheckInTime, *rec.CheckOutTime, expected)
		rec.TotalHours = &total
		rec.OvertimeHours = &overtime
	}

	if err := s.attendances.Update(ctx, rec); err != nil {
		return nil, err
	}

	updated := audit.Values{
		"check_in_time": rec.CheckInTime.Format(time.RFC3339),
	}
	if rec.CheckOutTime != nil {
		updated["check_out_time"] = rec.CheckOutTime.Format(time.RFC3339)
	}
	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionUpdate,
		EntityType: auditEntityAttendance,
		EntityID:   rec.ID,
		OldValues:  old,
		NewValues:  updated,
	})

	return attendance.ToResponse(rec), nil
}

// AutoClose closes open attendances from previous days once the grace window
// after the expected end of day has passed. The row is closed at the shift
// end when the day was scheduled, otherwise at check-in plus the standard
// workday. Per-row failures are logged and skipped so one bad row cannot
// stall the job.
func (s *attendanceServiceImpl) AutoClose(ctx context.Context, now time.Time) (int, error) {
	open, err := s.attendances.ListOpenBefore(ctx, dateOf(now))
	if err != nil {
		return 0, fmt.Errorf("failed to list open attendances: %w", err)
	}

	closed := 0
	for i := range open {
		rec := &open[i]

		end, expected, err := s.dayEndFor(ctx, rec)
		if err != nil {
			slog.Warn("skipping auto-close", "attendance_id", rec.ID, "error", err)
			continue
		}
		if now.Before(end.Add(s.autoCloseAfter)) {
			continue
		}
		// A check-in after the scheduled end closes with zero hours rather
		// than a check-out in the past.
		if end.Before(rec.CheckInTime) {
			end = rec.CheckInTime
		}

		total, overtime := attendance.ComputeHours(rec.CheckInTime, end, expected)
		rec.CheckOutTime = &end
		rec.TotalHours = &total
		rec.OvertimeHours = &overtime

		if err := s.attendances.Update(ctx, rec); err != nil {
			slog.Warn("failed to auto-close attendance", "attendance_id", rec.ID, "error", err)
			continue
		}

		s.auditor.Record(ctx, audit.Entry{
			Action:     "auto_close",
			EntityType: auditEntityAttendance,
			EntityID:   rec.ID,
			NewValues: audit.Values{
				"check_out_time": end.Format(time.RFC3339),
				"total_hours":    total,
			},
		})
		closed++
	}

	return closed, nil
}

func (s *attendanceServiceImpl) resolveTargetEmployee(actor user.Actor, requested string) (string, error) {
	if requested == "" {
		if actor.EmployeeID == nil {
			return "", apperrors.Invalid("employee_id is required for accounts without an employee record")
		}
		return *actor.EmployeeID, nil
	}
	if !actor.OwnsEmployee(requested) && !user.HasPermission(actor.Role, user.PermissionAttendanceManage) {
		return "", user.ErrInsufficientPermissions
	}
	return requested, nil
}

func (s *attendanceServiceImpl) authorizeView(actor user.Actor, rec *attendance.Attendance) error {
	if user.HasPermission(actor.Role, user.PermissionAttendanceViewAll) {
		return nil
	}
	if actor.OwnsEmployee(rec.EmployeeID) {
		return nil
	}
	return user.ErrInsufficientPermissions
}

// shiftFor returns the shift assigned for the employee-date, or nil when the
// day is unscheduled.
func (s *attendanceServiceImpl) shiftFor(ctx context.Context, employeeID string, date time.Time) (*shift.Shift, error) {
	assignment, err := s.assignments.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to look up shift assignment: %w", err)
	}
	if assignment == nil {
		return nil, nil
	}
	return s.shifts.GetByID(ctx, assignment.ShiftID)
}

func (s *attendanceServiceImpl) expectedHoursFor(ctx context.Context, employeeID string, date time.Time) (float64, error) {
	sh, err := s.shiftFor(ctx, employeeID, date)
	if err != nil {
		return 0, err
	}
	if sh == nil {
		return s.standardWorkHours, nil
	}
	return sh.WorkHours()
}

// dayEndFor returns when the recorded day was expected to end and how many
// hours it was expected to run.
func (s *attendanceServiceImpl) dayEndFor(ctx context.Context, rec *attendance.Attendance) (time.Time, float64, error) {
	sh, err := s.shiftFor(ctx, rec.EmployeeID, rec.Date)
	if err != nil {
		return time.Time{}, 0, err
	}
	if sh == nil {
		end := rec.CheckInTime.Add(time.Duration(s.standardWorkHours * float64(time.Hour)))
		return end, s.standardWorkHours, nil
	}

	end, err := sh.EndOnDate(rec.Date)
	if err != nil {
		return time.Time{}, 0, err
	}
	expected, err := sh.WorkHours()
	if err != nil {
		return time.Time{}, 0, err
	}
	return end, expected, nil
}

// dateOf truncates a moment to its calendar date in UTC, matching the DATE
// column the unique (employee_id, date) constraint runs on.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
