package shift

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/shift"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"
)

type shiftFixture struct {
	shifts      *fakeShiftRepo
	assignments *fakeAssignmentRepo
	employees   *fakeEmployeeRepo
	recorder    *fakeRecorder
	service     shift.ShiftService
}

func newShiftFixture() *shiftFixture {
	fx := &shiftFixture{
		shifts:      &fakeShiftRepo{},
		assignments: &fakeAssignmentRepo{},
		employees:   &fakeEmployeeRepo{},
		recorder:    &fakeRecorder{},
	}
	fx.shifts.assignments = fx.assignments

	fx.employees.employees = []*employee.Employee{
		{ID: "emp-1", EmployeeCode: "EMP001", FirstName: "Ana", LastName: "Wijaya", IsActive: true},
		{ID: "emp-2", EmployeeCode: "EMP002", FirstName: "Budi", LastName: "Santoso", IsActive: false},
	}

	fx.service = NewShiftService(fx.shifts, fx.assignments, fx.employees, fx.recorder)
	return fx
}

var (
	actorHR  = user.Actor{UserID: "u-hr", Role: user.RoleHRManager}
	actorEmp = user.Actor{UserID: "u-emp", EmployeeID: strPtr("emp-1"), Role: user.RoleEmployee}
)

func createShift(t *testing.T, fx *shiftFixture, name, start, end string, breakMinutes int) *shift.ShiftResponse {
	t.Helper()
	resp, err := fx.service.Create(context.Background(), actorHR, shift.CreateShiftRequest{
		Name:         name,
		StartTime:    start,
		EndTime:      end,
		BreakMinutes: breakMinutes,
	})
	require.NoError(t, err)
	return resp
}

func TestCreateShift(t *testing.T) {
	fx := newShiftFixture()

	resp := createShift(t, fx, "morning", "06:00", "14:00", 30)
	assert.Equal(t, "morning", resp.Name)
	assert.True(t, resp.IsActive)
	require.Len(t, fx.recorder.entries, 1)
	assert.Equal(t, "create", fx.recorder.entries[0].Action)

	_, err := fx.service.Create(context.Background(), actorEmp, shift.CreateShiftRequest{
		Name: "late", StartTime: "14:00", EndTime: "22:00",
	})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = fx.service.Create(context.Background(), actorHR, shift.CreateShiftRequest{
		Name: "morning", StartTime: "07:00", EndTime: "15:00",
	})
	assert.ErrorIs(t, err, shift.ErrNameExists)

	_, err = fx.service.Create(context.Background(), actorHR, shift.CreateShiftRequest{
		Name: "broken", StartTime: "26:00", EndTime: "15:00",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestUpdateShift(t *testing.T) {
	fx := newShiftFixture()
	created := createShift(t, fx, "morning", "06:00", "14:00", 30)

	end := "15:00"
	inactive := false
	resp, err := fx.service.Update(context.Background(), actorHR, created.ID, shift.UpdateShiftRequest{
		EndTime:  &end,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "15:00", resp.EndTime)
	assert.False(t, resp.IsActive)

	_, err = fx.service.Update(context.Background(), actorEmp, created.ID, shift.UpdateShiftRequest{EndTime: &end})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
}

func TestListShifts(t *testing.T) {
	fx := newShiftFixture()
	createShift(t, fx, "morning", "06:00", "14:00", 30)
	created := createShift(t, fx, "night", "22:00", "06:00", 60)

	inactive := false
	_, err := fx.service.Update(context.Background(), actorHR, created.ID, shift.UpdateShiftRequest{IsActive: &inactive})
	require.NoError(t, err)

	all, err := fx.service.List(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := fx.service.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "morning", active[0].Name)
}

func TestAssignShift(t *testing.T) {
	fx := newShiftFixture()
	ctx := context.Background()
	created := createShift(t, fx, "morning", "06:00", "14:00", 30)

	resp, err := fx.service.Assign(ctx, actorHR, shift.AssignRequest{
		EmployeeID: "emp-1",
		ShiftID:    created.ID,
		WorkDate:   "2026-03-02",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", resp.WorkDate)
	require.NotNil(t, resp.ShiftName)
	assert.Equal(t, "morning", *resp.ShiftName)
	require.NotNil(t, resp.EmployeeName)
	assert.Equal(t, "Ana Wijaya", *resp.EmployeeName)

	// One shift per employee per day.
	_, err = fx.service.Assign(ctx, actorHR, shift.AssignRequest{
		EmployeeID: "emp-1",
		ShiftID:    created.ID,
		WorkDate:   "2026-03-02",
	})
	assert.ErrorIs(t, err, shift.ErrDateAssigned)

	_, err = fx.service.Assign(ctx, actorHR, shift.AssignRequest{
		EmployeeID: "emp-2",
		ShiftID:    created.ID,
		WorkDate:   "2026-03-02",
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)

	_, err = fx.service.Assign(ctx, actorEmp, shift.AssignRequest{
		EmployeeID: "emp-1",
		ShiftID:    created.ID,
		WorkDate:   "2026-03-03",
	})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = fx.service.Assign(ctx, actorHR, shift.AssignRequest{
		EmployeeID: "emp-1",
		ShiftID:    created.ID,
		WorkDate:   "not-a-date",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestAssignRejectsInactiveShift(t *testing.T) {
	fx := newShiftFixture()
	ctx := context.Background()
	created := createShift(t, fx, "morning", "06:00", "14:00", 30)

	inactive := false
	_, err := fx.service.Update(ctx, actorHR, created.ID, shift.UpdateShiftRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = fx.service.Assign(ctx, actorHR, shift.AssignRequest{
		EmployeeID: "emp-1",
		ShiftID:    created.ID,
		WorkDate:   "2026-03-02",
	})
	assert.ErrorIs(t, err, shift.ErrShiftInactive)
}

func TestDeleteShiftGuardsAssignments(t *testing.T) {
	fx := newShiftFixture()
	ctx := context.Background()
	created := createShift(t, fx, "morning", "06:00", "14:00", 30)

	resp, err := fx.service.Assign(ctx, actorHR, shift.AssignRequest{
		EmployeeID: "emp-1",
		ShiftID:    created.ID,
		WorkDate:   "2026-03-02",
	})
	require.NoError(t, err)

	err = fx.service.Delete(ctx, actorHR, created.ID)
	assert.ErrorIs(t, err, shift.ErrShiftInUse)

	err = fx.service.Unassign(ctx, actorHR, resp.ID)
	require.NoError(t, err)

	err = fx.service.Delete(ctx, actorHR, created.ID)
	require.NoError(t, err)

	_, err = fx.service.Get(ctx, created.ID)
	assert.ErrorIs(t, err, shift.ErrShiftNotFound)
}

func TestListAssignments(t *testing.T) {
	fx := newShiftFixture()
	ctx := context.Background()
	created := createShift(t, fx, "morning", "06:00", "14:00", 30)

	_, err := fx.service.Assign(ctx, actorHR, shift.AssignRequest{
		EmployeeID: "emp-1", ShiftID: created.ID, WorkDate: "2026-03-02",
	})
	require.NoError(t, err)
	_, err = fx.service.Assign(ctx, actorHR, shift.AssignRequest{
		EmployeeID: "emp-1", ShiftID: created.ID, WorkDate: "2026-03-03",
	})
	require.NoError(t, err)

	// The roster is readable by any employee.
	all, total, err := fx.service.ListAssignments(ctx, actorEmp, shift.AssignmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)

	filtered, total, err := fx.service.ListAssignments(ctx, actorHR, shift.AssignmentFilter{EmployeeID: "emp-2"})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, filtered)
}
