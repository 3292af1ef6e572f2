package employee

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/branch"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/department"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/position"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"
)

type employeeFixture struct {
	repo        *fakeEmployeeRepo
	departments *fakeDepartmentRepo
	positions   *fakePositionRepo
	branches    *fakeBranchRepo
	recorder    *fakeRecorder
	service     employee.EmployeeService
}

func newEmployeeFixture() *employeeFixture {
	fx := &employeeFixture{
		repo: &fakeEmployeeRepo{},
		departments: &fakeDepartmentRepo{departments: []*department.Department{
			{ID: "dep-1", Name: "Engineering", IsActive: true},
			{ID: "dep-2", Name: "Sales", IsActive: false},
		}},
		positions: &fakePositionRepo{positions: []*position.Position{
			{ID: "pos-1", Name: "Engineer", DepartmentID: strPtr("dep-1"), Level: 3, IsActive: true},
			{ID: "pos-2", Name: "Account Executive", IsActive: false},
		}},
		branches: &fakeBranchRepo{branches: []*branch.Branch{
			{ID: "br-1", Name: "Jakarta HQ", Timezone: "Asia/Jakarta", IsActive: true},
			{ID: "br-2", Name: "Closed Branch", Timezone: "Asia/Jakarta", IsActive: false},
		}},
		recorder: &fakeRecorder{},
	}
	fx.service = NewEmployeeService(fx.repo, fx.departments, fx.positions, fx.branches, fx.recorder)
	return fx
}

var (
	actorAdmin = user.Actor{UserID: "u-admin", Role: user.RoleAdmin}
	actorMgr   = user.Actor{UserID: "u-mgr", EmployeeID: strPtr("emp-2"), Role: user.RoleManager}
)

func validCreateRequest() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		EmployeeCode: "EMP-0001",
		FirstName:    "Ana",
		LastName:     "Wijaya",
		Email:        "ana@example.com",
		HireDate:     "2025-02-01",
		DepartmentID: strPtr("dep-1"),
		PositionID:   strPtr("pos-1"),
		BranchID:     strPtr("br-1"),
		BaseSalary:   decimal.NewFromInt(9_000_000),
	}
}

func TestCreateEmployee(t *testing.T) {
	fx := newEmployeeFixture()

	resp, err := fx.service.Create(context.Background(), actorAdmin, validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, "EMP-0001", resp.EmployeeCode)
	assert.Equal(t, "Ana Wijaya", resp.FullName)
	assert.Equal(t, "2025-02-01", resp.HireDate)
	assert.True(t, resp.IsActive)
	assert.True(t, resp.BaseSalary.Equal(decimal.NewFromInt(9_000_000)))

	require.Len(t, fx.recorder.entries, 1)
	entry := fx.recorder.entries[0]
	assert.Equal(t, audit.ActionCreate, entry.Action)
	assert.Equal(t, "employee", entry.EntityType)
	assert.Equal(t, "EMP-0001", entry.NewValues["employee_code"])
}

func TestCreateRequiresManagePermission(t *testing.T) {
	fx := newEmployeeFixture()

	for _, actor := range []user.Actor{
		{UserID: "u-1", Role: user.RoleEmployee},
		{UserID: "u-2", Role: user.RoleManager},
		{UserID: "u-3", Role: user.RoleFinanceManager},
	} {
		_, err := fx.service.Create(context.Background(), actor, validCreateRequest())
		assert.ErrorIs(t, err, user.ErrInsufficientPermissions, "role %s", actor.Role)
	}
}

func TestCreateValidatesRequest(t *testing.T) {
	fx := newEmployeeFixture()

	cases := []struct {
		name   string
		mutate func(*employee.CreateEmployeeRequest)
	}{
		{"missing code", func(r *employee.CreateEmployeeRequest) { r.EmployeeCode = "" }},
		{"malformed code", func(r *employee.CreateEmployeeRequest) { r.EmployeeCode = "emp_1" }},
		{"missing first name", func(r *employee.CreateEmployeeRequest) { r.FirstName = "" }},
		{"bad email", func(r *employee.CreateEmployeeRequest) { r.Email = "nope" }},
		{"bad hire date", func(r *employee.CreateEmployeeRequest) { r.HireDate = "01/02/2025" }},
		{"negative salary", func(r *employee.CreateEmployeeRequest) { r.BaseSalary = decimal.NewFromInt(-1) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest()
			tc.mutate(&req)
			_, err := fx.service.Create(context.Background(), actorAdmin, req)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
		})
	}
}

func TestCreateDuplicateCodeAndEmail(t *testing.T) {
	fx := newEmployeeFixture()

	_, err := fx.service.Create(context.Background(), actorAdmin, validCreateRequest())
	require.NoError(t, err)

	dup := validCreateRequest()
	dup.Email = "other@example.com"
	_, err = fx.service.Create(context.Background(), actorAdmin, dup)
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)

	dup = validCreateRequest()
	dup.EmployeeCode = "EMP-0002"
	_, err = fx.service.Create(context.Background(), actorAdmin, dup)
	assert.ErrorIs(t, err, employee.ErrEmailExists)
}

func TestCreateChecksMasterReferences(t *testing.T) {
	fx := newEmployeeFixture()

	req := validCreateRequest()
	req.DepartmentID = strPtr("dep-404")
	_, err := fx.service.Create(context.Background(), actorAdmin, req)
	assert.ErrorIs(t, err, department.ErrDepartmentNotFound)

	req = validCreateRequest()
	req.DepartmentID = strPtr("dep-2")
	_, err = fx.service.Create(context.Background(), actorAdmin, req)
	assert.ErrorIs(t, err, department.ErrDepartmentInactive)

	req = validCreateRequest()
	req.PositionID = strPtr("pos-2")
	_, err = fx.service.Create(context.Background(), actorAdmin, req)
	assert.ErrorIs(t, err, position.ErrPositionInactive)

	req = validCreateRequest()
	req.BranchID = strPtr("br-2")
	_, err = fx.service.Create(context.Background(), actorAdmin, req)
	assert.ErrorIs(t, err, branch.ErrBranchInactive)

	req = validCreateRequest()
	req.ManagerID = strPtr("emp-404")
	_, err = fx.service.Create(context.Background(), actorAdmin, req)
	assert.ErrorIs(t, err, employee.ErrManagerNotFound)
}

func TestGetVisibility(t *testing.T) {
	fx := newEmployeeFixture()
	created, err := fx.service.Create(context.Background(), actorAdmin, validCreateRequest())
	require.NoError(t, err)

	// Owner reads their own record.
	owner := user.Actor{UserID: "u-ana", EmployeeID: &created.ID, Role: user.RoleEmployee}
	got, err := fx.service.Get(context.Background(), owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	// Another plain employee cannot.
	outsider := user.Actor{UserID: "u-out", EmployeeID: strPtr("emp-99"), Role: user.RoleEmployee}
	_, err = fx.service.Get(context.Background(), outsider, created.ID)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	// Managerial roles hold view-all.
	_, err = fx.service.Get(context.Background(), actorMgr, created.ID)
	require.NoError(t, err)

	_, err = fx.service.Get(context.Background(), actorAdmin, "emp-404")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestListRequiresViewAll(t *testing.T) {
	fx := newEmployeeFixture()
	_, err := fx.service.Create(context.Background(), actorAdmin, validCreateRequest())
	require.NoError(t, err)

	second := validCreateRequest()
	second.EmployeeCode = "EMP-0002"
	second.Email = "budi@example.com"
	second.DepartmentID = nil
	_, err = fx.service.Create(context.Background(), actorAdmin, second)
	require.NoError(t, err)

	staff := user.Actor{UserID: "u-staff", EmployeeID: strPtr("emp-1"), Role: user.RoleEmployee}
	_, _, err = fx.service.List(context.Background(), staff, employee.ListFilter{})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	all, total, err := fx.service.List(context.Background(), actorMgr, employee.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)

	engineering, total, err := fx.service.List(context.Background(), actorMgr, employee.ListFilter{DepartmentID: "dep-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, engineering, 1)
	assert.Equal(t, "EMP-0001", engineering[0].EmployeeCode)
}

func TestUpdateEmployee(t *testing.T) {
	fx := newEmployeeFixture()
	ana, err := fx.service.Create(context.Background(), actorAdmin, validCreateRequest())
	require.NoError(t, err)

	budiReq := validCreateRequest()
	budiReq.EmployeeCode = "EMP-0002"
	budiReq.Email = "budi@example.com"
	budiReq.FirstName = "Budi"
	budi, err := fx.service.Create(context.Background(), actorAdmin, budiReq)
	require.NoError(t, err)

	salary := decimal.NewFromInt(12_000_000)
	resp, err := fx.service.Update(context.Background(), actorAdmin, employee.UpdateEmployeeRequest{
		ID:         ana.ID,
		Email:      strPtr("ana.w@example.com"),
		BaseSalary: &salary,
		ManagerID:  &budi.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "ana.w@example.com", resp.Email)
	assert.True(t, resp.BaseSalary.Equal(salary))
	require.NotNil(t, resp.ManagerID)
	assert.Equal(t, budi.ID, *resp.ManagerID)

	last := fx.recorder.entries[len(fx.recorder.entries)-1]
	assert.Equal(t, audit.ActionUpdate, last.Action)
	assert.Equal(t, "ana@example.com", last.OldValues["email"])
	assert.Equal(t, "ana.w@example.com", last.NewValues["email"])

	// Nobody manages themselves.
	_, err = fx.service.Update(context.Background(), actorAdmin, employee.UpdateEmployeeRequest{
		ID:        ana.ID,
		ManagerID: &ana.ID,
	})
	assert.ErrorIs(t, err, employee.ErrSelfManager)

	// Email must stay unique.
	_, err = fx.service.Update(context.Background(), actorAdmin, employee.UpdateEmployeeRequest{
		ID:    ana.ID,
		Email: strPtr("budi@example.com"),
	})
	assert.ErrorIs(t, err, employee.ErrEmailExists)

	_, err = fx.service.Update(context.Background(), actorAdmin, employee.UpdateEmployeeRequest{
		ID:    "emp-404",
		Email: strPtr("x@example.com"),
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestUpdateTogglesActiveFlag(t *testing.T) {
	fx := newEmployeeFixture()
	ana, err := fx.service.Create(context.Background(), actorAdmin, validCreateRequest())
	require.NoError(t, err)

	resp, err := fx.service.Update(context.Background(), actorAdmin, employee.UpdateEmployeeRequest{
		ID:       ana.ID,
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, resp.IsActive)

	// HR cannot deactivate their own record through update either.
	hrReq := validCreateRequest()
	hrReq.EmployeeCode = "EMP-0003"
	hrReq.Email = "hr@example.com"
	hr, err := fx.service.Create(context.Background(), actorAdmin, hrReq)
	require.NoError(t, err)

	hrActor := user.Actor{UserID: "u-hr", EmployeeID: &hr.ID, Role: user.RoleHRManager}
	_, err = fx.service.Update(context.Background(), hrActor, employee.UpdateEmployeeRequest{
		ID:       hr.ID,
		IsActive: boolPtr(false),
	})
	assert.ErrorIs(t, err, employee.ErrCannotDeactivateSelf)
}

func TestDeactivateAndActivate(t *testing.T) {
	fx := newEmployeeFixture()
	ana, err := fx.service.Create(context.Background(), actorAdmin, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, fx.service.Deactivate(context.Background(), actorAdmin, ana.ID))
	got, err := fx.service.Get(context.Background(), actorAdmin, ana.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	audits := len(fx.recorder.entries)
	// Repeat deactivation is a no-op, no duplicate audit entry.
	require.NoError(t, fx.service.Deactivate(context.Background(), actorAdmin, ana.ID))
	assert.Len(t, fx.recorder.entries, audits)

	require.NoError(t, fx.service.Activate(context.Background(), actorAdmin, ana.ID))
	got, err = fx.service.Get(context.Background(), actorAdmin, ana.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	last := fx.recorder.entries[len(fx.recorder.entries)-1]
	assert.Equal(t, "activate", last.Action)

	// Admins cannot deactivate their own employee record.
	self := user.Actor{UserID: "u-self", EmployeeID: &ana.ID, Role: user.RoleAdmin}
	err = fx.service.Deactivate(context.Background(), self, ana.ID)
	assert.ErrorIs(t, err, employee.ErrCannotDeactivateSelf)

	err = fx.service.Deactivate(context.Background(), actorAdmin, "emp-404")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
