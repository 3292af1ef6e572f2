package fixtures

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/approval"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/leave"
)

func intPtr(i int) *int { return &i }

// defaultEntitlements is the stock leave allowance table. Unpaid leave is
// exempt from balance checks, so its day count is irrelevant.
var defaultEntitlements = []leave.Entitlement{
	{LeaveType: leave.TypeAnnual, AnnualDays: 12, RequiresBalance: true},
	{LeaveType: leave.TypeSick, AnnualDays: 14, RequiresBalance: true},
	{LeaveType: leave.TypeUnpaid, AnnualDays: 0, RequiresBalance: false},
	{LeaveType: leave.TypeMaternity, AnnualDays: 90, RequiresBalance: true},
	{LeaveType: leave.TypePaternity, AnnualDays: 14, RequiresBalance: true},
}

// defaultWorkflows returns the stock two-level approval chains: direct
// manager first, then the HR manager for leave or the finance manager for
// loans. Manager steps auto-approve after three days so an absent manager
// cannot stall a request forever.
func defaultWorkflows() []approval.Workflow {
	managerStep := approval.Step{
		StepOrder:             1,
		ApproverType:          approval.ApproverAnyManager,
		IsRequired:            true,
		CanDelegate:           true,
		AutoApprove:           true,
		AutoApproveAfterHours: intPtr(72),
	}

	return []approval.Workflow{
		{
			Name:       "Default Leave Approval",
			EntityType: approval.EntityTypeLeave,
			IsActive:   true,
			Steps: []approval.Step{
				managerStep,
				{StepOrder: 2, ApproverType: approval.ApproverHRManager, IsRequired: true, CanDelegate: true},
			},
		},
		{
			Name:       "Default Loan Approval",
			EntityType: approval.EntityTypeLoan,
			IsActive:   true,
			Steps: []approval.Step{
				managerStep,
				{StepOrder: 2, ApproverType: approval.ApproverFinanceManager, IsRequired: true, CanDelegate: false},
			},
		},
	}
}

// SeedDefaults populates the entitlement table and the stock approval
// workflows on an empty database. A database that already carries either is
// left untouched, so restarts and redeploys never duplicate or overwrite
// operator changes.
func SeedDefaults(ctx context.Context, entitlements leave.EntitlementRepository, workflows approval.WorkflowRepository) error {
	existing, err := entitlements.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect leave entitlements: %w", err)
	}
	if len(existing) == 0 {
		for _, entitlement := range defaultEntitlements {
			if _, err := entitlements.Upsert(ctx, entitlement); err != nil {
				return fmt.Errorf("failed to seed %s entitlement: %w", entitlement.LeaveType, err)
			}
		}
		slog.Info("Seeded default leave entitlements", "count", len(defaultEntitlements))
	}

	_, total, err := workflows.List(ctx, approval.ListFilter{})
	if err != nil {
		return fmt.Errorf("failed to inspect approval workflows: %w", err)
	}
	if total == 0 {
		seeded := defaultWorkflows()
		for _, workflow := range seeded {
			if _, err := workflows.Create(ctx, workflow); err != nil {
				return fmt.Errorf("failed to seed workflow %q: %w", workflow.Name, err)
			}
		}
		slog.Info("Seeded default approval workflows", "count", len(seeded))
	}

	return nil
}
