package payroll

import (
	"context"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
)

type PayrollService interface {
	Generate(ctx context.Context, actor user.Actor, req GenerateRequest) (*GenerateResponse, error)
	Get(ctx context.Context, actor user.Actor, id string) (*RecordResponse, error)
	List(ctx context.Context, actor user.Actor, filter Filter) ([]RecordResponse, int, error)
	Approve(ctx context.Context, actor user.Actor, id string) (*RecordResponse, error)
	// Pay finalizes an approved record: loan deductions are re-derived from
	// the employee's active loans and applied in the same transaction, and
	// the payslip is rendered and archived.
	Pay(ctx context.Context, actor user.Actor, id string) (*RecordResponse, error)
	// Payslip renders the payslip PDF for a paid record.
	Payslip(ctx context.Context, actor user.Actor, id string) ([]byte, error)
}
