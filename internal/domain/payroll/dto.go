package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kelola-hr/hrm-backend-go/internal/pkg/validator"
)

type RecordResponse struct {
	ID               string                     `json:"id"`
	EmployeeID       string                     `json:"employee_id"`
	EmployeeName     *string                    `json:"employee_name,omitempty"`
	EmployeeCode     *string                    `json:"employee_code,omitempty"`
	PositionName     *string                    `json:"position_name,omitempty"`
	PeriodMonth      int                        `json:"period_month"`
	PeriodYear       int                        `json:"period_year"`
	BasicSalary      decimal.Decimal            `json:"basic_salary"`
	TotalAllowances  decimal.Decimal            `json:"total_allowances"`
	OvertimePay      decimal.Decimal            `json:"overtime_pay"`
	TotalBonuses     decimal.Decimal            `json:"total_bonuses"`
	TotalDeductions  decimal.Decimal            `json:"total_deductions"`
	TaxAmount        decimal.Decimal            `json:"tax_amount"`
	InsuranceAmount  decimal.Decimal            `json:"insurance_amount"`
	PensionAmount    decimal.Decimal            `json:"pension_amount"`
	LoanDeductions   decimal.Decimal            `json:"loan_deductions"`
	GrossPay         decimal.Decimal            `json:"gross_pay"`
	NetPay           decimal.Decimal            `json:"net_pay"`
	AllowanceDetails map[string]decimal.Decimal `json:"allowance_details,omitempty"`
	DeductionDetails map[string]decimal.Decimal `json:"deduction_details,omitempty"`
	Status           Status                     `json:"status"`
	PaidAt           *time.Time                 `json:"paid_at,omitempty"`
	CreatedAt        time.Time                  `json:"created_at"`
}

func ToResponse(rec *Record) *RecordResponse {
	return &RecordResponse{
		ID:               rec.ID,
		EmployeeID:       rec.EmployeeID,
		EmployeeName:     rec.EmployeeName,
		EmployeeCode:     rec.EmployeeCode,
		PositionName:     rec.PositionName,
		PeriodMonth:      rec.PeriodMonth,
		PeriodYear:       rec.PeriodYear,
		BasicSalary:      rec.BasicSalary,
		TotalAllowances:  rec.TotalAllowances,
		OvertimePay:      rec.OvertimePay,
		TotalBonuses:     rec.TotalBonuses,
		TotalDeductions:  rec.TotalDeductions,
		TaxAmount:        rec.TaxAmount,
		InsuranceAmount:  rec.InsuranceAmount,
		PensionAmount:    rec.PensionAmount,
		LoanDeductions:   rec.LoanDeductions,
		GrossPay:         rec.GrossPay,
		NetPay:           rec.NetPay,
		AllowanceDetails: rec.AllowanceDetails,
		DeductionDetails: rec.DeductionDetails,
		Status:           rec.Status,
		PaidAt:           rec.PaidAt,
		CreatedAt:        rec.CreatedAt,
	}
}

// GenerateRequest asks for a payroll run over all active employees for one
// period. Ad-hoc allowances, bonuses and deductions apply to every generated
// row; per-employee figures come from the employee record and attendance.
type GenerateRequest struct {
	PeriodMonth int                        `json:"period_month"`
	PeriodYear  int                        `json:"period_year"`
	Allowances  map[string]decimal.Decimal `json:"allowances,omitempty"`
	Bonuses     map[string]decimal.Decimal `json:"bonuses,omitempty"`
	Deductions  map[string]decimal.Decimal `json:"deductions,omitempty"`
}

func (r GenerateRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(r.PeriodMonth) {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "period_month must be between 1 and 12"})
	}
	if r.PeriodYear < 2000 || r.PeriodYear > 2100 {
		errs = append(errs, validator.ValidationError{Field: "period_year", Message: "period_year must be between 2000 and 2100"})
	}
	for name, amount := range r.Allowances {
		if amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "allowances." + name, Message: "amount cannot be negative"})
		}
	}
	for name, amount := range r.Bonuses {
		if amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "bonuses." + name, Message: "amount cannot be negative"})
		}
	}
	for name, amount := range r.Deductions {
		if amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "deductions." + name, Message: "amount cannot be negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// GenerateResponse summarizes one payroll run.
type GenerateResponse struct {
	PeriodMonth int      `json:"period_month"`
	PeriodYear  int      `json:"period_year"`
	Generated   int      `json:"generated"`
	Skipped     int      `json:"skipped"`
	Failed      []string `json:"failed,omitempty"`
}
