package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
	StatusPaid     Status = "paid"
)

// Record is a generated payroll row for one employee and period.
// Monetary figures are derived once at generation (loan deductions are
// re-derived at pay time) and stored; the row is never physically deleted.
type Record struct {
	ID               string
	EmployeeID       string
	PeriodMonth      int
	PeriodYear       int
	BasicSalary      decimal.Decimal
	TotalAllowances  decimal.Decimal
	OvertimePay      decimal.Decimal
	TotalBonuses     decimal.Decimal
	TotalDeductions  decimal.Decimal
	TaxAmount        decimal.Decimal
	InsuranceAmount  decimal.Decimal
	PensionAmount    decimal.Decimal
	LoanDeductions   decimal.Decimal
	GrossPay         decimal.Decimal
	NetPay           decimal.Decimal
	AllowanceDetails map[string]decimal.Decimal
	DeductionDetails map[string]decimal.Decimal
	Status           Status
	PayslipPath      *string
	PaidAt           *time.Time
	PaidBy           *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined fields, populated by list/detail queries
	EmployeeName *string
	EmployeeCode *string
	PositionName *string
}

// Rates are the statutory percentages and overtime parameters read from
// configuration at startup.
type Rates struct {
	TaxRate            decimal.Decimal
	InsuranceRate      decimal.Decimal
	PensionRate        decimal.Decimal
	OvertimeMultiplier decimal.Decimal
	// Divisor turning a monthly salary into an hourly rate.
	StandardMonthlyHours decimal.Decimal
}

// ComputeInput carries everything a single payroll computation needs.
type ComputeInput struct {
	BasicSalary    decimal.Decimal
	Allowances     map[string]decimal.Decimal
	Bonuses        map[string]decimal.Decimal
	Deductions     map[string]decimal.Decimal
	OvertimeHours  decimal.Decimal
	LoanDeductions decimal.Decimal
}

// Computation is the derived breakdown for one employee and period.
type Computation struct {
	TotalAllowances decimal.Decimal
	OvertimePay     decimal.Decimal
	TotalBonuses    decimal.Decimal
	TotalDeductions decimal.Decimal
	TaxAmount       decimal.Decimal
	InsuranceAmount decimal.Decimal
	PensionAmount   decimal.Decimal
	LoanDeductions  decimal.Decimal
	GrossPay        decimal.Decimal
	NetPay          decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

func sumDetails(details map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range details {
		total = total.Add(amount)
	}
	return total
}

// Compute derives gross and net pay:
//
//	gross = basic + allowances + overtime pay + bonuses
//	net   = gross - deductions - tax - insurance - pension - loan deductions
//
// Overtime pay is overtime hours x hourly rate (basic / standard monthly
// hours) x the configured multiplier. Statutory amounts are percentages of
// gross. A negative net pay is rejected.
func Compute(in ComputeInput, rates Rates) (Computation, error) {
	var c Computation

	c.TotalAllowances = sumDetails(in.Allowances)
	c.TotalBonuses = sumDetails(in.Bonuses)
	c.TotalDeductions = sumDetails(in.Deductions)
	c.LoanDeductions = in.LoanDeductions

	hourlyRate := in.BasicSalary.Div(rates.StandardMonthlyHours)
	c.OvertimePay = in.OvertimeHours.Mul(hourlyRate).Mul(rates.OvertimeMultiplier).Round(2)

	c.GrossPay = in.BasicSalary.
		Add(c.TotalAllowances).
		Add(c.OvertimePay).
		Add(c.TotalBonuses)

	c.TaxAmount = c.GrossPay.Mul(rates.TaxRate).Div(hundred).Round(2)
	c.InsuranceAmount = c.GrossPay.Mul(rates.InsuranceRate).Div(hundred).Round(2)
	c.PensionAmount = c.GrossPay.Mul(rates.PensionRate).Div(hundred).Round(2)

	c.NetPay = c.GrossPay.
		Sub(c.TotalDeductions).
		Sub(c.TaxAmount).
		Sub(c.InsuranceAmount).
		Sub(c.PensionAmount).
		Sub(c.LoanDeductions)

	if c.NetPay.IsNegative() {
		return Computation{}, apperrors.Newf(apperrors.CodeDomain, "net pay is negative (%s): deductions exceed gross pay", c.NetPay)
	}
	return c, nil
}
