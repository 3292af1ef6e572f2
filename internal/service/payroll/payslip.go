package payroll

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/payroll"
)

// renderPayslip lays out one A4 payslip for a payroll record and returns the
// PDF bytes.
func renderPayslip(rec *payroll.Record, employeeName, employeeCode string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", employeeName, employeeCode))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %04d-%02d", rec.PeriodYear, rec.PeriodMonth))
	pdf.Ln(10)

	line := func(label string, amount decimal.Decimal) {
		pdf.CellFormat(120, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, amount.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.Ln(7)
	}
	heading := func(label string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, label)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
	}

	heading("Earnings")
	line("Basic salary", rec.BasicSalary)
	for name, amount := range rec.AllowanceDetails {
		line("Allowance: "+name, amount)
	}
	if !rec.OvertimePay.IsZero() {
		line("Overtime pay", rec.OvertimePay)
	}
	if !rec.TotalBonuses.IsZero() {
		line("Bonuses", rec.TotalBonuses)
	}
	line("Gross pay", rec.GrossPay)
	pdf.Ln(4)

	heading("Deductions")
	for name, amount := range rec.DeductionDetails {
		line("Deduction: "+name, amount)
	}
	line("Tax", rec.TaxAmount)
	line("Insurance", rec.InsuranceAmount)
	line("Pension", rec.PensionAmount)
	if !rec.LoanDeductions.IsZero() {
		line("Loan repayment", rec.LoanDeductions)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	line("Net pay", rec.NetPay)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
