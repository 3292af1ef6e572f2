package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/payroll"
	"github.com/kelola-hr/hrm-backend-go/internal/handler/http/response"
)

type PayrollHandler interface {
	GeneratePayroll(w http.ResponseWriter, r *http.Request)
	GetPayroll(w http.ResponseWriter, r *http.Request)
	ListPayrolls(w http.ResponseWriter, r *http.Request)
	ApprovePayroll(w http.ResponseWriter, r *http.Request)
	PayPayroll(w http.ResponseWriter, r *http.Request)
	DownloadPayslip(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// GeneratePayroll implements PayrollHandler
func (h *payrollHandlerImpl) GeneratePayroll(w http.ResponseWriter, r *http.Request) {
	var req payroll.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.payrollService.Generate(r.Context(), actorFromRequest(r), req)
	if err != nil {
		slog.Error("Generate payroll service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll generated successfully", result)
}

// GetPayroll implements PayrollHandler
func (h *payrollHandlerImpl) GetPayroll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Payroll ID is required", nil)
		return
	}

	result, err := h.payrollService.Get(r.Context(), actorFromRequest(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListPayrolls implements PayrollHandler
func (h *payrollHandlerImpl) ListPayrolls(w http.ResponseWriter, r *http.Request) {
	filter := payroll.Filter{
		EmployeeID:  r.URL.Query().Get("employee_id"),
		PeriodMonth: getIntQueryParam(r, "period_month", 0),
		PeriodYear:  getIntQueryParam(r, "period_year", 0),
		Status:      r.URL.Query().Get("status"),
		Page:        getIntQueryParam(r, "page", 1),
		Limit:       getIntQueryParam(r, "limit", 20),
	}

	results, total, err := h.payrollService.List(r.Context(), actorFromRequest(r), filter)
	if err != nil {
		slog.Error("List payrolls service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, response.Paginate(filter.Page, filter.Limit, int64(total)))
}

// ApprovePayroll implements PayrollHandler
func (h *payrollHandlerImpl) ApprovePayroll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Payroll ID is required", nil)
		return
	}

	result, err := h.payrollService.Approve(r.Context(), actorFromRequest(r), id)
	if err != nil {
		slog.Error("Approve payroll service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll approved", result)
}

// PayPayroll implements PayrollHandler
func (h *payrollHandlerImpl) PayPayroll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Payroll ID is required", nil)
		return
	}

	result, err := h.payrollService.Pay(r.Context(), actorFromRequest(r), id)
	if err != nil {
		slog.Error("Pay payroll service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll marked as paid", result)
}

// DownloadPayslip implements PayrollHandler
func (h *payrollHandlerImpl) DownloadPayslip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Payroll ID is required", nil)
		return
	}

	pdf, err := h.payrollService.Payslip(r.Context(), actorFromRequest(r), id)
	if err != nil {
		slog.Error("Payslip service error", "error", err)
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%s.pdf", id))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		slog.Error("Failed to write payslip response", "error", err)
	}
}
