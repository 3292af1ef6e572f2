package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/loan"
	"github.com/kelola-hr/hrm-backend-go/internal/handler/http/response"
)

type LoanHandler interface {
	SubmitLoan(w http.ResponseWriter, r *http.Request)
	GetLoan(w http.ResponseWriter, r *http.Request)
	ListLoans(w http.ResponseWriter, r *http.Request)
	ApproveLoan(w http.ResponseWriter, r *http.Request)
	RejectLoan(w http.ResponseWriter, r *http.Request)
	CancelLoan(w http.ResponseWriter, r *http.Request)
	DelegateLoan(w http.ResponseWriter, r *http.Request)
	DisburseLoan(w http.ResponseWriter, r *http.Request)
	MarkLoanDefaulted(w http.ResponseWriter, r *http.Request)
}

type loanHandlerImpl struct {
	loanService loan.LoanService
}

func NewLoanHandler(loanService loan.LoanService) LoanHandler {
	return &loanHandlerImpl{loanService: loanService}
}

// SubmitLoan implements LoanHandler
func (h *loanHandlerImpl) SubmitLoan(w http.ResponseWriter, r *http.Request) {
	var req loan.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.loanService.Submit(r.Context(), actorFromRequest(r), req)
	if err != nil {
		slog.Error("Submit loan service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Loan request submitted successfully", result)
}

// GetLoan implements LoanHandler
func (h *loanHandlerImpl) GetLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Loan ID is required", nil)
		return
	}

	result, err := h.loanService.Get(r.Context(), actorFromRequest(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListLoans implements LoanHandler
func (h *loanHandlerImpl) ListLoans(w http.ResponseWriter, r *http.Request) {
	filter := loan.Filter{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Status:     r.URL.Query().Get("status"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}

	results, total, err := h.loanService.List(r.Context(), actorFromRequest(r), filter)
	if err != nil {
		slog.Error("List loans service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, response.Paginate(filter.Page, filter.Limit, int64(total)))
}

// decisionBody decodes the optional approve/reject payload.
func decisionBody(r *http.Request) (loan.DecisionRequest, bool) {
	var req loan.DecisionRequest
	if r.Body == nil || r.ContentLength == 0 {
		return req, true
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, false
	}
	return req, true
}

// ApproveLoan implements LoanHandler
func (h *loanHandlerImpl) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Loan ID is required", nil)
		return
	}

	req, ok := decisionBody(r)
	if !ok {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.loanService.Approve(r.Context(), actorFromRequest(r), id, req)
	if err != nil {
		slog.Error("Approve loan service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Loan approved", result)
}

// RejectLoan implements LoanHandler
func (h *loanHandlerImpl) RejectLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Loan ID is required", nil)
		return
	}

	req, ok := decisionBody(r)
	if !ok {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.loanService.Reject(r.Context(), actorFromRequest(r), id, req)
	if err != nil {
		slog.Error("Reject loan service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Loan rejected", result)
}

// CancelLoan implements LoanHandler
func (h *loanHandlerImpl) CancelLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Loan ID is required", nil)
		return
	}

	req, ok := decisionBody(r)
	if !ok {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.loanService.Cancel(r.Context(), actorFromRequest(r), id, req.Reason)
	if err != nil {
		slog.Error("Cancel loan service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Loan cancelled", result)
}

// DelegateLoan implements LoanHandler
func (h *loanHandlerImpl) DelegateLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Loan ID is required", nil)
		return
	}

	var req loan.DelegateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.loanService.Delegate(r.Context(), actorFromRequest(r), id, req)
	if err != nil {
		slog.Error("Delegate loan service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Approval step delegated", result)
}

// DisburseLoan implements LoanHandler
func (h *loanHandlerImpl) DisburseLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Loan ID is required", nil)
		return
	}

	result, err := h.loanService.Disburse(r.Context(), actorFromRequest(r), id)
	if err != nil {
		slog.Error("Disburse loan service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Loan disbursed", result)
}

// MarkLoanDefaulted implements LoanHandler
func (h *loanHandlerImpl) MarkLoanDefaulted(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Loan ID is required", nil)
		return
	}

	result, err := h.loanService.MarkDefaulted(r.Context(), actorFromRequest(r), id)
	if err != nil {
		slog.Error("Mark loan defaulted service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Loan marked as defaulted", result)
}
