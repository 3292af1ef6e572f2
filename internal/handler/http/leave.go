package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/leave"
	"github.com/kelola-hr/hrm-backend-go/internal/handler/http/response"
)

type LeaveHandler interface {
	SubmitLeave(w http.ResponseWriter, r *http.Request)
	GetLeave(w http.ResponseWriter, r *http.Request)
	ListLeaves(w http.ResponseWriter, r *http.Request)
	ApproveLeave(w http.ResponseWriter, r *http.Request)
	RejectLeave(w http.ResponseWriter, r *http.Request)
	CancelLeave(w http.ResponseWriter, r *http.Request)
	DelegateLeave(w http.ResponseWriter, r *http.Request)

	ListEntitlements(w http.ResponseWriter, r *http.Request)
	UpsertEntitlement(w http.ResponseWriter, r *http.Request)
	GetBalance(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &leaveHandlerImpl{leaveService: leaveService}
}

// SubmitLeave implements LeaveHandler
func (h *leaveHandlerImpl) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	var req leave.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.leaveService.Submit(r.Context(), actorFromRequest(r), req)
	if err != nil {
		slog.Error("Submit leave service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted successfully", result)
}

// GetLeave implements LeaveHandler
func (h *leaveHandlerImpl) GetLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Leave request ID is required", nil)
		return
	}

	result, err := h.leaveService.Get(r.Context(), actorFromRequest(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListLeaves implements LeaveHandler
func (h *leaveHandlerImpl) ListLeaves(w http.ResponseWriter, r *http.Request) {
	filter := leave.RequestFilter{
		EmployeeID:        r.URL.Query().Get("employee_id"),
		Type:              r.URL.Query().Get("type"),
		Status:            r.URL.Query().Get("status"),
		CurrentApproverID: r.URL.Query().Get("current_approver_id"),
		StartDate:         getDateQueryParam(r, "start_date"),
		EndDate:           getDateQueryParam(r, "end_date"),
		Page:              getIntQueryParam(r, "page", 1),
		Limit:             getIntQueryParam(r, "limit", 20),
	}

	results, total, err := h.leaveService.List(r.Context(), actorFromRequest(r), filter)
	if err != nil {
		slog.Error("List leaves service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, response.Paginate(filter.Page, filter.Limit, total))
}

// ApproveLeave implements LeaveHandler
func (h *leaveHandlerImpl) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Leave request ID is required", nil)
		return
	}

	result, err := h.leaveService.Approve(r.Context(), actorFromRequest(r), id)
	if err != nil {
		slog.Error("Approve leave service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request approved", result)
}

// RejectLeave implements LeaveHandler
func (h *leaveHandlerImpl) RejectLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Leave request ID is required", nil)
		return
	}

	var req leave.DecisionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	result, err := h.leaveService.Reject(r.Context(), actorFromRequest(r), id, req.Reason)
	if err != nil {
		slog.Error("Reject leave service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request rejected", result)
}

// CancelLeave implements LeaveHandler
func (h *leaveHandlerImpl) CancelLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Leave request ID is required", nil)
		return
	}

	result, err := h.leaveService.Cancel(r.Context(), actorFromRequest(r), id)
	if err != nil {
		slog.Error("Cancel leave service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request cancelled", result)
}

// DelegateLeave implements LeaveHandler
func (h *leaveHandlerImpl) DelegateLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Leave request ID is required", nil)
		return
	}

	var req leave.DelegateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.leaveService.Delegate(r.Context(), actorFromRequest(r), id, req)
	if err != nil {
		slog.Error("Delegate leave service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Approval step delegated", result)
}

// ListEntitlements implements LeaveHandler
func (h *leaveHandlerImpl) ListEntitlements(w http.ResponseWriter, r *http.Request) {
	results, err := h.leaveService.ListEntitlements(r.Context())
	if err != nil {
		slog.Error("List entitlements service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// UpsertEntitlement implements LeaveHandler
func (h *leaveHandlerImpl) UpsertEntitlement(w http.ResponseWriter, r *http.Request) {
	var req leave.UpsertEntitlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.leaveService.UpsertEntitlement(r.Context(), actorFromRequest(r), req)
	if err != nil {
		slog.Error("Upsert entitlement service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Entitlement saved successfully", result)
}

// GetBalance implements LeaveHandler
func (h *leaveHandlerImpl) GetBalance(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	year := getIntQueryParam(r, "year", 0)

	result, err := h.leaveService.ComputeBalance(r.Context(), actorFromRequest(r), employeeID, year)
	if err != nil {
		slog.Error("Leave balance service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
