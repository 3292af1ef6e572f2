package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/approval"
	"github.com/kelola-hr/hrm-backend-go/internal/handler/http/response"
)

type ApprovalHandler interface {
	CreateWorkflow(w http.ResponseWriter, r *http.Request)
	GetWorkflow(w http.ResponseWriter, r *http.Request)
	ListWorkflows(w http.ResponseWriter, r *http.Request)
	UpdateWorkflow(w http.ResponseWriter, r *http.Request)
	ActivateWorkflow(w http.ResponseWriter, r *http.Request)
	DeactivateWorkflow(w http.ResponseWriter, r *http.Request)
	DeleteWorkflow(w http.ResponseWriter, r *http.Request)
	ResolveWorkflow(w http.ResponseWriter, r *http.Request)
}

type approvalHandlerImpl struct {
	approvalService approval.ApprovalService
}

func NewApprovalHandler(approvalService approval.ApprovalService) ApprovalHandler {
	return &approvalHandlerImpl{approvalService: approvalService}
}

// CreateWorkflow implements ApprovalHandler
func (h *approvalHandlerImpl) CreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req approval.CreateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.approvalService.CreateWorkflow(r.Context(), actorFromRequest(r), req)
	if err != nil {
		slog.Error("Create workflow service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Approval workflow created successfully", result)
}

// GetWorkflow implements ApprovalHandler
func (h *approvalHandlerImpl) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Workflow ID is required", nil)
		return
	}

	result, err := h.approvalService.GetWorkflow(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListWorkflows implements ApprovalHandler
func (h *approvalHandlerImpl) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	filter := approval.ListFilter{
		EntityType: r.URL.Query().Get("entity_type"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}
	if isActive := r.URL.Query().Get("is_active"); isActive != "" {
		active := isActive == "true" || isActive == "1"
		filter.IsActive = &active
	}

	results, total, err := h.approvalService.ListWorkflows(r.Context(), filter)
	if err != nil {
		slog.Error("List workflows service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, response.Paginate(filter.Page, filter.Limit, total))
}

// UpdateWorkflow implements ApprovalHandler
func (h *approvalHandlerImpl) UpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Workflow ID is required", nil)
		return
	}

	var req approval.UpdateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = id

	result, err := h.approvalService.UpdateWorkflow(r.Context(), actorFromRequest(r), req)
	if err != nil {
		slog.Error("Update workflow service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Approval workflow updated successfully", result)
}

// ActivateWorkflow implements ApprovalHandler
func (h *approvalHandlerImpl) ActivateWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Workflow ID is required", nil)
		return
	}

	result, err := h.approvalService.SetWorkflowActive(r.Context(), actorFromRequest(r), id, true)
	if err != nil {
		slog.Error("Activate workflow service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Approval workflow activated", result)
}

// DeactivateWorkflow implements ApprovalHandler
func (h *approvalHandlerImpl) DeactivateWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Workflow ID is required", nil)
		return
	}

	result, err := h.approvalService.SetWorkflowActive(r.Context(), actorFromRequest(r), id, false)
	if err != nil {
		slog.Error("Deactivate workflow service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Approval workflow deactivated", result)
}

// DeleteWorkflow implements ApprovalHandler
func (h *approvalHandlerImpl) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Workflow ID is required", nil)
		return
	}

	if err := h.approvalService.DeleteWorkflow(r.Context(), actorFromRequest(r), id); err != nil {
		slog.Error("Delete workflow service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Approval workflow deleted", nil)
}

// ResolveWorkflow implements ApprovalHandler
func (h *approvalHandlerImpl) ResolveWorkflow(w http.ResponseWriter, r *http.Request) {
	var req approval.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.approvalService.Resolve(r.Context(), req)
	if err != nil {
		slog.Error("Resolve workflow service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
