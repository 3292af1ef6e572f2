package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/branch"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/department"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/position"
	"github.com/kelola-hr/hrm-backend-go/internal/handler/http/response"
)

type MasterHandler interface {
	// Branch handlers
	CreateBranch(w http.ResponseWriter, r *http.Request)
	GetBranch(w http.ResponseWriter, r *http.Request)
	ListBranches(w http.ResponseWriter, r *http.Request)
	UpdateBranch(w http.ResponseWriter, r *http.Request)
	DeleteBranch(w http.ResponseWriter, r *http.Request)

	// Department handlers
	CreateDepartment(w http.ResponseWriter, r *http.Request)
	GetDepartment(w http.ResponseWriter, r *http.Request)
	ListDepartments(w http.ResponseWriter, r *http.Request)
	UpdateDepartment(w http.ResponseWriter, r *http.Request)
	DeleteDepartment(w http.ResponseWriter, r *http.Request)

	// Position handlers
	CreatePosition(w http.ResponseWriter, r *http.Request)
	GetPosition(w http.ResponseWriter, r *http.Request)
	ListPositions(w http.ResponseWriter, r *http.Request)
	UpdatePosition(w http.ResponseWriter, r *http.Request)
	DeletePosition(w http.ResponseWriter, r *http.Request)
}

type masterHandlerImpl struct {
	masterService master.MasterService
}

func NewMasterHandler(masterService master.MasterService) MasterHandler {
	return &masterHandlerImpl{masterService: masterService}
}

// ==================== BRANCH HANDLERS ====================

// CreateBranch implements MasterHandler
func (h *masterHandlerImpl) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var req branch.CreateBranchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.masterService.CreateBranch(r.Context(), actorFromRequest(r), req)
	if err != nil {
		slog.Error("Create branch service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Branch created successfully", result)
}

// GetBranch implements MasterHandler
func (h *masterHandlerImpl) GetBranch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Branch ID is required", nil)
		return
	}

	result, err := h.masterService.GetBranch(r.Context(), actorFromRequest(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListBranches implements MasterHandler
func (h *masterHandlerImpl) ListBranches(w http.ResponseWriter, r *http.Request) {
	activeOnly := getBoolQueryParam(r, "active_only", false)

	results, err := h.masterService.ListBranches(r.Context(), actorFromRequest(r), activeOnly)
	if err != nil {
		slog.Error("List branches service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// UpdateBranch implements MasterHandler
func (h *masterHandlerImpl) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Branch ID is required", nil)
		return
	}

	var req branch.UpdateBranchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.masterService.UpdateBranch(r.Context(), actorFromRequest(r), id, req)
	if err != nil {
		slog.Error("Update branch service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Branch updated successfully", result)
}

// DeleteBranch implements MasterHandler
func (h *masterHandlerImpl) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Branch ID is required", nil)
		return
	}

	if err := h.masterService.DeleteBranch(r.Context(), actorFromRequest(r), id); err != nil {
		slog.Error("Delete branch service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Branch deleted successfully", nil)
}

// ==================== DEPARTMENT HANDLERS ====================

// CreateDepartment implements MasterHandler
func (h *masterHandlerImpl) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req department.CreateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.masterService.CreateDepartment(r.Context(), actorFromRequest(r), req)
	if err != nil {
		slog.Error("Create department service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Department created successfully", result)
}

// GetDepartment implements MasterHandler
func (h *masterHandlerImpl) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Department ID is required", nil)
		return
	}

	result, err := h.masterService.GetDepartment(r.Context(), actorFromRequest(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListDepartments implements MasterHandler
func (h *masterHandlerImpl) ListDepartments(w http.ResponseWriter, r *http.Request) {
	activeOnly := getBoolQueryParam(r, "active_only", false)

	results, err := h.masterService.ListDepartments(r.Context(), actorFromRequest(r), activeOnly)
	if err != nil {
		slog.Error("List departments service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// UpdateDepartment implements MasterHandler
func (h *masterHandlerImpl) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Department ID is required", nil)
		return
	}

	var req department.UpdateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.masterService.UpdateDepartment(r.Context(), actorFromRequest(r), id, req)
	if err != nil {
		slog.Error("Update department service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Department updated successfully", result)
}

// DeleteDepartment implements MasterHandler
func (h *masterHandlerImpl) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Department ID is required", nil)
		return
	}

	if err := h.masterService.DeleteDepartment(r.Context(), actorFromRequest(r), id); err != nil {
		slog.Error("Delete department service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Department deleted successfully", nil)
}

// ==================== POSITION HANDLERS ====================

// CreatePosition implements MasterHandler
func (h *masterHandlerImpl) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req position.CreatePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.masterService.CreatePosition(r.Context(), actorFromRequest(r), req)
	if err != nil {
		slog.Error("Create position service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Position created successfully", result)
}

// GetPosition implements MasterHandler
func (h *masterHandlerImpl) GetPosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Position ID is required", nil)
		return
	}

	result, err := h.masterService.GetPosition(r.Context(), actorFromRequest(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListPositions implements MasterHandler
func (h *masterHandlerImpl) ListPositions(w http.ResponseWriter, r *http.Request) {
	departmentID := r.URL.Query().Get("department_id")
	activeOnly := getBoolQueryParam(r, "active_only", false)

	results, err := h.masterService.ListPositions(r.Context(), actorFromRequest(r), departmentID, activeOnly)
	if err != nil {
		slog.Error("List positions service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// UpdatePosition implements MasterHandler
func (h *masterHandlerImpl) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Position ID is required", nil)
		return
	}

	var req position.UpdatePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.masterService.UpdatePosition(r.Context(), actorFromRequest(r), id, req)
	if err != nil {
		slog.Error("Update position service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Position updated successfully", result)
}

// DeletePosition implements MasterHandler
func (h *masterHandlerImpl) DeletePosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Position ID is required", nil)
		return
	}

	if err := h.masterService.DeletePosition(r.Context(), actorFromRequest(r), id); err != nil {
		slog.Error("Delete position service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Position deleted successfully", nil)
}
