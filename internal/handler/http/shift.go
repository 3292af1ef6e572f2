package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/shift"
	"github.com/kelola-hr/hrm-backend-go/internal/handler/http/response"
)

type ShiftHandler interface {
	CreateShift(w http.ResponseWriter, r *http.Request)
	GetShift(w http.ResponseWriter, r *http.Request)
	ListShifts(w http.ResponseWriter, r *http.Request)
	UpdateShift(w http.ResponseWriter, r *http.Request)
	DeleteShift(w http.ResponseWriter, r *http.Request)

	AssignShift(w http.ResponseWriter, r *http.Request)
	ListAssignments(w http.ResponseWriter, r *http.Request)
	UnassignShift(w http.ResponseWriter, r *http.Request)
}

type shiftHandlerImpl struct {
	shiftService shift.ShiftService
}

func NewShiftHandler(shiftService shift.ShiftService) ShiftHandler {
	return &shiftHandlerImpl{shiftService: shiftService}
}

// CreateShift implements ShiftHandler
func (h *shiftHandlerImpl) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req shift.CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.shiftService.Create(r.Context(), actorFromRequest(r), req)
	if err != nil {
		slog.Error("Create shift service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Shift created successfully", result)
}

// GetShift implements ShiftHandler
func (h *shiftHandlerImpl) GetShift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Shift ID is required", nil)
		return
	}

	result, err := h.shiftService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListShifts implements ShiftHandler
func (h *shiftHandlerImpl) ListShifts(w http.ResponseWriter, r *http.Request) {
	activeOnly := getBoolQueryParam(r, "active_only", false)

	results, err := h.shiftService.List(r.Context(), activeOnly)
	if err != nil {
		slog.Error("List shifts service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// UpdateShift implements ShiftHandler
func (h *shiftHandlerImpl) UpdateShift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Shift ID is required", nil)
		return
	}

	var req shift.UpdateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.shiftService.Update(r.Context(), actorFromRequest(r), id, req)
	if err != nil {
		slog.Error("Update shift service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift updated successfully", result)
}

// DeleteShift implements ShiftHandler
func (h *shiftHandlerImpl) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Shift ID is required", nil)
		return
	}

	if err := h.shiftService.Delete(r.Context(), actorFromRequest(r), id); err != nil {
		slog.Error("Delete shift service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift deleted successfully", nil)
}

// AssignShift implements ShiftHandler
func (h *shiftHandlerImpl) AssignShift(w http.ResponseWriter, r *http.Request) {
	var req shift.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.shiftService.Assign(r.Context(), actorFromRequest(r), req)
	if err != nil {
		slog.Error("Assign shift service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Shift assigned successfully", result)
}

// ListAssignments implements ShiftHandler
func (h *shiftHandlerImpl) ListAssignments(w http.ResponseWriter, r *http.Request) {
	filter := shift.AssignmentFilter{
		EmployeeID: r.URL.Query().Get("employee_id"),
		ShiftID:    r.URL.Query().Get("shift_id"),
		DateFrom:   getDateQueryParam(r, "date_from"),
		DateTo:     getDateQueryParam(r, "date_to"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}

	results, total, err := h.shiftService.ListAssignments(r.Context(), actorFromRequest(r), filter)
	if err != nil {
		slog.Error("List assignments service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, response.Paginate(filter.Page, filter.Limit, int64(total)))
}

// UnassignShift implements ShiftHandler
func (h *shiftHandlerImpl) UnassignShift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Assignment ID is required", nil)
		return
	}

	if err := h.shiftService.Unassign(r.Context(), actorFromRequest(r), id); err != nil {
		slog.Error("Unassign shift service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift assignment removed", nil)
}
