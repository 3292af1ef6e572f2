package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/performance"
	"github.com/kelola-hr/hrm-backend-go/internal/handler/http/response"
)

type PerformanceHandler interface {
	CreateReview(w http.ResponseWriter, r *http.Request)
	GetReview(w http.ResponseWriter, r *http.Request)
	ListReviews(w http.ResponseWriter, r *http.Request)
	UpdateReview(w http.ResponseWriter, r *http.Request)
	SubmitReview(w http.ResponseWriter, r *http.Request)
	AcknowledgeReview(w http.ResponseWriter, r *http.Request)
	DeleteReview(w http.ResponseWriter, r *http.Request)
}

type performanceHandlerImpl struct {
	performanceService performance.PerformanceService
}

func NewPerformanceHandler(performanceService performance.PerformanceService) PerformanceHandler {
	return &performanceHandlerImpl{performanceService: performanceService}
}

// CreateReview implements PerformanceHandler
func (h *performanceHandlerImpl) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req performance.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.performanceService.Create(r.Context(), actorFromRequest(r), req)
	if err != nil {
		slog.Error("Create review service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Performance review created successfully", result)
}

// GetReview implements PerformanceHandler
func (h *performanceHandlerImpl) GetReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Review ID is required", nil)
		return
	}

	result, err := h.performanceService.Get(r.Context(), actorFromRequest(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListReviews implements PerformanceHandler
func (h *performanceHandlerImpl) ListReviews(w http.ResponseWriter, r *http.Request) {
	filter := performance.Filter{
		EmployeeID: r.URL.Query().Get("employee_id"),
		ReviewerID: r.URL.Query().Get("reviewer_id"),
		PeriodYear: getIntQueryParam(r, "period_year", 0),
		Status:     r.URL.Query().Get("status"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}

	results, total, err := h.performanceService.List(r.Context(), actorFromRequest(r), filter)
	if err != nil {
		slog.Error("List reviews service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, response.Paginate(filter.Page, filter.Limit, int64(total)))
}

// UpdateReview implements PerformanceHandler
func (h *performanceHandlerImpl) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Review ID is required", nil)
		return
	}

	var req performance.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.performanceService.Update(r.Context(), actorFromRequest(r), id, req)
	if err != nil {
		slog.Error("Update review service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Performance review updated successfully", result)
}

// SubmitReview implements PerformanceHandler
func (h *performanceHandlerImpl) SubmitReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Review ID is required", nil)
		return
	}

	result, err := h.performanceService.Submit(r.Context(), actorFromRequest(r), id)
	if err != nil {
		slog.Error("Submit review service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Performance review submitted", result)
}

// AcknowledgeReview implements PerformanceHandler
func (h *performanceHandlerImpl) AcknowledgeReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Review ID is required", nil)
		return
	}

	result, err := h.performanceService.Acknowledge(r.Context(), actorFromRequest(r), id)
	if err != nil {
		slog.Error("Acknowledge review service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Performance review acknowledged", result)
}

// DeleteReview implements PerformanceHandler
func (h *performanceHandlerImpl) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Review ID is required", nil)
		return
	}

	if err := h.performanceService.Delete(r.Context(), actorFromRequest(r), id); err != nil {
		slog.Error("Delete review service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Performance review deleted", nil)
}
