package http

import (
	"log/slog"
	"net/http"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/handler/http/response"
)

// AuditHandler serves the audit trail. Authorization is enforced on the
// route: only roles holding the audit-view permission reach it.
type AuditHandler interface {
	ListEntries(w http.ResponseWriter, r *http.Request)
}

type auditHandlerImpl struct {
	auditService audit.AuditService
}

func NewAuditHandler(auditService audit.AuditService) AuditHandler {
	return &auditHandlerImpl{auditService: auditService}
}

// ListEntries implements AuditHandler
func (h *auditHandlerImpl) ListEntries(w http.ResponseWriter, r *http.Request) {
	filter := audit.Filter{
		ActorID:    r.URL.Query().Get("actor_id"),
		EntityType: r.URL.Query().Get("entity_type"),
		EntityID:   r.URL.Query().Get("entity_id"),
		Action:     r.URL.Query().Get("action"),
		From:       getDateQueryParam(r, "from"),
		To:         getDateQueryParam(r, "to"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}

	results, total, err := h.auditService.List(r.Context(), filter)
	if err != nil {
		slog.Error("List audit entries service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, response.Paginate(filter.Page, filter.Limit, int64(total)))
}
