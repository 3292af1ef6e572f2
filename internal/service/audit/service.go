package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
)

type auditServiceImpl struct {
	entries audit.Repository
}

func NewAuditService(entries audit.Repository) audit.AuditService {
	return &auditServiceImpl{entries: entries}
}

// Record writes the entry, stamping request metadata from the context when
// the caller did not set it. Failures are logged, never returned: the audit
// trail must not be able to fail the change it documents. Callers record
// after their transaction commits for the same reason.
func (s *auditServiceImpl) Record(ctx context.Context, e audit.Entry) {
	if meta, ok := audit.RequestMetaFrom(ctx); ok {
		if e.RequestID == nil && meta.RequestID != "" {
			e.RequestID = &meta.RequestID
		}
		if e.IPAddress == nil && meta.IPAddress != "" {
			e.IPAddress = &meta.IPAddress
		}
	}

	if err := s.entries.Create(ctx, &e); err != nil {
		slog.Error("failed to record audit entry",
			"action", e.Action,
			"entity_type", e.EntityType,
			"entity_id", e.EntityID,
			"error", err,
		)
	}
}

func (s *auditServiceImpl) List(ctx context.Context, filter audit.Filter) ([]audit.EntryResponse, int, error) {
	entries, total, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}

	responses := make([]audit.EntryResponse, len(entries))
	for i := range entries {
		responses[i] = *audit.ToResponse(&entries[i])
	}
	return responses, total, nil
}
