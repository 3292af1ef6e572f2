package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/approval"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/cache"
)

// TiebreakDepartment prefers a department-scoped workflow over a
// position-scoped one when both match with one scope each.
const (
	TiebreakDepartment = "department"
	TiebreakPosition   = "position"
)

// Resolver picks the workflow governing a submission. The active workflow
// list per entity type is served from the cache when configured; resolution
// itself is pure so ties always break the same way.
type Resolver struct {
	workflows approval.WorkflowRepository
	cache     *cache.Cache
	cacheTTL  time.Duration
	tiebreak  string
}

func NewResolver(workflows approval.WorkflowRepository, c *cache.Cache, cacheTTL time.Duration, tiebreak string) *Resolver {
	if tiebreak != TiebreakPosition {
		tiebreak = TiebreakDepartment
	}
	return &Resolver{
		workflows: workflows,
		cache:     c,
		cacheTTL:  cacheTTL,
		tiebreak:  tiebreak,
	}
}

func workflowCacheKey(entityType approval.EntityType) string {
	return "approval:workflows:" + string(entityType)
}

func (r *Resolver) activeWorkflows(ctx context.Context, entityType approval.EntityType) ([]approval.Workflow, error) {
	key := workflowCacheKey(entityType)

	var cached []approval.Workflow
	if err := r.cache.GetJSON(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		slog.Warn("workflow cache read failed, falling back to database", "error", err)
	}

	workflows, err := r.workflows.ListActiveByEntityType(ctx, entityType)
	if err != nil {
		return nil, fmt.Errorf("failed to list active workflows: %w", err)
	}

	if err := r.cache.SetJSON(ctx, key, workflows, r.cacheTTL); err != nil {
		slog.Warn("workflow cache write failed", "error", err)
	}

	return workflows, nil
}

// InvalidateCache drops the cached workflow list for an entity type. Called
// on every workflow create, update, activation change and delete.
func (r *Resolver) InvalidateCache(ctx context.Context, entityType approval.EntityType) {
	if err := r.cache.Delete(ctx, workflowCacheKey(entityType)); err != nil {
		slog.Warn("workflow cache invalidation failed", "entity_type", entityType, "error", err)
	}
}

// Resolve returns the workflow governing a submission with the given scope,
// or ErrNoWorkflowMatched when no active definition applies.
//
// Candidates are ranked: most organizational scopes first; a department-only
// vs position-only tie falls to the configured precedence; then the tightest
// amount range; residual ties break on created_at then id.
func (r *Resolver) Resolve(ctx context.Context, entityType approval.EntityType, departmentID, positionID *string, amount *decimal.Decimal) (*approval.Workflow, error) {
	workflows, err := r.activeWorkflows(ctx, entityType)
	if err != nil {
		return nil, err
	}

	var candidates []approval.Workflow
	for _, w := range workflows {
		if w.Matches(departmentID, positionID, amount) {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		return nil, approval.ErrNoWorkflowMatched
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return r.less(candidates[i], candidates[j])
	})

	winner := candidates[0]
	sortSteps(&winner)
	return &winner, nil
}

// less orders workflow i before j when i should win resolution.
func (r *Resolver) less(a, b approval.Workflow) bool {
	if sa, sb := a.Specificity(), b.Specificity(); sa != sb {
		return sa > sb
	}

	// Department-only vs position-only: configured precedence.
	if a.Specificity() == 1 {
		aDept := a.DepartmentID != nil
		bDept := b.DepartmentID != nil
		if aDept != bDept {
			if r.tiebreak == TiebreakDepartment {
				return aDept
			}
			return bDept
		}
	}

	// Tightest amount range wins; an open bound means an infinite range.
	aWidth, aBounded := a.AmountRangeWidth()
	bWidth, bBounded := b.AmountRangeWidth()
	if aBounded != bBounded {
		return aBounded
	}
	if aBounded && bBounded && !aWidth.Equal(bWidth) {
		return aWidth.LessThan(bWidth)
	}

	// Deterministic residual order: oldest definition first.
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func sortSteps(w *approval.Workflow) {
	sort.SliceStable(w.Steps, func(i, j int) bool {
		return w.Steps[i].StepOrder < w.Steps[j].StepOrder
	})
}
