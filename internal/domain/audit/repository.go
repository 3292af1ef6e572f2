package audit

import (
	"context"
	"time"
)

type Filter struct {
	ActorID    string
	EntityType string
	EntityID   string
	Action     string
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	List(ctx context.Context, filter Filter) ([]Entry, int, error)
}
