package notification

import (
	"context"

	"github.com/kelola-hr/hrm-backend-go/internal/pkg/sse"
)

// Service queues notifications for asynchronous delivery (store + SSE +
// optional email) and serves the user-facing notification APIs. Queue
// methods never return delivery errors.
type Service interface {
	Queue(ctx context.Context, req CreateRequest)
	QueueBulk(ctx context.Context, reqs []CreateRequest)

	List(ctx context.Context, userID string, page, limit int, unreadOnly bool) (*ListResponse, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, userID string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, userID string) error

	Subscribe(userID string) (<-chan sse.Event, func())

	Stop()
}
