package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/notification"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/email"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/sse"
)

// Config tunes the background delivery pipeline.
type Config struct {
	BatchSize     int           // default 100
	FlushInterval time.Duration // default 5s
	WorkerCount   int           // default 2
	QueueSize     int           // default 1000
}

type notificationServiceImpl struct {
	store  notification.Repository
	users  user.UserRepository
	hub    *sse.Hub
	mailer email.EmailService // nil disables email delivery
	cfg    Config

	queue    chan notification.CreateRequest
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewNotificationService starts the background workers that batch-insert
// queued notifications and fan them out over SSE and email.
func NewNotificationService(
	store notification.Repository,
	users user.UserRepository,
	hub *sse.Hub,
	mailer email.EmailService,
	cfg Config,
) notification.Service {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &notificationServiceImpl{
		store:  store,
		users:  users,
		hub:    hub,
		mailer: mailer,
		cfg:    cfg,
		queue:  make(chan notification.CreateRequest, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("notification workers started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval,
	)

	return s
}

func (s *notificationServiceImpl) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateRequest, 0, s.cfg.BatchSize)
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		s.deliver(id, batch)
		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain whatever is still queued so shutdown does not drop
			// notifications that Queue already accepted.
			for {
				select {
				case req := <-s.queue:
					batch = append(batch, req)
					if len(batch) >= s.cfg.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

func (s *notificationServiceImpl) deliver(workerID int, batch []notification.CreateRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows := make([]*notification.Notification, len(batch))
	for i, req := range batch {
		rows[i] = &notification.Notification{
			ID:        uuid.New().String(),
			UserID:    req.UserID,
			Type:      req.Type,
			Title:     req.Title,
			Message:   req.Message,
			Data:      req.Data,
			CreatedAt: time.Now(),
		}
	}

	if err := s.store.CreateBatch(ctx, rows); err != nil {
		slog.Error("failed to insert notification batch", "worker", workerID, "count", len(rows), "error", err)
		return
	}

	for _, n := range rows {
		s.hub.Publish(n.UserID, sse.Event{
			Name: "notification",
			Data: notification.ToResponse(n),
		})
		s.sendEmail(ctx, n)
	}
}

// sendEmail forwards the notification to the recipient's mailbox. Delivery
// problems are logged; in-app delivery already succeeded at this point.
func (s *notificationServiceImpl) sendEmail(ctx context.Context, n *notification.Notification) {
	if s.mailer == nil {
		return
	}

	account, err := s.users.GetByID(ctx, n.UserID)
	if err != nil {
		slog.Warn("failed to load email recipient", "user_id", n.UserID, "error", err)
		return
	}
	if account.Email == "" {
		return
	}

	if err := s.mailer.SendNotification(account.Email, n.Title, n.Title, n.Message); err != nil {
		slog.Warn("failed to send notification email", "user_id", n.UserID, "error", err)
	}
}

func (s *notificationServiceImpl) Queue(ctx context.Context, req notification.CreateRequest) {
	select {
	case s.queue <- req:
	default:
		// Queue full: insert synchronously rather than dropping.
		s.deliver(-1, []notification.CreateRequest{req})
	}
}

func (s *notificationServiceImpl) QueueBulk(ctx context.Context, reqs []notification.CreateRequest) {
	for _, req := range reqs {
		s.Queue(ctx, req)
	}
}

func (s *notificationServiceImpl) List(ctx context.Context, userID string, page, limit int, unreadOnly bool) (*notification.ListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	rows, total, err := s.store.GetByUserID(ctx, userID, page, limit, unreadOnly)
	if err != nil {
		return nil, err
	}

	unread, err := s.store.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]notification.NotificationResponse, len(rows))
	for i, n := range rows {
		responses[i] = notification.ToResponse(n)
	}

	return &notification.ListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unread,
		Page:          page,
		PageSize:      limit,
	}, nil
}

func (s *notificationServiceImpl) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.GetUnreadCount(ctx, userID)
}

func (s *notificationServiceImpl) MarkAsRead(ctx context.Context, userID string, req notification.MarkAsReadRequest) error {
	return s.store.MarkAsRead(ctx, req.NotificationIDs, userID)
}

func (s *notificationServiceImpl) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.store.MarkAllAsRead(ctx, userID)
}

func (s *notificationServiceImpl) Subscribe(userID string) (<-chan sse.Event, func()) {
	return s.hub.Subscribe(userID)
}

// Stop drains the queue, waits for the workers and closes every open SSE
// stream. Safe to call more than once.
func (s *notificationServiceImpl) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		s.hub.Close()
		slog.Info("notification workers stopped")
	})
}
