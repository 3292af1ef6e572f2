package attendance

import (
	"context"
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
)

type AttendanceService interface {
	CheckIn(ctx context.Context, actor user.Actor, req CheckInRequest) (*AttendanceResponse, error)
	CheckOut(ctx context.Context, actor user.Actor, req CheckOutRequest) (*AttendanceResponse, error)
	Get(ctx context.Context, actor user.Actor, id string) (*AttendanceResponse, error)
	List(ctx context.Context, actor user.Actor, filter Filter) ([]AttendanceResponse, int, error)
	// Update is the admin correction path; hours are re-derived.
	Update(ctx context.Context, actor user.Actor, id string, req UpdateRequest) (*AttendanceResponse, error)
	// AutoClose closes open attendances from previous days at the shift end
	// (or the configured fallback). Returns how many rows were closed.
	AutoClose(ctx context.Context, now time.Time) (int, error)
}
