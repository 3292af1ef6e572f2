package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/attendance"
)

// SweepFunc applies every overdue auto-approval and reports how many were
// applied. Wired to the approval engine at startup.
type SweepFunc func(ctx context.Context, now time.Time) int

// Jobs bundles the recurring background work: closing forgotten attendance
// sessions and advancing approval steps past their deadline.
type Jobs struct {
	attendanceSvc attendance.AttendanceService
	sweep         SweepFunc
	scanInterval  time.Duration
}

func NewJobs(attendanceSvc attendance.AttendanceService, sweep SweepFunc, scanInterval time.Duration) *Jobs {
	if scanInterval <= 0 {
		scanInterval = 15 * time.Minute
	}
	return &Jobs{
		attendanceSvc: attendanceSvc,
		sweep:         sweep,
		scanInterval:  scanInterval,
	}
}

func (j *Jobs) Register(scheduler *Scheduler) {
	scheduler.AddJob("attendance_auto_close", time.Hour, j.autoCloseAttendances)
	scheduler.AddJob("approvals_auto_approve", j.scanInterval, j.sweepApprovals)
}

func (j *Jobs) autoCloseAttendances(ctx context.Context) error {
	closed, err := j.attendanceSvc.AutoClose(ctx, time.Now())
	if err != nil {
		return err
	}
	if closed > 0 {
		slog.Info("Auto-closed stale attendances", "count", closed)
	}
	return nil
}

func (j *Jobs) sweepApprovals(ctx context.Context) error {
	if applied := j.sweep(ctx, time.Now()); applied > 0 {
		slog.Info("Auto-approved overdue steps", "count", applied)
	}
	return nil
}
