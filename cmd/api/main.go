package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/config"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/notification"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/payroll"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/fixtures"
	appHTTP "github.com/kelola-hr/hrm-backend-go/internal/handler/http"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/cache"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/cron"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/email"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/jwt"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/oauth"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/sse"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/storage"
	"github.com/kelola-hr/hrm-backend-go/internal/repository/postgresql"
	approvalService "github.com/kelola-hr/hrm-backend-go/internal/service/approval"
	attendanceService "github.com/kelola-hr/hrm-backend-go/internal/service/attendance"
	auditService "github.com/kelola-hr/hrm-backend-go/internal/service/audit"
	authService "github.com/kelola-hr/hrm-backend-go/internal/service/auth"
	employeeService "github.com/kelola-hr/hrm-backend-go/internal/service/employee"
	leaveService "github.com/kelola-hr/hrm-backend-go/internal/service/leave"
	loanService "github.com/kelola-hr/hrm-backend-go/internal/service/loan"
	masterService "github.com/kelola-hr/hrm-backend-go/internal/service/master"
	notificationService "github.com/kelola-hr/hrm-backend-go/internal/service/notification"
	payrollService "github.com/kelola-hr/hrm-backend-go/internal/service/payroll"
	performanceService "github.com/kelola-hr/hrm-backend-go/internal/service/performance"
	shiftService "github.com/kelola-hr/hrm-backend-go/internal/service/shift"
)

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal("Failed to load configuration", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.App.LogLevel),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		fatal("Failed to connect to database", err)
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	identityRepo := postgresql.NewIdentityRepository(db)
	sessionRepo := postgresql.NewSessionRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	departmentRepo := postgresql.NewDepartmentRepository(db)
	positionRepo := postgresql.NewPositionRepository(db)
	branchRepo := postgresql.NewBranchRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	leaveEntitlementRepo := postgresql.NewLeaveEntitlementRepository(db)
	loanRepo := postgresql.NewLoanRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	performanceRepo := postgresql.NewPerformanceReviewRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	shiftAssignmentRepo := postgresql.NewShiftAssignmentRepository(db)
	workflowRepo := postgresql.NewApprovalWorkflowRepository(db)
	auditLogRepo := postgresql.NewAuditLogRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	run := postgresql.TxRunnerFor(db)

	jwtSvc := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)

	var googleSvc oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleSvc = oauth.NewGoogleService(
			cfg.OAuth2Google.ClientID,
			cfg.OAuth2Google.ClientSecret,
			cfg.OAuth2Google.RedirectURL,
			cfg.OAuth2Google.Scopes,
		)
	}

	// The workflow cache is an optimization: a missing or unreachable Redis
	// only costs resolver queries, never correctness.
	var workflowCache *cache.Cache
	if cfg.Redis.Enabled() {
		workflowCache, err = cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Warn("Workflow cache disabled", "error", err)
			workflowCache = nil
		}
	}

	var mailer email.EmailService
	if cfg.SMTP.Host != "" {
		mailer, err = email.NewEmailService(cfg.SMTP)
		if err != nil {
			fatal("Failed to initialize email service", err)
		}
	}

	payslipStorage, err := storage.NewLocalStorage(cfg.Storage.PayslipDir)
	if err != nil {
		fatal("Failed to initialize payslip storage", err)
	}

	hub := sse.NewHub()
	auditSvc := auditService.NewAuditService(auditLogRepo)
	notifier := notificationService.NewNotificationService(notificationRepo, userRepo, hub, mailer, notificationService.Config{})

	resolver := approvalService.NewResolver(workflowRepo, workflowCache, cfg.Approval.CacheTTL, cfg.Approval.Tiebreak)
	directory := approvalService.NewDirectory(employeeRepo, userRepo, departmentRepo)
	engine := approvalService.NewEngine(run, workflowRepo, resolver, directory, cfg.Approval.NoWorkflowPolicy)

	authSvc := authService.NewAuthService(userRepo, identityRepo, employeeRepo, sessionRepo, jwtSvc, googleSvc, run, auditSvc)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, departmentRepo, positionRepo, branchRepo, auditSvc)
	masterSvc := masterService.NewMasterService(branchRepo, departmentRepo, positionRepo, employeeRepo, auditSvc)
	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo, employeeRepo, shiftRepo, shiftAssignmentRepo,
		cfg.Attendance.StandardWorkHours, cfg.Attendance.AutoCloseAfterHours, auditSvc,
	)
	leaveSvc := leaveService.NewLeaveService(leaveRequestRepo, leaveEntitlementRepo, employeeRepo, userRepo, engine, run, auditSvc, notifier)
	loanSvc := loanService.NewLoanService(loanRepo, employeeRepo, userRepo, engine, run, auditSvc, notifier)
	payrollSvc := payrollService.NewPayrollService(
		payrollRepo, employeeRepo, attendanceRepo, loanRepo, userRepo,
		payroll.Rates{
			TaxRate:              cfg.Payroll.TaxRate,
			InsuranceRate:        cfg.Payroll.InsuranceRate,
			PensionRate:          cfg.Payroll.PensionRate,
			OvertimeMultiplier:   cfg.Payroll.OvertimeMultiplier,
			StandardMonthlyHours: cfg.Payroll.StandardMonthlyHours,
		},
		payslipStorage, run, auditSvc, notifier,
	)
	performanceSvc := performanceService.NewPerformanceService(performanceRepo, employeeRepo, userRepo, auditSvc, notifier)
	shiftSvc := shiftService.NewShiftService(shiftRepo, shiftAssignmentRepo, employeeRepo, auditSvc)
	approvalSvc := approvalService.NewApprovalService(workflowRepo, resolver, cfg.Approval.NoWorkflowPolicy, auditSvc)

	if err := fixtures.SeedDefaults(ctx, leaveEntitlementRepo, workflowRepo); err != nil {
		fatal("Failed to seed defaults", err)
	}

	router, err := appHTTP.NewRouter(cfg, jwtSvc, appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(jwtSvc, authSvc, cfg.App.FrontendURL),
		Employee:     appHTTP.NewEmployeeHandler(employeeSvc),
		Master:       appHTTP.NewMasterHandler(masterSvc),
		Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
		Leave:        appHTTP.NewLeaveHandler(leaveSvc),
		Loan:         appHTTP.NewLoanHandler(loanSvc),
		Payroll:      appHTTP.NewPayrollHandler(payrollSvc),
		Performance:  appHTTP.NewPerformanceHandler(performanceSvc),
		Shift:        appHTTP.NewShiftHandler(shiftSvc),
		Approval:     appHTTP.NewApprovalHandler(approvalSvc),
		Notification: appHTTP.NewNotificationHandler(notifier, jwtSvc),
		Audit:        appHTTP.NewAuditHandler(auditSvc),
	})
	if err != nil {
		fatal("Failed to build router", err)
	}

	// The sweep bypasses the leave/loan services, so their audit and
	// notification side effects are replayed here per target.
	autoApproved := func(entityType string, notifType notification.Type, message string) func(context.Context, approvalService.Outcome) {
		return func(ctx context.Context, out approvalService.Outcome) {
			auditSvc.Record(ctx, audit.Entry{
				Action:     "auto_approve",
				EntityType: entityType,
				EntityID:   out.ID,
				OldValues:  audit.Values{"status": out.OldStatus, "approval_level": out.FromLevel},
				NewValues:  audit.Values{"status": out.NewStatus, "approval_level": out.ToLevel},
			})
			if !out.Decided() {
				return
			}
			account, err := userRepo.GetByEmployeeID(ctx, out.EmployeeID)
			if err != nil {
				if !errors.Is(err, user.ErrUserNotFound) {
					slog.Warn("Failed to load auto-approval recipient", "employee_id", out.EmployeeID, "error", err)
				}
				return
			}
			notifier.Queue(ctx, notification.CreateRequest{
				UserID:  account.ID,
				Type:    notifType,
				Title:   "Request approved",
				Message: message,
				Data:    map[string]interface{}{"id": out.ID},
			})
		}
	}
	sweep := func(ctx context.Context, now time.Time) int {
		return engine.SweepAutoApprovals(ctx, now,
			approvalService.SweepTarget{
				Name:           "leave_request",
				Store:          leaveRequestRepo,
				Scanner:        leaveRequestRepo,
				OnAutoApproved: autoApproved("leave_request", notification.TypeLeaveApproved, "Your leave request was approved automatically after the review deadline passed."),
			},
			approvalService.SweepTarget{
				Name:           "loan",
				Store:          loanRepo,
				Scanner:        loanRepo,
				OnAutoApproved: autoApproved("loan", notification.TypeLoanApproved, "Your loan request was approved automatically after the review deadline passed."),
			},
		)
	}

	scheduler := cron.NewScheduler()
	cron.NewJobs(attendanceSvc, sweep, cfg.Approval.ScanInterval).Register(scheduler)
	scheduler.Start()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "port", cfg.App.Port, "env", cfg.App.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("Server failed", err)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	scheduler.Stop()
	notifier.Stop()
	slog.Info("Server stopped")
}
