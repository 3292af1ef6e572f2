package http

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/kelola-hr/hrm-backend-go/internal/config"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/handler/http/middleware"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/jwt"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth         AuthHandler
	Employee     EmployeeHandler
	Master       MasterHandler
	Attendance   AttendanceHandler
	Leave        LeaveHandler
	Loan         LoanHandler
	Payroll      PayrollHandler
	Performance  PerformanceHandler
	Shift        ShiftHandler
	Approval     ApprovalHandler
	Notification NotificationHandler
	Audit        AuditHandler
}

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

func NewRouter(cfg *config.Config, jwtService jwt.Service, h Handlers) (*chi.Mux, error) {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "kelola-hrm"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	apiLimit, err := middleware.RateLimit(cfg.RateLimit.APIRate)
	if err != nil {
		return nil, fmt.Errorf("api rate limit: %w", err)
	}
	authLimit, err := middleware.RateLimit(cfg.RateLimit.AuthRate)
	if err != nil {
		return nil, fmt.Errorf("auth rate limit: %w", err)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  logLevel(cfg.App.LogLevel),
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	ja := jwtService.JWTAuth()

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequestMeta)

		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimit)

			// Register accepts an optional access token: the bootstrap
			// admin has none, admin-created users come with one.
			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(ja))
				r.Post("/register", h.Auth.Register)
			})

			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			r.Route("/oauth/callback", func(r chi.Router) {
				r.Get("/google", h.Auth.OAuthCallbackGoogle)
			})

			r.Route("/login", func(r chi.Router) {
				r.Post("/", h.Auth.Login)
				r.Route("/oauth", func(r chi.Router) {
					r.Get("/google", h.Auth.LoginWithGoogle)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(ja))
				r.Use(middleware.AuthRequired(ja))
				r.Get("/me", h.Auth.Me)
			})
		})

		// SSE stream authenticates through its own short-lived token, so it
		// sits outside the bearer-token group.
		r.Get("/notifications/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(apiLimit)
			r.Use(jwtauth.Verifier(ja))
			r.Use(middleware.AuthRequired(ja))

			r.Route("/employees", func(r chi.Router) {
				r.Post("/", h.Employee.CreateEmployee)
				r.Get("/", h.Employee.ListEmployees)
				r.Get("/{id}", h.Employee.GetEmployee)
				r.Put("/{id}", h.Employee.UpdateEmployee)
				r.Delete("/{id}", h.Employee.DeactivateEmployee)
				r.Post("/{id}/activate", h.Employee.ActivateEmployee)
			})

			r.Route("/masters", func(r chi.Router) {
				r.Route("/branches", func(r chi.Router) {
					r.Post("/", h.Master.CreateBranch)
					r.Get("/", h.Master.ListBranches)
					r.Get("/{id}", h.Master.GetBranch)
					r.Put("/{id}", h.Master.UpdateBranch)
					r.Delete("/{id}", h.Master.DeleteBranch)
				})
				r.Route("/departments", func(r chi.Router) {
					r.Post("/", h.Master.CreateDepartment)
					r.Get("/", h.Master.ListDepartments)
					r.Get("/{id}", h.Master.GetDepartment)
					r.Put("/{id}", h.Master.UpdateDepartment)
					r.Delete("/{id}", h.Master.DeleteDepartment)
				})
				r.Route("/positions", func(r chi.Router) {
					r.Post("/", h.Master.CreatePosition)
					r.Get("/", h.Master.ListPositions)
					r.Get("/{id}", h.Master.GetPosition)
					r.Put("/{id}", h.Master.UpdatePosition)
					r.Delete("/{id}", h.Master.DeletePosition)
				})
			})

			r.Route("/attendances", func(r chi.Router) {
				r.Post("/check-in", h.Attendance.CheckIn)
				r.Post("/check-out", h.Attendance.CheckOut)
				r.Get("/", h.Attendance.ListAttendances)
				r.Get("/{id}", h.Attendance.GetAttendance)
				r.Put("/{id}", h.Attendance.UpdateAttendance)
			})

			r.Route("/leaves", func(r chi.Router) {
				r.Post("/", h.Leave.SubmitLeave)
				r.Get("/", h.Leave.ListLeaves)
				r.Get("/balance", h.Leave.GetBalance)
				r.Route("/entitlements", func(r chi.Router) {
					r.Get("/", h.Leave.ListEntitlements)
					r.Put("/", h.Leave.UpsertEntitlement)
				})
				r.Get("/{id}", h.Leave.GetLeave)
				r.Post("/{id}/approve", h.Leave.ApproveLeave)
				r.Post("/{id}/reject", h.Leave.RejectLeave)
				r.Post("/{id}/cancel", h.Leave.CancelLeave)
				r.Post("/{id}/delegate", h.Leave.DelegateLeave)
			})

			r.Route("/loans", func(r chi.Router) {
				r.Post("/", h.Loan.SubmitLoan)
				r.Get("/", h.Loan.ListLoans)
				r.Get("/{id}", h.Loan.GetLoan)
				r.Post("/{id}/approve", h.Loan.ApproveLoan)
				r.Post("/{id}/reject", h.Loan.RejectLoan)
				r.Post("/{id}/cancel", h.Loan.CancelLoan)
				r.Post("/{id}/delegate", h.Loan.DelegateLoan)
				r.Post("/{id}/disburse", h.Loan.DisburseLoan)
				r.Post("/{id}/default", h.Loan.MarkLoanDefaulted)
			})

			r.Route("/payrolls", func(r chi.Router) {
				r.Post("/generate", h.Payroll.GeneratePayroll)
				r.Get("/", h.Payroll.ListPayrolls)
				r.Get("/{id}", h.Payroll.GetPayroll)
				r.Post("/{id}/approve", h.Payroll.ApprovePayroll)
				r.Post("/{id}/pay", h.Payroll.PayPayroll)
				r.Get("/{id}/payslip", h.Payroll.DownloadPayslip)
			})

			r.Route("/performance-reviews", func(r chi.Router) {
				r.Post("/", h.Performance.CreateReview)
				r.Get("/", h.Performance.ListReviews)
				r.Get("/{id}", h.Performance.GetReview)
				r.Put("/{id}", h.Performance.UpdateReview)
				r.Post("/{id}/submit", h.Performance.SubmitReview)
				r.Post("/{id}/acknowledge", h.Performance.AcknowledgeReview)
				r.Delete("/{id}", h.Performance.DeleteReview)
			})

			r.Route("/shifts", func(r chi.Router) {
				r.Post("/", h.Shift.CreateShift)
				r.Get("/", h.Shift.ListShifts)
				r.Route("/assignments", func(r chi.Router) {
					r.Post("/", h.Shift.AssignShift)
					r.Get("/", h.Shift.ListAssignments)
					r.Delete("/{id}", h.Shift.UnassignShift)
				})
				r.Get("/{id}", h.Shift.GetShift)
				r.Put("/{id}", h.Shift.UpdateShift)
				r.Delete("/{id}", h.Shift.DeleteShift)
			})

			// Workflow configuration is management-only, reads included:
			// the step definitions reveal the approval chain.
			r.Route("/approval-workflows", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionWorkflowManage))
				r.Post("/", h.Approval.CreateWorkflow)
				r.Get("/", h.Approval.ListWorkflows)
				r.Post("/resolve", h.Approval.ResolveWorkflow)
				r.Get("/{id}", h.Approval.GetWorkflow)
				r.Put("/{id}", h.Approval.UpdateWorkflow)
				r.Post("/{id}/activate", h.Approval.ActivateWorkflow)
				r.Post("/{id}/deactivate", h.Approval.DeactivateWorkflow)
				r.Delete("/{id}", h.Approval.DeleteWorkflow)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Post("/mark-read", h.Notification.MarkAsRead)
				r.Post("/mark-all-read", h.Notification.MarkAllAsRead)
				r.Get("/sse-token", h.Notification.GetSSEToken)
			})

			r.Route("/audit-logs", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionAuditView))
				r.Get("/", h.Audit.ListEntries)
			})
		})
	})
	return r, nil
}
