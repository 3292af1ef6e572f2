package middleware

import (
	"net"
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
)

// RequestMeta stores the request ID and client IP in the context so the audit
// recorder can stamp them onto entries without the services knowing about HTTP.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta := audit.RequestMeta{
			RequestID: chiMiddleware.GetReqID(r.Context()),
			IPAddress: clientIP(r),
		}
		next.ServeHTTP(w, r.WithContext(audit.WithRequestMeta(r.Context(), meta)))
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
