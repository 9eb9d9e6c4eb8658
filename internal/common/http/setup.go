package http

import (
	"net/http"

	"github.com/AlibekovAA/task-manager/backend/internal/common/constants"
	commonerrors "github.com/AlibekovAA/task-manager/backend/internal/common/errors"
	"github.com/AlibekovAA/task-manager/backend/internal/common/httpmetrics"
	"github.com/AlibekovAA/task-manager/backend/internal/common/logger"
)

type BaseHandlerOptions struct {
	AllowedOrigins []string
	MaxRequestSize int64
	GeneralLimiter Limiter
}

// BuildBaseHandler wraps the router in the middleware every request goes
// through, outermost first: security headers, CORS, panic recovery, trace id,
// body size limit, metrics and the general rate limit.
func BuildBaseHandler(opts BaseHandlerOptions, log *logger.Logger, handler http.Handler) http.Handler {
	if opts.MaxRequestSize <= 0 {
		opts.MaxRequestSize = constants.DefaultMaxRequestSize
	}

	h := handler
	if opts.GeneralLimiter != nil {
		h = RateLimitMiddleware(opts.GeneralLimiter, "general", log)(h)
	}
	h = httpmetrics.New().Wrap(h)
	h = MaxRequestSizeMiddleware(opts.MaxRequestSize)(h)
	h = TraceIDMiddleware(h)
	h = RecoveryMiddleware(log)(h)
	h = CORSMiddleware(opts.AllowedOrigins)(h)
	return SecurityHeadersMiddleware(h)
}

// NotFoundHandler and MethodNotAllowedHandler give unmatched routes the same
// envelope as every other error.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteDomainError(w, r, commonerrors.ErrRouteNotFound)
	})
}

func MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteDomainError(w, r, commonerrors.ErrMethodNotAllowed)
	})
}
