package http

import (
	"net/http"
	"strconv"

	commonerrors "github.com/AlibekovAA/task-manager/backend/internal/common/errors"
	"github.com/AlibekovAA/task-manager/backend/internal/common/httpmetrics"
	"github.com/AlibekovAA/task-manager/backend/internal/common/logger"
	"github.com/AlibekovAA/task-manager/backend/internal/observability/metrics"
)

type ErrorHandler struct {
	log *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{log: log}
}

// HandleError writes err as an error envelope. Domain errors keep their
// status and public message; everything else becomes a generic 500.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	ctx := r.Context()

	domainErr, ok := commonerrors.AsDomainError(err)
	if !ok {
		h.log.WithFields(ctx, logger.Fields{
			"action": "unhandled_error",
			"path":   r.URL.Path,
		}).Errorf("unhandled error: %v", err)
		WriteDomainError(w, r, commonerrors.ErrInternal)
		return
	}

	fields := logger.Fields{
		"error_code": domainErr.Code(),
		"category":   string(domainErr.Category()),
		"status":     domainErr.HTTPStatus(),
		"action":     "domain_error",
	}

	if domainErr.Category() == commonerrors.CategoryInternal {
		h.log.WithFields(ctx, fields).Errorf("internal error: %v", domainErr)
	} else if h.log.ShouldLog(logger.DEBUG) {
		h.log.WithFields(ctx, fields).Debugf("domain error: %v", domainErr)
	}

	WriteDomainError(w, r, domainErr)
}

func HandleError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	NewErrorHandler(log).HandleError(w, r, err)
}

// WriteDomainError serializes err without its cause and counts it.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err commonerrors.DomainError) {
	traceID := logger.TraceIDFromContext(r.Context())
	if traceID != "" && err.TraceID() == "" {
		err = err.WithTraceID(traceID)
	}

	status := err.HTTPStatus()

	metrics.DomainErrorsTotal.WithLabelValues(
		string(err.Category()),
		err.Code(),
		strconv.Itoa(status),
	).Inc()

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	WriteErrorEnvelope(w, status, err.Code(), err.Message(), err.Details(), err.TraceID())
}
