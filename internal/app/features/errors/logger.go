// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger pairs structured logging with user-facing error pages.
// The internal message and error go to the log; the user only ever
// sees the fixed userMsg.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

func (e *ErrorLogger) logRequest(level func(string, ...zap.Field), internalMsg string, err error, r *http.Request) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	level(internalMsg, fields...)
}

// LogServerError logs the internal error and renders a server-error page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, internalMsg string, err error, userMsg, backURL string) {
	e.logRequest(e.log.Error, internalMsg, err, r)
	RenderServerError(w, r, userMsg, backURL)
}

// LogBadRequest logs the problem and renders a bad-request page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, internalMsg string, err error, userMsg, backURL string) {
	e.logRequest(e.log.Warn, internalMsg, err, r)
	RenderBadRequest(w, r, userMsg, backURL)
}

// LogForbidden logs the denied access and renders a forbidden page.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, internalMsg string, err error, userMsg, backURL string) {
	e.logRequest(e.log.Warn, internalMsg, err, r)
	RenderForbidden(w, r, userMsg, backURL)
}

// HTMXLogServerError logs the internal error and writes an inline
// fragment for HTMX requests, or a full page otherwise.
func (e *ErrorLogger) HTMXLogServerError(w http.ResponseWriter, r *http.Request, internalMsg string, err error, userMsg, backURL string) {
	e.logRequest(e.log.Error, internalMsg, err, r)
	HTMXError(w, r, http.StatusInternalServerError, userMsg, func() {
		RenderServerError(w, r, userMsg, backURL)
	})
}

// HTMXLogBadRequest logs the problem and writes an inline fragment for
// HTMX requests, or a full page otherwise.
func (e *ErrorLogger) HTMXLogBadRequest(w http.ResponseWriter, r *http.Request, internalMsg string, err error, userMsg, backURL string) {
	e.logRequest(e.log.Warn, internalMsg, err, r)
	HTMXBadRequest(w, r, userMsg, backURL)
}

// HTMXLogForbidden logs the denied access and writes an inline
// fragment for HTMX requests, or a full page otherwise.
func (e *ErrorLogger) HTMXLogForbidden(w http.ResponseWriter, r *http.Request, internalMsg string, err error, userMsg, backURL string) {
	e.logRequest(e.log.Warn, internalMsg, err, r)
	HTMXForbidden(w, r, userMsg, backURL)
}
