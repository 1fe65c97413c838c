package web

// errors.go turns errors into JSON responses.
//
// The technical error is logged with the request ID; the client receives the
// core.MapError message with its support code:
//
//	{"error": "...", "message": "...", "action": "...", "code": "FILE002"}

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/branchtree/internal/core"
	"github.com/JonMunkholm/branchtree/internal/logging"
	"github.com/JonMunkholm/branchtree/internal/tabular"
)

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

var (
	errMethodNotAllowed = errors.New("method not allowed")
	errNotFound         = errors.New("not found")
)

// respondError logs err and writes its user-facing form with the status
// derived from the error chain.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	respondErrorStatus(w, r, err, statusFor(err))
}

func respondErrorStatus(w http.ResponseWriter, r *http.Request, err error, status int) {
	ue := core.NewUserError(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", ue.Technical.Error(),
		"code", ue.User.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}

	resp := ErrorResponse{
		Error:   ue.Error(),
		Message: ue.User.Message,
		Action:  ue.User.Action,
		Code:    ue.User.Code,
	}
	// Routing errors have no mapped message.
	if !core.IsUserFacing(err) && status < http.StatusInternalServerError {
		resp.Error = err.Error()
		resp.Message = http.StatusText(status)
		resp.Action = ""
	}

	writeJSON(w, r, status, resp)
}

// statusFor maps an error chain to an HTTP status.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, tabular.ErrMalformedInput),
		errors.Is(err, tabular.ErrUnsupportedFormat),
		errors.Is(err, core.ErrNoContent),
		errors.Is(err, core.ErrInvalidBody),
		errors.Is(err, core.ErrUnknownStrategy):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyConversions),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondErrorStatus(w, r, errMethodNotAllowed, http.StatusMethodNotAllowed)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondErrorStatus(w, r, errNotFound, http.StatusNotFound)
}
