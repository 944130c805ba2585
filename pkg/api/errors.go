package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	cperrors "github.com/matzehuels/critpath/pkg/errors"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the machine-readable code and a message.
type ErrorBody struct {
	Code      cperrors.Code `json:"code"`
	Message   string        `json:"message"`
	RequestID string        `json:"request_id,omitempty"`
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch cperrors.GetCode(err) {
	case cperrors.ErrCodeInvalidInput, cperrors.ErrCodeInvalidTask, cperrors.ErrCodeInvalidDate:
		return http.StatusBadRequest
	case cperrors.ErrCodeNotFound, cperrors.ErrCodeProjectNotFound, cperrors.ErrCodeTaskNotFound:
		return http.StatusNotFound
	case cperrors.ErrCodeLocked:
		return http.StatusConflict
	case cperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case cperrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	code := cperrors.GetCode(err)
	if code == "" {
		code = cperrors.ErrCodeInternal
	}
	msg := cperrors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "code", code, "err", err)
		if status == http.StatusInternalServerError {
			msg = "internal error"
			if code == cperrors.ErrCodePersistence {
				msg = "schedule could not be saved; no task was changed"
			}
		}
	}
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{
		Code:      code,
		Message:   msg,
		RequestID: middleware.GetReqID(r.Context()),
	}})
}
