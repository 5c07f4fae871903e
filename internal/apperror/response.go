package apperror

import (
	"encoding/json"
	"net/http"

	"github.com/Ashivkar123/Image-Resizer/internal/logger"
)

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteJSON maps err to its HTTP status and writes it as an ErrorResponse.
// Server faults are logged with their cause; client faults at warn.
func WriteJSON(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	appErr := FromDomain(err)
	if appErr == nil {
		appErr = ErrInternal
	}

	log := logger.FromContext(ctx).With("code", appErr.Code, "status", appErr.StatusCode)
	switch {
	case appErr.StatusCode >= http.StatusInternalServerError && appErr.Internal != nil:
		log.Error("request failed", "error", appErr.Internal)
	case appErr.StatusCode >= http.StatusInternalServerError:
		log.Error("request failed")
	case appErr.Internal != nil:
		log.Warn("request rejected", "error", appErr.Internal)
	default:
		log.Warn("request rejected")
	}

	if appErr.StatusCode == http.StatusTooManyRequests && w.Header().Get("Retry-After") == "" {
		w.Header().Set("Retry-After", "60")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:     appErr.Code,
		Code:      appErr.Code,
		Message:   appErr.Message,
		RequestID: logger.RequestID(ctx),
	})
}
