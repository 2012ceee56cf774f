package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"trinity/internal/platform/middleware"
	dErrors "trinity/pkg/domain-errors"
)

// errorResponse is the uniform failure envelope: a success flag plus a short
// human-readable message. Codes map to HTTP status via the domain-errors
// table.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	writeJSON(w, dErrors.ToHTTPStatus(code), errorResponse{
		Success: false,
		Message: dErrors.MessageOf(err),
	})
}

// decodeJSON reads the request body into dst, replying 400 on malformed
// input. Returns false when the response has already been written.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var dst T
	if err := json.NewDecoder(r.Body).Decode(&dst); err != nil {
		logger.WarnContext(r.Context(), "malformed request body",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return dst, false
	}
	return dst, true
}
