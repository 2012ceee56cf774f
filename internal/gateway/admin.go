package gateway

import (
	"net/http"

	"trinity/internal/bus"
	"trinity/internal/management"
	dErrors "trinity/pkg/domain-errors"
)

// HandleMngLogin signs an administrator into the console. The session lives
// in the management service; the client only holds its id.
func (h *Handler) HandleMngLogin(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeJSON[credentialsRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := bus.Call[management.LoginResult](r.Context(), h.requester, management.TopicLogin, management.LoginRequest{
		ID:       body.ID,
		Password: body.Password,
	}, h.timeout)
	if err != nil {
		writeError(w, err)
		return
	}

	setCookie(w, cookieMngSession, result.SessionID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HandleMngLogout drops the admin session. Always succeeds from the client's
// point of view; a missing session cookie just means nothing to drop.
func (h *Handler) HandleMngLogout(w http.ResponseWriter, r *http.Request) {
	if sessionID := cookieValue(r, cookieMngSession); sessionID != "" {
		_, err := bus.Call[management.AckResult](r.Context(), h.requester, management.TopicLogout, management.LogoutRequest{
			SessionID: sessionID,
		}, h.timeout)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	clearCookie(w, cookieMngSession)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// requireMngSession validates the admin session cookie against the
// management service. Returns false with the response already written when
// the caller is not an authenticated administrator.
func (h *Handler) requireMngSession(w http.ResponseWriter, r *http.Request) bool {
	sessionID := cookieValue(r, cookieMngSession)
	if sessionID == "" {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "not authenticated"))
		return false
	}

	result, err := bus.Call[management.ValidateSessionResult](r.Context(), h.requester, management.TopicValidateSession, management.ValidateSessionRequest{
		SessionID: sessionID,
	}, h.timeout)
	if err != nil {
		writeError(w, err)
		return false
	}
	if !result.Valid {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid session"))
		return false
	}
	return true
}

// HandleGetTerm reports the configured academic term. Admin only.
func (h *Handler) HandleGetTerm(w http.ResponseWriter, r *http.Request) {
	if !h.requireMngSession(w, r) {
		return
	}

	term, err := bus.Call[management.Term](r.Context(), h.requester, management.TopicGetShtmYyyy, struct{}{}, h.timeout)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "shtm": term.Shtm, "yyyy": term.Yyyy})
}

// HandleSetTerm updates the configured academic term. Admin only.
func (h *Handler) HandleSetTerm(w http.ResponseWriter, r *http.Request) {
	if !h.requireMngSession(w, r) {
		return
	}

	body, ok := decodeJSON[management.Term](w, r, h.logger)
	if !ok {
		return
	}

	result, err := bus.Call[management.SetTermResult](r.Context(), h.requester, management.TopicSetShtmYyyy, body, h.timeout)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
