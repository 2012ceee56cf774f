// Package gateway is the boundary HTTP surface. It bridges the client's
// browser cookie jar to correlated broker calls, one call per relay stage,
// and keeps no authentication state of its own: everything a later request
// needs rides back to the client as cookies.
package gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mssola/useragent"

	"trinity/internal/bus"
	jwttoken "trinity/internal/jwt_token"
	"trinity/internal/management"
	"trinity/internal/platform/metrics"
	"trinity/internal/platform/middleware"
	"trinity/internal/portal"
	"trinity/internal/relay"
	dErrors "trinity/pkg/domain-errors"
)

// accessTokenTTL bounds the board access token. The portal session usually
// dies sooner; the token only gates our own endpoints.
const accessTokenTTL = 2 * time.Hour

// Handler drives the relay stages and proxies the worker domains.
type Handler struct {
	requester *bus.Requester
	tokens    *jwttoken.Service
	metrics   *metrics.Metrics
	logger    *slog.Logger
	timeout   time.Duration
}

func New(requester *bus.Requester, tokens *jwttoken.Service, m *metrics.Metrics, logger *slog.Logger, timeout time.Duration) *Handler {
	return &Handler{
		requester: requester,
		tokens:    tokens,
		metrics:   m,
		logger:    logger,
		timeout:   timeout,
	}
}

func (h *Handler) stageFailed(r *http.Request, stage string, err error) {
	h.metrics.LoginStageFailed.WithLabelValues(stage, string(dErrors.CodeOf(err))).Inc()
	h.logger.WarnContext(r.Context(), "relay stage failed",
		"stage", stage,
		"error", err,
		"request_id", middleware.GetRequestID(r.Context()),
	)
}

// HandleLoginForm runs stage 1: fetch the portal login form and hand the
// extracted artifact plus the portal's initial cookies to the client.
func (h *Handler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.metrics.LoginStageTotal.WithLabelValues("login_form").Inc()

	result, err := bus.Call[portal.LoginFormResult](r.Context(), h.requester, relay.TopicLoginForm, struct{}{}, h.timeout)
	if err != nil {
		h.stageFailed(r, "login_form", err)
		writeError(w, err)
		return
	}

	setCookie(w, cookieStage1Artifact, result.SamlRequest)
	setPortalCookies(w, result.Cookies)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type credentialsRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// HandleAuth runs stage 2: submit credentials together with the stage-1
// artifact. On failure the client's cookies are left untouched, so the same
// artifact can be retried.
func (h *Handler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	h.metrics.LoginStageTotal.WithLabelValues("auth").Inc()

	body, ok := decodeJSON[credentialsRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := bus.Call[portal.AuthResult](r.Context(), h.requester, relay.TopicAuth, portal.AuthRequest{
		ID:          body.ID,
		Password:    body.Password,
		SamlRequest: cookieValue(r, cookieStage1Artifact),
		Cookies:     portalJar(r),
	}, h.timeout)
	if err != nil {
		h.stageFailed(r, "auth", err)
		writeError(w, err)
		return
	}

	setCookie(w, cookieStage2Artifact, result.SamlResponse)
	setPortalCookies(w, result.Cookies)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HandleLogin runs stage 3: exchange the SAML response for a portal session.
// On success the stage artifacts are cleared, the csrf token becomes the
// client's session token, an access token is minted for the board endpoints,
// and the login counter is notified fire-and-forget.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.metrics.LoginStageTotal.WithLabelValues("login").Inc()

	result, err := bus.Call[portal.SessionResult](ctx, h.requester, relay.TopicLogin, portal.SessionRequest{
		SamlResponse: cookieValue(r, cookieStage2Artifact),
		Cookies:      portalJar(r),
	}, h.timeout)
	if err != nil {
		h.stageFailed(r, "login", err)
		writeError(w, err)
		return
	}

	accessToken, err := h.tokens.GenerateAccessToken(result.Csrf, accessTokenTTL)
	if err != nil {
		h.stageFailed(r, "login", err)
		writeError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to issue access token", err))
		return
	}

	setCookie(w, cookieSessionToken, result.Csrf)
	setCookie(w, cookieAccessToken, accessToken)
	setPortalCookies(w, result.Cookies)
	clearCookie(w, cookieStage1Artifact)
	clearCookie(w, cookieStage2Artifact)

	// The counter is advisory: its failure must never fail the login.
	if err := h.requester.Emit(ctx, management.TopicLoginSuccess, struct{}{}); err != nil {
		h.logger.WarnContext(ctx, "login success notification failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
	}

	ua := useragent.New(r.UserAgent())
	browser, _ := ua.Browser()
	h.logger.InfoContext(ctx, "login completed",
		"browser", browser,
		"os", ua.OS(),
		"mobile", ua.Mobile(),
		"request_id", middleware.GetRequestID(ctx),
	)

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "accessToken": accessToken})
}

// HandleLogout runs stage 4 and, on success, clears every cookie the client
// sent. A failed logout leaves the cookies alone so the client can retry.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.metrics.LoginStageTotal.WithLabelValues("logout").Inc()

	_, err := bus.Call[relay.AckResult](r.Context(), h.requester, relay.TopicLogout, portal.LogoutRequest{
		Csrf:    cookieValue(r, cookieSessionToken),
		Cookies: portalJar(r),
	}, h.timeout)
	if err != nil {
		h.stageFailed(r, "logout", err)
		writeError(w, err)
		return
	}

	for _, c := range r.Cookies() {
		clearCookie(w, c.Name)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HandleUserInfo fetches the student profile through the relay, then makes
// one extra correlated call for the configured term. The term call degrades
// gracefully: its failure only leaves the term fields empty.
func (h *Handler) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	csrf := cookieValue(r, cookieSessionToken)
	if csrf == "" {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "not authenticated"))
		return
	}

	result, err := bus.Call[portal.UserInfoResult](ctx, h.requester, relay.TopicUserInfo, portal.UserInfoRequest{
		Csrf:    csrf,
		Cookies: portalJar(r),
	}, h.timeout)
	if err != nil {
		writeError(w, err)
		return
	}

	term, err := bus.Call[management.Term](ctx, h.requester, management.TopicGetShtmYyyy, struct{}{}, h.timeout)
	if err != nil {
		h.logger.WarnContext(ctx, "term lookup failed, returning profile without it",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
	} else {
		if term.Shtm != "" {
			result.UserInfo.Shtm = term.Shtm
		}
		if term.Yyyy != "" {
			result.UserInfo.Yyyy = term.Yyyy
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "userInfo": result.UserInfo})
}

// HandleLoginCount reports the public login counter.
func (h *Handler) HandleLoginCount(w http.ResponseWriter, r *http.Request) {
	result, err := bus.Call[management.LoginCountResult](r.Context(), h.requester, management.TopicGetLoginCount, struct{}{}, h.timeout)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": result.Count})
}
