package gateway

import (
	"net/http"

	"trinity/internal/cookies"
)

// Cookie names owned by the gateway itself. Everything else on the request
// is assumed to be a portal cookie and is relayed back to the portal.
const (
	cookieStage1Artifact = "samlRequest"
	cookieStage2Artifact = "samlResponse"
	cookieSessionToken   = "csrf"
	cookieMngSession     = "mng_session"
	cookieAccessToken    = "accessToken"
)

var gatewayCookieNames = []string{
	cookieStage1Artifact,
	cookieStage2Artifact,
	cookieSessionToken,
	cookieMngSession,
	cookieAccessToken,
}

// portalJar extracts the portal-relevant cookie subset from the client's
// request, stripping the gateway's own protocol cookies.
func portalJar(r *http.Request) cookies.Jar {
	jar := cookies.New()
	for _, c := range r.Cookies() {
		jar = jar.Set(c.Name, c.Value)
	}
	return jar.Without(gatewayCookieNames...)
}

// setPortalCookies re-issues the portal's cookies on the gateway's own
// domain so the client carries them into the next stage.
func setPortalCookies(w http.ResponseWriter, jar cookies.Jar) {
	for _, c := range jar.Without(gatewayCookieNames...).All() {
		setCookie(w, c.Name, c.Value)
	}
}

func setCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
