// Package portaltest runs an in-process stand-in for the university portal.
// It reproduces the behaviors the relay depends on: the SAML artifact pair,
// the redirect-then-csrf landing page, and cookie issuance per step.
package portaltest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Server is a scripted portal. The zero values of the knobs give a healthy
// portal that accepts ValidID/ValidPassword.
type Server struct {
	*httptest.Server

	Artifact     string // samlRequest embedded in the login form
	SamlResponse string // SAMLResponse produced for valid credentials
	Csrf         string // csrf token on the landing page

	ValidID       string
	ValidPassword string

	// Failure knobs.
	OmitArtifact bool // login form without a samlRequest
	NoRedirect   bool // stage 3 answers 200 instead of a redirect
	OmitCsrf     bool // landing page without the csrf meta tag
	LogoutStatus int  // non-zero forces this status on logout

	mu      sync.Mutex
	logouts int
}

// New starts a portal stub with the standard test script: artifact REQ1,
// SAML response RESP2, csrf CSRF3, credentials student/secret.
func New() *Server {
	s := &Server{
		Artifact:      "REQ1",
		SamlResponse:  "RESP2",
		Csrf:          "CSRF3",
		ValidID:       "student",
		ValidPassword: "secret",
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/sso/jsp/sso/ip/login_form.jsp", s.loginForm)
	mux.HandleFunc("/sso/processAuthnResponse.do", s.processAuth)
	mux.HandleFunc("/portal/login/login.ajax", s.loginAjax)
	mux.HandleFunc("/portal/loginSuccess.do", s.loginSuccess)
	mux.HandleFunc("/portal/common/logout.do", s.logout)
	mux.HandleFunc("/portal/main/findUserInfo.json", s.userInfo)
	s.Server = httptest.NewServer(mux)
	return s
}

// Logouts reports how many logout requests the portal accepted.
func (s *Server) Logouts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logouts
}

func (s *Server) loginForm(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "form-session", Path: "/"})
	if s.OmitArtifact {
		fmt.Fprint(w, `<html><body>maintenance</body></html>`)
		return
	}
	fmt.Fprintf(w, `<html><form><input type="hidden" name="samlRequest" value="%s"/></form></html>`, s.Artifact)
}

func (s *Server) processAuth(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	if r.PostFormValue("userId") != s.ValidID ||
		r.PostFormValue("password") != s.ValidPassword ||
		r.PostFormValue("samlRequest") != s.Artifact {
		// The real portal answers 200 with a form that simply lacks the
		// artifact; there is no structured error.
		fmt.Fprint(w, `<html><body>login failed</body></html>`)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "ssoAuth", Value: "granted", Path: "/"})
	fmt.Fprintf(w, `<html><form><input type="hidden" name="SAMLResponse" value="%s"/></form></html>`, s.SamlResponse)
}

func (s *Server) loginAjax(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	if r.PostFormValue("SAMLResponse") != s.SamlResponse {
		fmt.Fprint(w, `<html><body>assertion rejected</body></html>`)
		return
	}
	if s.NoRedirect {
		fmt.Fprint(w, `<html><body>ok</body></html>`)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "PORTALSESSION", Value: "sess-1", Path: "/"})
	w.Header().Set("Location", "/portal/loginSuccess.do")
	w.WriteHeader(http.StatusFound)
}

func (s *Server) loginSuccess(w http.ResponseWriter, r *http.Request) {
	if !hasCookie(r, "PORTALSESSION") {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "XSRF-META", Value: "landing", Path: "/"})
	if s.OmitCsrf {
		fmt.Fprint(w, `<html><head></head></html>`)
		return
	}
	fmt.Fprintf(w, `<html><head><meta id="_csrf" content="%s"/></head></html>`, s.Csrf)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if s.LogoutStatus != 0 {
		w.WriteHeader(s.LogoutStatus)
		return
	}
	if r.Header.Get("x-csrf-token") != s.Csrf {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	s.mu.Lock()
	s.logouts++
	s.mu.Unlock()
	w.Header().Set("Location", "/portal/main/index.do")
	w.WriteHeader(http.StatusFound)
}

func (s *Server) userInfo(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("x-csrf-token") != s.Csrf || !hasCookie(r, "PORTALSESSION") {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"trinityInfo": map[string]string{
			"userNm":   "Kim Student",
			"userNo":   "202012345",
			"deptNm":   "Computer Science",
			"campFg":   "S",
			"shtmYyyy": "2026-2",
		},
	})
}

func hasCookie(r *http.Request, name string) bool {
	header := r.Header.Get("Cookie")
	for _, part := range strings.Split(header, ";") {
		cname, _, _ := strings.Cut(strings.TrimSpace(part), "=")
		if cname == name {
			return true
		}
	}
	return false
}
