// Package portal speaks to the university SSO portal over plain HTTP. The
// portal is a stateful web session (cookies, a SAML artifact pair, a
// rotating csrf token); every method here is stateless and threads that
// session through explicit cookie-jar values.
package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"trinity/internal/cookies"
	dErrors "trinity/pkg/domain-errors"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:72.0) Gecko/20100101 Firefox/72.0"

var (
	samlRequestRe  = regexp.MustCompile(`name="samlRequest"\s+value="([^"]+)"`)
	samlResponseRe = regexp.MustCompile(`name="SAMLResponse"\s+value="([^"]+)"`)
	csrfRe         = regexp.MustCompile(`id="_csrf"[^>]*content="([^"]+)"`)
)

// Client calls the portal. Redirects are never followed automatically: the
// stage-3 contract is exactly one hop, carried out by hand with merged
// cookies.
type Client struct {
	base string
	http *http.Client
}

// NewClient builds a portal client against the given base URL.
func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// LoginForm fetches the login form and extracts the SAML request artifact.
// This is the entry point of every authentication attempt; no prior state is
// required.
func (c *Client) LoginForm(ctx context.Context) (*LoginFormResult, error) {
	resp, body, err := c.do(ctx, http.MethodGet, "/sso/jsp/sso/ip/login_form.jsp", nil, cookies.Jar{}, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, dErrors.New(dErrors.CodeUnexpectedResponse,
			fmt.Sprintf("login form returned status %d", resp.StatusCode))
	}

	m := samlRequestRe.FindStringSubmatch(body)
	if m == nil {
		return nil, dErrors.New(dErrors.CodeArtifactNotFound, "samlRequest not found in login form")
	}

	return &LoginFormResult{
		SamlRequest: m[1],
		Cookies:     cookies.ParseSetCookie(resp.Header.Values("Set-Cookie")),
	}, nil
}

// Authenticate submits credentials together with the stage-1 artifact. The
// portal returns no structured error: the only signal for bad credentials is
// the absence of a SAMLResponse artifact in the result body.
func (c *Client) Authenticate(ctx context.Context, in AuthRequest) (*AuthResult, error) {
	if in.SamlRequest == "" {
		return nil, dErrors.New(dErrors.CodeArtifactNotFound, "missing samlRequest artifact")
	}

	form := url.Values{
		"userId":      {in.ID},
		"password":    {in.Password},
		"samlRequest": {in.SamlRequest},
	}
	resp, body, err := c.do(ctx, http.MethodPost, "/sso/processAuthnResponse.do", form, in.Cookies, nil)
	if err != nil {
		return nil, err
	}
	if (resp.StatusCode < 200 || resp.StatusCode >= 300) && resp.StatusCode != http.StatusFound {
		return nil, dErrors.New(dErrors.CodeUnexpectedResponse,
			fmt.Sprintf("credential submit returned status %d", resp.StatusCode))
	}

	m := samlResponseRe.FindStringSubmatch(body)
	if m == nil {
		return nil, dErrors.New(dErrors.CodeInvalidCredentials, "incorrect id or password")
	}

	return &AuthResult{
		SamlResponse: m[1],
		Cookies:      cookies.Merge(in.Cookies, cookies.ParseSetCookie(resp.Header.Values("Set-Cookie"))),
	}, nil
}

// EstablishSession exchanges the SAML response for a portal session. The
// portal answers with a redirect on success, never a direct 200; the client
// follows exactly one hop with merged cookies and scrapes the csrf token
// from the landing page.
func (c *Client) EstablishSession(ctx context.Context, in SessionRequest) (*SessionResult, error) {
	if in.SamlResponse == "" {
		return nil, dErrors.New(dErrors.CodeTokenNotFound, "missing samlResponse artifact")
	}

	form := url.Values{"SAMLResponse": {in.SamlResponse}}
	resp, _, err := c.do(ctx, http.MethodPost, "/portal/login/login.ajax", form, in.Cookies, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusMovedPermanently && resp.StatusCode != http.StatusFound {
		return nil, dErrors.New(dErrors.CodeUnexpectedResponse,
			fmt.Sprintf("expected redirect, got status %d", resp.StatusCode))
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return nil, dErrors.New(dErrors.CodeUnexpectedResponse, "redirect without location")
	}

	jar := cookies.Merge(in.Cookies, cookies.ParseSetCookie(resp.Header.Values("Set-Cookie")))

	landing, body, err := c.doURL(ctx, http.MethodGet, c.resolve(location), nil, jar, nil)
	if err != nil {
		return nil, err
	}
	if landing.StatusCode < 200 || landing.StatusCode >= 300 {
		return nil, dErrors.New(dErrors.CodeUnexpectedResponse,
			fmt.Sprintf("landing page returned status %d", landing.StatusCode))
	}

	m := csrfRe.FindStringSubmatch(body)
	if m == nil {
		return nil, dErrors.New(dErrors.CodeTokenNotFound, "csrf token not found on landing page")
	}

	return &SessionResult{
		Csrf:    m[1],
		Cookies: cookies.Merge(jar, cookies.ParseSetCookie(landing.Header.Values("Set-Cookie"))),
	}, nil
}

// Logout ends the portal session. The portal may answer with a redirect; that
// counts as success the same as a 2xx.
func (c *Client) Logout(ctx context.Context, in LogoutRequest) error {
	headers := map[string]string{"x-csrf-token": in.Csrf}
	resp, _, err := c.do(ctx, http.MethodPost, "/portal/common/logout.do", url.Values{}, in.Cookies, headers)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return nil
	}
	return dErrors.New(dErrors.CodeLogoutFailed,
		fmt.Sprintf("logout returned status %d", resp.StatusCode))
}

// resolve turns a possibly relative redirect target into an absolute URL on
// the portal.
func (c *Client) resolve(location string) string {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return location
	}
	if !strings.HasPrefix(location, "/") {
		location = "/" + location
	}
	return c.base + location
}

// do performs one portal request against a path. A nil form means GET-style
// no body; otherwise the form is sent urlencoded.
func (c *Client) do(ctx context.Context, method, path string, form url.Values, jar cookies.Jar, headers map[string]string) (*http.Response, string, error) {
	return c.doURL(ctx, method, c.base+path, form, jar, headers)
}

func (c *Client) doURL(ctx context.Context, method, rawURL string, form url.Values, jar cookies.Jar, headers map[string]string) (*http.Response, string, error) {
	var bodyReader io.Reader
	if form != nil {
		bodyReader = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, "", fmt.Errorf("build portal request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if header := jar.Header(); header != "" {
		req.Header.Set("Cookie", header)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", dErrors.Wrap(dErrors.CodeUnexpectedResponse, "portal unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", dErrors.Wrap(dErrors.CodeUnexpectedResponse, "reading portal response", err)
	}
	return resp, string(body), nil
}
