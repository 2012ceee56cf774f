package portal_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trinity/internal/cookies"
	"trinity/internal/portal"
	"trinity/internal/portal/portaltest"
	dErrors "trinity/pkg/domain-errors"
)

func TestLoginForm(t *testing.T) {
	stub := portaltest.New()
	defer stub.Close()
	client := portal.NewClient(stub.URL)

	res, err := client.LoginForm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "REQ1", res.SamlRequest)
	assert.Equal(t, "form-session", res.Cookies.Get("JSESSIONID"))
}

func TestLoginForm_ArtifactMissing(t *testing.T) {
	stub := portaltest.New()
	defer stub.Close()
	stub.OmitArtifact = true
	client := portal.NewClient(stub.URL)

	_, err := client.LoginForm(context.Background())
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeArtifactNotFound))
}

func TestAuthenticate(t *testing.T) {
	stub := portaltest.New()
	defer stub.Close()
	client := portal.NewClient(stub.URL)

	form, err := client.LoginForm(context.Background())
	require.NoError(t, err)

	res, err := client.Authenticate(context.Background(), portal.AuthRequest{
		ID:          "student",
		Password:    "secret",
		SamlRequest: form.SamlRequest,
		Cookies:     form.Cookies,
	})
	require.NoError(t, err)
	assert.Equal(t, "RESP2", res.SamlResponse)
	// Cookies grow: stage-1 cookies survive, stage-2 cookies are merged in.
	assert.Equal(t, "form-session", res.Cookies.Get("JSESSIONID"))
	assert.Equal(t, "granted", res.Cookies.Get("ssoAuth"))
}

func TestAuthenticate_BadCredentials(t *testing.T) {
	stub := portaltest.New()
	defer stub.Close()
	client := portal.NewClient(stub.URL)

	_, err := client.Authenticate(context.Background(), portal.AuthRequest{
		ID:          "student",
		Password:    "wrong",
		SamlRequest: "REQ1",
	})
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeInvalidCredentials))
}

func TestAuthenticate_MissingArtifact(t *testing.T) {
	stub := portaltest.New()
	defer stub.Close()
	client := portal.NewClient(stub.URL)

	_, err := client.Authenticate(context.Background(), portal.AuthRequest{
		ID:       "student",
		Password: "secret",
	})
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeArtifactNotFound))
}

func TestEstablishSession(t *testing.T) {
	stub := portaltest.New()
	defer stub.Close()
	client := portal.NewClient(stub.URL)

	res, err := client.EstablishSession(context.Background(), portal.SessionRequest{
		SamlResponse: "RESP2",
		Cookies:      cookies.New(cookies.Cookie{Name: "ssoAuth", Value: "granted"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "CSRF3", res.Csrf)
	// Redirect-issued cookie was carried into the one followed hop and the
	// landing page's cookies were merged on top.
	assert.Equal(t, "sess-1", res.Cookies.Get("PORTALSESSION"))
	assert.Equal(t, "landing", res.Cookies.Get("XSRF-META"))
	assert.Equal(t, "granted", res.Cookies.Get("ssoAuth"))
}

func TestEstablishSession_NoRedirectIsHardFailure(t *testing.T) {
	stub := portaltest.New()
	defer stub.Close()
	stub.NoRedirect = true
	client := portal.NewClient(stub.URL)

	_, err := client.EstablishSession(context.Background(), portal.SessionRequest{SamlResponse: "RESP2"})
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnexpectedResponse))
}

func TestEstablishSession_CsrfMissing(t *testing.T) {
	stub := portaltest.New()
	defer stub.Close()
	stub.OmitCsrf = true
	client := portal.NewClient(stub.URL)

	_, err := client.EstablishSession(context.Background(), portal.SessionRequest{SamlResponse: "RESP2"})
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeTokenNotFound))
}

func TestEstablishSession_MissingArtifact(t *testing.T) {
	stub := portaltest.New()
	defer stub.Close()
	client := portal.NewClient(stub.URL)

	_, err := client.EstablishSession(context.Background(), portal.SessionRequest{})
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeTokenNotFound))
}

func TestLogout_RedirectCountsAsSuccess(t *testing.T) {
	stub := portaltest.New()
	defer stub.Close()
	client := portal.NewClient(stub.URL)

	err := client.Logout(context.Background(), portal.LogoutRequest{Csrf: "CSRF3"})
	require.NoError(t, err)
	assert.Equal(t, 1, stub.Logouts())
}

func TestLogout_Failure(t *testing.T) {
	stub := portaltest.New()
	defer stub.Close()
	stub.LogoutStatus = 500
	client := portal.NewClient(stub.URL)

	err := client.Logout(context.Background(), portal.LogoutRequest{Csrf: "CSRF3"})
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeLogoutFailed))
}

func TestUserInfo(t *testing.T) {
	stub := portaltest.New()
	defer stub.Close()
	client := portal.NewClient(stub.URL)

	res, err := client.UserInfo(context.Background(), portal.UserInfoRequest{
		Csrf:    "CSRF3",
		Cookies: cookies.New(cookies.Cookie{Name: "PORTALSESSION", Value: "sess-1"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Kim Student", res.UserInfo.UserNm)
	assert.Equal(t, "202012345", res.UserInfo.UserNo)
}

func TestUserInfo_MissingToken(t *testing.T) {
	stub := portaltest.New()
	defer stub.Close()
	client := portal.NewClient(stub.URL)

	_, err := client.UserInfo(context.Background(), portal.UserInfoRequest{})
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}
