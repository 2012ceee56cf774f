package gateway_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"trinity/internal/board"
	"trinity/internal/bus"
	"trinity/internal/gateway"
	jwttoken "trinity/internal/jwt_token"
	"trinity/internal/management"
	"trinity/internal/platform/metrics"
	"trinity/internal/portal"
	"trinity/internal/portal/portaltest"
	"trinity/internal/relay"
	"trinity/pkg/testutil"
)

// promauto registers on the default registry, so the gateway metrics are
// created once for the whole test binary.
var testMetrics = metrics.New()

// fixture runs the gateway against real workers over the in-memory broker:
// the relay worker speaks to a scripted portal stub, management and board
// run on their memory stores.
type fixture struct {
	t       *testing.T
	portal  *portaltest.Server
	broker  *bus.MemoryBroker
	mng     *management.Service
	router  http.Handler
	cookies map[string]*http.Cookie
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	portalStub := portaltest.New()
	t.Cleanup(portalStub.Close)

	broker := bus.NewMemoryBroker()
	t.Cleanup(func() { _ = broker.Close() })
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	mngService := management.NewService(management.NewMemoryStore(), "admin", string(hash), logger)

	responder := bus.NewResponder(broker, "workers", logger)
	relay.NewWorker(portal.NewClient(portalStub.URL), logger).Register(responder)
	management.NewWorker(mngService).Register(responder)
	board.NewWorker(board.NewService(board.NewMemoryStore(), logger)).Register(responder)
	go func() { _ = responder.Start(ctx) }()
	for _, topic := range responder.Topics() {
		require.Eventually(t, func() bool {
			return broker.Subscribers(topic) > 0
		}, time.Second, time.Millisecond, "subscription for %s", topic)
	}

	var callTopics []string
	callTopics = append(callTopics, relay.Topics()...)
	callTopics = append(callTopics, management.Topics()...)
	callTopics = append(callTopics, board.Topics()...)
	requester := bus.NewRequester(broker, "gateway", callTopics, logger)
	go func() { _ = requester.Start(ctx) }()
	for _, topic := range callTopics {
		replyTopic := bus.ReplyTopic(topic)
		require.Eventually(t, func() bool {
			return broker.Subscribers(replyTopic) > 0
		}, time.Second, time.Millisecond, "reply subscription for %s", replyTopic)
	}

	tokens := jwttoken.NewService("test-signing-key", "trinity", "trinity-clients")
	handler := gateway.New(requester, tokens, testMetrics, logger, 2*time.Second)
	router := gateway.NewRouter(handler, jwttoken.NewAdapter(tokens), testMetrics, logger)

	return &fixture{
		t:       t,
		portal:  portalStub,
		broker:  broker,
		mng:     mngService,
		router:  router,
		cookies: map[string]*http.Cookie{},
	}
}

// do sends one request carrying the fixture's accumulated cookie jar and
// folds any Set-Cookie headers from the response back into it, the way a
// browser would.
func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	f.t.Helper()
	for _, c := range f.cookies {
		req.AddCookie(c)
	}
	rr := testutil.DoRequest(f.router, req)
	for name, c := range testutil.Cookies(f.t, rr) {
		if c.MaxAge < 0 {
			delete(f.cookies, name)
			continue
		}
		f.cookies[name] = &http.Cookie{Name: name, Value: c.Value}
	}
	return rr
}

func (f *fixture) cookie(name string) string {
	if c, ok := f.cookies[name]; ok {
		return c.Value
	}
	return ""
}

type successBody struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
}

func (f *fixture) login(t *testing.T) string {
	t.Helper()

	rr := f.do(testutil.NewRequest(t, http.MethodPost, "/api/login-form"))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/auth",
		map[string]string{"id": "student", "password": "secret"}))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(testutil.NewRequest(t, http.MethodPost, "/api/login"))
	require.Equal(t, http.StatusOK, rr.Code)
	return testutil.UnmarshalResponse[successBody](t, rr).AccessToken
}

func TestEndToEndLogin(t *testing.T) {
	f := newFixture(t)

	rr := f.do(testutil.NewRequest(t, http.MethodPost, "/api/login-form"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "REQ1", f.cookie("samlRequest"))
	assert.Equal(t, "form-session", f.cookie("JSESSIONID"), "portal cookies reissued on our domain")

	rr = f.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/auth",
		map[string]string{"id": "student", "password": "secret"}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "RESP2", f.cookie("samlResponse"))
	assert.Equal(t, "granted", f.cookie("ssoAuth"))

	rr = f.do(testutil.NewRequest(t, http.MethodPost, "/api/login"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "CSRF3", f.cookie("csrf"))
	assert.Empty(t, f.cookie("samlRequest"), "stage-1 artifact cleared after session established")
	assert.Empty(t, f.cookie("samlResponse"), "stage-2 artifact cleared after session established")
	assert.NotEmpty(t, testutil.UnmarshalResponse[successBody](t, rr).AccessToken)

	// The fire-and-forget notification lands in the counter eventually.
	require.Eventually(t, func() bool {
		count, err := f.mng.LoginCount(context.Background())
		return err == nil && count == 1
	}, time.Second, 5*time.Millisecond)

	rr = f.do(testutil.NewRequest(t, http.MethodGet, "/api/login-count"))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestLogin_WithoutPriorStage(t *testing.T) {
	f := newFixture(t)

	rr := f.do(testutil.NewRequest(t, http.MethodPost, "/api/login"))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Empty(t, f.cookie("csrf"), "no session token on a failed stage")
}

func TestAuth_BadCredentials(t *testing.T) {
	f := newFixture(t)

	rr := f.do(testutil.NewRequest(t, http.MethodPost, "/api/login-form"))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/auth",
		map[string]string{"id": "student", "password": "wrong"}))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.False(t, testutil.UnmarshalResponse[successBody](t, rr).Success)
	assert.Equal(t, "REQ1", f.cookie("samlRequest"), "stage-1 artifact untouched by the failure")
	assert.Empty(t, f.cookie("samlResponse"))
}

func TestLogin_CounterDownDoesNotFailClient(t *testing.T) {
	f := newFixture(t)
	f.broker.FailPublish(management.TopicLoginSuccess, errors.New("broker down"))

	f.do(testutil.NewRequest(t, http.MethodPost, "/api/login-form"))
	f.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/auth",
		map[string]string{"id": "student", "password": "secret"}))

	rr := f.do(testutil.NewRequest(t, http.MethodPost, "/api/login"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "CSRF3", f.cookie("csrf"))
}

func TestLogout_ClearsEverything(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	rr := f.do(testutil.NewRequest(t, http.MethodPost, "/api/logout"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, f.cookies, "every cookie cleared on logout")
	assert.Equal(t, 1, f.portal.Logouts())
}

func TestLogout_FailureKeepsCookies(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.portal.LogoutStatus = http.StatusInternalServerError

	rr := f.do(testutil.NewRequest(t, http.MethodPost, "/api/logout"))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "CSRF3", f.cookie("csrf"), "cookies untouched so the client can retry")
}

func TestUserInfo(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	require.NoError(t, f.mng.SetTerm(context.Background(), management.Term{Shtm: "10", Yyyy: "2026"}))

	rr := f.do(testutil.NewRequest(t, http.MethodGet, "/api/user-info"))
	require.Equal(t, http.StatusOK, rr.Code)

	body := testutil.UnmarshalResponse[struct {
		Success  bool               `json:"success"`
		UserInfo portal.TrinityInfo `json:"userInfo"`
	}](t, rr)
	assert.Equal(t, "Kim Student", body.UserInfo.UserNm)
	assert.Equal(t, "10", body.UserInfo.Shtm, "term merged from management")
	assert.Equal(t, "2026", body.UserInfo.Yyyy)
}

func TestUserInfo_NotAuthenticated(t *testing.T) {
	f := newFixture(t)

	rr := f.do(testutil.NewRequest(t, http.MethodGet, "/api/user-info"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUserInfo_TermLookupDegrades(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.broker.FailPublish(management.TopicGetShtmYyyy, errors.New("broker down"))

	rr := f.do(testutil.NewRequest(t, http.MethodGet, "/api/user-info"))
	require.Equal(t, http.StatusOK, rr.Code, "term failure must not fail the profile")

	body := testutil.UnmarshalResponse[struct {
		UserInfo portal.TrinityInfo `json:"userInfo"`
	}](t, rr)
	assert.Equal(t, "Kim Student", body.UserInfo.UserNm)
	assert.Empty(t, body.UserInfo.Shtm)
}

func TestMngFlow(t *testing.T) {
	f := newFixture(t)

	rr := f.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/mng/login",
		map[string]string{"id": "admin", "password": "wrong"}))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, f.cookie("mng_session"))

	rr = f.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/mng/login",
		map[string]string{"id": "admin", "password": "hunter2"}))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotEmpty(t, f.cookie("mng_session"))

	rr = f.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/mng/shtmYyyy",
		management.Term{Shtm: "20", Yyyy: "2026"}))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(testutil.NewRequest(t, http.MethodGet, "/api/mng/shtmYyyy"))
	require.Equal(t, http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[struct {
		Shtm string `json:"shtm"`
		Yyyy string `json:"yyyy"`
	}](t, rr)
	assert.Equal(t, "20", body.Shtm)
	assert.Equal(t, "2026", body.Yyyy)

	rr = f.do(testutil.NewRequest(t, http.MethodPost, "/api/mng/logout"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, f.cookie("mng_session"))

	rr = f.do(testutil.NewRequest(t, http.MethodGet, "/api/mng/shtmYyyy"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "session gone after logout")
}

func TestMngTerm_RequiresSession(t *testing.T) {
	f := newFixture(t)

	rr := f.do(testutil.NewRequest(t, http.MethodGet, "/api/mng/shtmYyyy"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	f.cookies["mng_session"] = &http.Cookie{Name: "mng_session", Value: "forged"}
	rr = f.do(testutil.NewRequest(t, http.MethodGet, "/api/mng/shtmYyyy"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestBoard_RequiresAccessToken(t *testing.T) {
	f := newFixture(t)

	rr := f.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/vl/post",
		board.CreatePostRequest{StdNo: "20230001", Content: "hi"}))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestBoard_Flow(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/vl/post",
		board.CreatePostRequest{StdNo: "20230001", Content: "first post"})
	req.Header.Set("Authorization", "Bearer "+token)
	rr := f.do(req)
	require.Equal(t, http.StatusOK, rr.Code)
	created := testutil.UnmarshalResponse[board.CreatePostResult](t, rr)
	require.True(t, created.Success)

	req = testutil.NewJSONRequest(t, http.MethodPost, "/api/vl/like",
		board.LikePostRequest{ID: created.ID})
	req.Header.Set("Authorization", "Bearer "+token)
	rr = f.do(req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, testutil.UnmarshalResponse[board.LikePostResult](t, rr).Likes)

	req = testutil.NewRequest(t, http.MethodGet, "/api/vl/post?limit=10")
	req.Header.Set("Authorization", "Bearer "+token)
	rr = f.do(req)
	require.Equal(t, http.StatusOK, rr.Code)
	listed := testutil.UnmarshalResponse[board.ListPostsResult](t, rr)
	require.Len(t, listed.Data, 1)
	assert.Equal(t, "first post", listed.Data[0].Content)
	assert.Equal(t, 1, listed.Data[0].Likes)
}
