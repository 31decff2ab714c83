package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/jrsteele09/go-oauth-relay/internal/config"
	"github.com/jrsteele09/go-oauth-relay/provider"
	"github.com/jrsteele09/go-oauth-relay/relay"
	"github.com/jrsteele09/go-oauth-relay/server"
	"github.com/stretchr/testify/require"
)

const (
	testAuthorizeURL = "https://provider.example.com/Api/v3/oauth/authorize"
	testRedirectURI  = "https://relay.example.com/oauth/redirect"
)

// providerStub plays the provider token endpoint.
type providerStub struct {
	mu          sync.Mutex
	status      int
	contentType string
	body        string
	calls       int
	lastForm    url.Values
	lastAuth    string
}

func (p *providerStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	_ = r.ParseForm()
	p.lastForm = r.PostForm
	p.lastAuth = r.Header.Get("Authorization")
	if p.contentType != "" {
		w.Header().Set("Content-Type", p.contentType)
	}
	w.WriteHeader(p.status)
	_, _ = io.WriteString(w, p.body)
}

func (p *providerStub) respond(status int, contentType, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status, p.contentType, p.body = status, contentType, body
}

// seen returns the call count and the last request's form and Authorization header.
func (p *providerStub) seen() (int, url.Values, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls, p.lastForm, p.lastAuth
}

type testFixture struct {
	provider *providerStub
	relay    *httptest.Server
	client   *http.Client
}

func setupTestFixture(t *testing.T, opts ...server.Option) *testFixture {
	t.Helper()

	stub := &providerStub{
		status:      http.StatusOK,
		contentType: "application/json",
		body:        `{"access_token":"T","expires_in":3600}`,
	}
	providerSrv := httptest.NewServer(stub)
	t.Cleanup(providerSrv.Close)

	t.Setenv("PROVIDER_AUTHORIZE_URL", testAuthorizeURL)
	t.Setenv("PROVIDER_TOKEN_URL", providerSrv.URL)
	t.Setenv("BLING_REDIRECT_URI", testRedirectURI)

	s, err := server.New(config.New(), opts...)
	require.NoError(t, err)
	relaySrv := httptest.NewServer(s)
	t.Cleanup(relaySrv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testFixture{
		provider: stub,
		relay:    relaySrv,
		client:   &http.Client{Jar: jar},
	}
}

func (f *testFixture) post(t *testing.T, path, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := f.client.Post(f.relay.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

// start runs the start endpoint and returns the issued authorize URL.
func (f *testFixture) start(t *testing.T) *url.URL {
	t.Helper()
	resp, body := f.post(t, server.RouteOAuthStart, `{"clientId":"abc","clientSecret":"xyz"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out struct {
		AuthorizeURL string `json:"authorizeUrl"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	u, err := url.Parse(out.AuthorizeURL)
	require.NoError(t, err)
	return u
}

func callbackBody(code, state string) string {
	b, _ := json.Marshal(map[string]string{"code": code, "state": state})
	return string(b)
}

func requireError(t *testing.T, body []byte, want string) {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	require.Equal(t, want, out["error"])
}

func TestStartEndpoint(t *testing.T) {
	t.Run("returns the authorize url", func(t *testing.T) {
		f := setupTestFixture(t)
		resp, body := f.post(t, server.RouteOAuthStart, `{"clientId":"abc","clientSecret":"xyz"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
		require.NotEmpty(t, resp.Header.Get("X-Request-ID"))

		var out map[string]string
		require.NoError(t, json.Unmarshal(body, &out))
		require.True(t, strings.HasPrefix(out["authorizeUrl"], testAuthorizeURL))
		require.Contains(t, out["authorizeUrl"], "client_id=abc")

		names := map[string]bool{}
		for _, c := range resp.Cookies() {
			names[c.Name] = true
			require.True(t, c.HttpOnly)
		}
		require.True(t, names["bling_oauth_state"])
		require.True(t, names["bling_oauth_client"])
	})

	t.Run("missing credentials", func(t *testing.T) {
		f := setupTestFixture(t)
		resp, body := f.post(t, server.RouteOAuthStart, `{"clientId":"abc","clientSecret":"   "}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		requireError(t, body, relay.MsgCredentialsRequired)
		require.Empty(t, resp.Cookies())
	})

	t.Run("malformed body", func(t *testing.T) {
		f := setupTestFixture(t)
		resp, body := f.post(t, server.RouteOAuthStart, `clientId=abc`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		requireError(t, body, "request body must be a JSON object")
	})

	t.Run("wrong method", func(t *testing.T) {
		f := setupTestFixture(t)
		resp, err := f.client.Get(f.relay.URL + server.RouteOAuthStart)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestCallbackEndpoint(t *testing.T) {
	t.Run("forwards a successful token response verbatim", func(t *testing.T) {
		f := setupTestFixture(t)
		u := f.start(t)

		resp, body := f.post(t, server.RouteOAuthCallback, callbackBody("C1", u.Query().Get("state")))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, `{"access_token":"T","expires_in":3600}`, string(body))

		calls, form, auth := f.provider.seen()
		require.Equal(t, 1, calls)
		require.Equal(t, "C1", form.Get("code"))
		require.Equal(t, "authorization_code", form.Get("grant_type"))
		require.Equal(t, u.Query().Get("redirect_uri"), form.Get("redirect_uri"))

		wantReq, err := http.NewRequest(http.MethodPost, "/", nil)
		require.NoError(t, err)
		wantReq.SetBasicAuth("abc", "xyz")
		require.Equal(t, wantReq.Header.Get("Authorization"), auth)
	})

	t.Run("forwards a non-json provider error as raw", func(t *testing.T) {
		f := setupTestFixture(t)
		f.provider.respond(http.StatusBadGateway, "text/plain", "server error")
		u := f.start(t)

		resp, body := f.post(t, server.RouteOAuthCallback, callbackBody("C1", u.Query().Get("state")))
		require.Equal(t, http.StatusBadGateway, resp.StatusCode)
		require.JSONEq(t, `{"raw":"server error"}`, string(body))
	})

	t.Run("forwards a json provider error", func(t *testing.T) {
		f := setupTestFixture(t)
		f.provider.respond(http.StatusBadRequest, "application/json", `{"error":{"type":"invalid_grant"}}`)
		u := f.start(t)

		resp, body := f.post(t, server.RouteOAuthCallback, callbackBody("C1", u.Query().Get("state")))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, `{"error":{"type":"invalid_grant"}}`, string(body))
	})

	t.Run("forwards a bodyless status without a body", func(t *testing.T) {
		f := setupTestFixture(t)
		f.provider.respond(http.StatusNoContent, "", "")
		u := f.start(t)

		resp, body := f.post(t, server.RouteOAuthCallback, callbackBody("C1", u.Query().Get("state")))
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		require.Empty(t, body)
		require.Empty(t, resp.Header.Get("Content-Type"))
	})

	t.Run("denial without the session state leaves the flow usable", func(t *testing.T) {
		f := setupTestFixture(t)
		state := f.start(t).Query().Get("state")

		resp, body := f.post(t, server.RouteOAuthCallback, `{"error":"x"}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		requireError(t, body, "authorization denied: x")

		resp, body = f.post(t, server.RouteOAuthCallback, callbackBody("C1", state))
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	})

	t.Run("denial with the session state ends the flow", func(t *testing.T) {
		f := setupTestFixture(t)
		state := f.start(t).Query().Get("state")

		resp, _ := f.post(t, server.RouteOAuthCallback, `{"error":"access_denied","state":"`+state+`"}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, body := f.post(t, server.RouteOAuthCallback, callbackBody("C1", state))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		requireError(t, body, relay.MsgSessionExpired)
	})

	t.Run("mismatched state", func(t *testing.T) {
		f := setupTestFixture(t)
		f.start(t)

		resp, body := f.post(t, server.RouteOAuthCallback, callbackBody("C1", "mismatched"))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		requireError(t, body, relay.MsgInvalidState)
		calls, _, _ := f.provider.seen()
		require.Zero(t, calls)
	})

	t.Run("replay is rejected", func(t *testing.T) {
		f := setupTestFixture(t)
		state := f.start(t).Query().Get("state")

		resp, _ := f.post(t, server.RouteOAuthCallback, callbackBody("C1", state))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, body := f.post(t, server.RouteOAuthCallback, callbackBody("C1", state))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		requireError(t, body, relay.MsgSessionExpired)
		calls, _, _ := f.provider.seen()
		require.Equal(t, 1, calls)
	})

	t.Run("no session", func(t *testing.T) {
		f := setupTestFixture(t)
		resp, body := f.post(t, server.RouteOAuthCallback, callbackBody("C1", "whatever"))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		requireError(t, body, relay.MsgSessionExpired)
	})

	t.Run("missing code", func(t *testing.T) {
		f := setupTestFixture(t)
		state := f.start(t).Query().Get("state")
		resp, body := f.post(t, server.RouteOAuthCallback, `{"state":"`+state+`"}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		requireError(t, body, relay.MsgCodeAndStateRequired)
	})
}

// failingExchanger fails every exchange at the transport level.
type failingExchanger struct{}

func (failingExchanger) ExchangeCode(context.Context, provider.CodeExchange) (*provider.TokenResult, error) {
	return nil, io.ErrUnexpectedEOF
}

// panickingExchanger panics, standing in for any handler bug.
type panickingExchanger struct{}

func (panickingExchanger) ExchangeCode(context.Context, provider.CodeExchange) (*provider.TokenResult, error) {
	panic("boom")
}

func TestCallbackEndpoint_Failures(t *testing.T) {
	t.Run("transport failure is a 500", func(t *testing.T) {
		f := setupTestFixture(t, server.WithTokenExchanger(failingExchanger{}))
		state := f.start(t).Query().Get("state")

		resp, body := f.post(t, server.RouteOAuthCallback, callbackBody("C1", state))
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		requireError(t, body, relay.MsgExchangeFailed)

		// the session is gone after the failure
		resp, body = f.post(t, server.RouteOAuthCallback, callbackBody("C1", state))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		requireError(t, body, relay.MsgSessionExpired)
	})

	t.Run("panic is recovered", func(t *testing.T) {
		f := setupTestFixture(t, server.WithTokenExchanger(panickingExchanger{}))
		state := f.start(t).Query().Get("state")

		resp, body := f.post(t, server.RouteOAuthCallback, callbackBody("C1", state))
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		requireError(t, body, relay.MsgInternal)
	})
}

func TestOperationalEndpoints(t *testing.T) {
	f := setupTestFixture(t)
	state := f.start(t).Query().Get("state")
	f.post(t, server.RouteOAuthCallback, callbackBody("C1", state))
	f.post(t, server.RouteOAuthCallback, callbackBody("C1", state))

	resp, err := f.client.Get(f.relay.URL + server.RouteHealth)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = f.client.Get(f.relay.URL + server.RouteMetrics)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	metrics := string(b)
	require.Contains(t, metrics, `oauth_relay_flows_started_total{outcome="success"} 1`)
	require.Contains(t, metrics, `oauth_relay_callbacks_total{outcome="success"} 1`)
	require.Contains(t, metrics, `oauth_relay_callbacks_total{outcome="session_expired"} 1`)
	require.Contains(t, metrics, `oauth_relay_provider_exchange_duration_seconds_count{status="200"} 1`)
}

func TestCors(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://other.example.com")
	f := setupTestFixture(t)

	req, err := http.NewRequest(http.MethodOptions, f.relay.URL+server.RouteOAuthStart, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	resp, err := f.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))

	req.Header.Set("Origin", "https://evil.example.com")
	resp, err = f.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
