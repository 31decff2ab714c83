package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	relayerrors "github.com/jrsteele09/go-oauth-relay/internal/errors"
	"github.com/jrsteele09/go-oauth-relay/oauth2"
)

// maxResponseBytes bounds how much of a token response is read.
const maxResponseBytes = 1 << 20

// CodeExchange is everything the token endpoint needs for an authorization_code grant.
type CodeExchange struct {
	ClientID     string
	ClientSecret string
	Code         string
	// RedirectURI must be byte-identical to the one sent in the authorize URL.
	RedirectURI string
}

// TokenExchanger trades an authorization code for tokens.
type TokenExchanger interface {
	ExchangeCode(ctx context.Context, req CodeExchange) (*TokenResult, error)
}

// TokenResult is the provider's answer, status included. A non-2xx status is
// a provider-reported error and is still a TokenResult, not a Go error.
type TokenResult struct {
	Status      int
	ContentType string
	Payload     Payload
}

// IsProviderError reports whether the provider rejected the exchange.
func (r *TokenResult) IsProviderError() bool {
	return r.Status < 200 || r.Status > 299
}

// Summary extracts the token fields from a structured payload.
func (r *TokenResult) Summary(now time.Time) (oauth2.TokenSummary, bool) {
	structured, ok := r.Payload.(StructuredPayload)
	if !ok {
		return oauth2.TokenSummary{}, false
	}
	return oauth2.Summarize(structured.Body, now)
}

// Client calls the provider's token endpoint. It makes exactly one request
// per exchange and never retries.
type Client struct {
	tokenURL   string
	httpClient *http.Client
}

var _ TokenExchanger = (*Client)(nil)

// NewClient creates a token client. A nil httpClient gets a client with timeout.
func NewClient(tokenURL string, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{tokenURL: tokenURL, httpClient: httpClient}
}

// ExchangeCode posts the authorization_code grant. The client credentials go
// in a Basic auth header, colon-joined and base64 encoded without escaping.
func (c *Client) ExchangeCode(ctx context.Context, req CodeExchange) (*TokenResult, error) {
	form := url.Values{}
	form.Set(oauth2.ParamGrantType, string(oauth2.AuthorizationCodeGrant))
	form.Set(oauth2.ParamCode, req.Code)
	form.Set(oauth2.ParamRedirectURI, req.RedirectURI)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, relayerrors.Wrapf(relayerrors.ErrInternal, "[provider ExchangeCode] building request: %v", err)
	}
	httpReq.SetBasicAuth(req.ClientID, req.ClientSecret)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(oauth2.HeaderEnableJWT, "1")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("[provider ExchangeCode] %w: %w", relayerrors.ErrInternal, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("[provider ExchangeCode] reading response: %w: %w", relayerrors.ErrInternal, err)
	}

	contentType := resp.Header.Get("Content-Type")
	return &TokenResult{
		Status:      resp.StatusCode,
		ContentType: contentType,
		Payload:     ParsePayload(contentType, body),
	}, nil
}
