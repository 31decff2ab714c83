// Package relay drives the OAuth 2.0 authorization-code flow on behalf of a
// caller that supplies its own client credentials.
//
// Start issues a random state and anchors it, with the credentials, in two
// short-lived cookies. Exchange checks the state the provider sent back
// against those cookies, trades the code for tokens and clears the cookies so
// the session can be used once only. No flow state is kept in server memory.
package relay

import (
	"fmt"
	"time"

	"github.com/jrsteele09/go-oauth-relay/internal/config"
	"github.com/jrsteele09/go-oauth-relay/provider"
	xoauth2 "golang.org/x/oauth2"
)

// Config is the part of the application configuration the relay reads.
type Config interface {
	config.OAuthConfig
	config.SecurityConfig
	IsProduction() bool
}

// Service implements the start and callback operations.
type Service struct {
	endpoint    xoauth2.Endpoint
	redirectURI string
	states      StateGenerator
	store       *CookieStore
	tokens      provider.TokenExchanger
	now         func() time.Time
}

type Option func(*Service)

// WithStateGenerator replaces the crypto/rand state generator.
func WithStateGenerator(g StateGenerator) Option {
	return func(s *Service) { s.states = g }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New builds the relay. When a session sealing key is configured the
// credential cookie is encrypted, otherwise it is base64 encoded JSON.
func New(cfg Config, tokens provider.TokenExchanger, opts ...Option) (*Service, error) {
	if tokens == nil {
		return nil, fmt.Errorf("[relay New] token exchanger is required")
	}

	var codec CredentialCodec = Base64JSONCodec{}
	if key := cfg.GetSessionSealingKey(); key != "" {
		sealed, err := NewSealedCodec(key)
		if err != nil {
			return nil, fmt.Errorf("[relay New] %w", err)
		}
		codec = sealed
	}

	s := &Service{
		endpoint:    xoauth2.Endpoint{AuthURL: cfg.GetAuthorizeURL()},
		redirectURI: cfg.GetRedirectURI(),
		states:      NewRandomState(cfg.GetStateLength()),
		store:       NewCookieStore(cfg.GetSessionCookiePrefix(), cfg.GetSessionTTL(), cfg.IsProduction(), codec),
		tokens:      tokens,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sessions exposes the cookie store, mainly for cookie names.
func (s *Service) Sessions() *CookieStore {
	return s.store
}

// RedirectURI is the callback URL used by both the authorize URL and the token exchange.
func (s *Service) RedirectURI() string {
	return s.redirectURI
}
