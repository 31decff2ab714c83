package relay

import (
	"net/http"
	"strings"

	relayerrors "github.com/jrsteele09/go-oauth-relay/internal/errors"
	"github.com/jrsteele09/go-oauth-relay/oauthmodel"
	xoauth2 "golang.org/x/oauth2"
)

// Start begins a flow: it validates the credentials, issues a new state,
// stores the session cookies on w and returns the provider authorize URL.
// The caller performs the browser redirect.
func (s *Service) Start(w http.ResponseWriter, req oauthmodel.StartRequest) (string, error) {
	clientID := strings.TrimSpace(req.ClientID)
	clientSecret := strings.TrimSpace(req.ClientSecret)
	if clientID == "" || clientSecret == "" {
		return "", NewError(relayerrors.ErrInvalidRequest, MsgCredentialsRequired, nil)
	}

	state, err := s.states.Generate()
	if err != nil {
		return "", NewError(relayerrors.ErrInternal, MsgStartFailed, err)
	}

	session := AuthorizationSession{
		State: state,
		Credentials: Credentials{
			ClientID:     clientID,
			ClientSecret: clientSecret,
		},
		CreatedAt: s.now(),
	}
	if err := s.store.Save(w, session); err != nil {
		return "", NewError(relayerrors.ErrInternal, MsgStartFailed, err)
	}

	return s.AuthorizeURL(clientID, state), nil
}

// AuthorizeURL builds the provider authorize URL with response_type=code,
// client_id, redirect_uri and state.
func (s *Service) AuthorizeURL(clientID, state string) string {
	cfg := xoauth2.Config{
		ClientID:    clientID,
		Endpoint:    s.endpoint,
		RedirectURL: s.redirectURI,
	}
	return cfg.AuthCodeURL(state)
}
