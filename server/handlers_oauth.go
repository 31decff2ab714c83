package server

import (
	"net/http"
	"time"

	relayerrors "github.com/jrsteele09/go-oauth-relay/internal/errors"
	"github.com/jrsteele09/go-oauth-relay/oauthmodel"
	"github.com/jrsteele09/go-oauth-relay/relay"
	"github.com/rs/zerolog"
)

// StartHandler begins an authorization flow.
// Body: {"clientId": "...", "clientSecret": "..."}
// Success: 200 {"authorizeUrl": "..."} plus the two session cookies.
func (s *Server) StartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		req, err := oauthmodel.DecodeStartRequest(r.Body)
		if err != nil {
			s.failStart(w, r, relay.NewError(relayerrors.ErrInvalidRequest, oauthmodel.ErrNotAnObject.Error(), err))
			return
		}

		authorizeURL, err := s.relay.Start(w, req)
		if err != nil {
			s.failStart(w, r, err)
			return
		}

		s.metrics.flowStarted(relay.Outcome(nil))
		logger.Info().Str("client_id", req.ClientID).Dur("session_ttl", s.relay.Sessions().TTL()).Msg("Authorization flow started")
		writeJSON(w, http.StatusOK, oauthmodel.StartResponse{AuthorizeURL: authorizeURL})
	}
}

// CallbackHandler exchanges the code the provider sent back for tokens.
// Body: {"code": "...", "state": "..."} as found on the redirect URI.
// The provider's status and payload are forwarded unchanged and the session
// cookies are cleared.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		req, err := oauthmodel.DecodeCallbackRequest(r.Body)
		if err != nil {
			s.failCallback(w, r, relay.NewError(relayerrors.ErrInvalidRequest, oauthmodel.ErrNotAnObject.Error(), err))
			return
		}

		result, err := s.relay.Exchange(w, r, req)
		if err != nil {
			s.failCallback(w, r, err)
			return
		}

		if result.IsProviderError() {
			s.metrics.callbackHandled("provider_error")
			logger.Warn().Int("provider_status", result.Status).Msg("Provider rejected the token exchange")
		} else {
			s.metrics.callbackHandled(relay.Outcome(nil))
			event := logger.Info().Int("provider_status", result.Status)
			if summary, ok := result.Summary(time.Now()); ok {
				event = event.Bool("refresh_token", summary.HasRefreshToken())
				if !summary.ExpiresAt.IsZero() {
					event = event.Time("expires_at", summary.ExpiresAt)
				}
			}
			event.Msg("Token exchange completed")
		}

		if !bodyAllowedForStatus(result.Status) {
			// 204 and 304 carry no body, so only the status is forwarded.
			w.WriteHeader(result.Status)
			return
		}

		body, err := result.Payload.MarshalJSON()
		if err != nil {
			s.failCallback(w, r, relay.NewError(relayerrors.ErrInternal, relay.MsgInternal, err))
			return
		}
		writeJSONBytes(w, result.Status, body)
	}
}

func bodyAllowedForStatus(status int) bool {
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}

func (s *Server) failStart(w http.ResponseWriter, r *http.Request, err error) {
	s.metrics.flowStarted(relay.Outcome(err))
	s.writeRelayError(w, r, err)
}

func (s *Server) failCallback(w http.ResponseWriter, r *http.Request, err error) {
	s.metrics.callbackHandled(relay.Outcome(err))
	s.writeRelayError(w, r, err)
}

// writeRelayError logs the full error and sends only its public message.
func (s *Server) writeRelayError(w http.ResponseWriter, r *http.Request, err error) {
	status := relay.HTTPStatus(err)
	event := zerolog.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = zerolog.Ctx(r.Context()).Error()
	}
	event.Err(err).Str("outcome", relay.Outcome(err)).Int("status", status).Msg("Relay request failed")
	writeJSONError(w, relay.PublicMessage(err), status)
}
