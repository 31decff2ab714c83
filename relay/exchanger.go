package relay

import (
	"crypto/subtle"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	relayerrors "github.com/jrsteele09/go-oauth-relay/internal/errors"
	"github.com/jrsteele09/go-oauth-relay/oauthmodel"
	"github.com/jrsteele09/go-oauth-relay/provider"
)

// Exchange completes a flow. The checks run in order and the first failure
// ends the call:
//
//  1. the provider did not report an authorization error; a denial clears
//     the session only when it carries the session's own state
//  2. code and state are present
//  3. both session cookies are present
//  4. state matches the session state
//  5. the credentials decode and are complete
//
// It then performs the token exchange. Once a session has been found the
// cookies are cleared on every return, so a replayed callback fails at
// step 3. The provider's status and payload are returned as they came,
// including provider-reported errors.
func (s *Service) Exchange(w http.ResponseWriter, r *http.Request, req oauthmodel.CallbackRequest) (*provider.TokenResult, error) {
	stored, found := s.store.Load(r)

	if req.Error != "" {
		if found && stateMatches(req.State, stored.State) {
			s.store.Clear(w)
		}
		return nil, NewError(relayerrors.ErrInvalidRequest, deniedMessage(req), nil)
	}

	if req.Code == "" || req.State == "" {
		return nil, NewError(relayerrors.ErrInvalidRequest, MsgCodeAndStateRequired, nil)
	}

	if !found {
		return nil, NewError(relayerrors.ErrSessionExpired, MsgSessionExpired, nil)
	}
	defer s.store.Clear(w)

	if !stateMatches(req.State, stored.State) {
		return nil, NewError(relayerrors.ErrStateMismatch, MsgInvalidState, nil)
	}

	creds, err := s.store.Decode(stored.Payload)
	if err != nil {
		return nil, NewError(relayerrors.ErrCredentialDecode, MsgCredentialDecode, err)
	}
	if !creds.Complete() {
		return nil, NewError(relayerrors.ErrIncompleteCredentials, MsgIncompleteCredentials, nil)
	}

	result, err := s.tokens.ExchangeCode(r.Context(), provider.CodeExchange{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Code:         req.Code,
		RedirectURI:  s.redirectURI,
	})
	if err != nil {
		return nil, NewError(relayerrors.ErrInternal, MsgExchangeFailed, err)
	}
	return result, nil
}

func stateMatches(got, want string) bool {
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

const maxDescriptionRunes = 200

var errorCodePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

// deniedMessage echoes the provider's error code only when it looks like an
// OAuth error code, and a shortened printable description.
func deniedMessage(req oauthmodel.CallbackRequest) string {
	code := req.Error
	if !errorCodePattern.MatchString(code) {
		code = "unknown_error"
	}
	msg := MsgAuthorizationDenied + ": " + code
	if desc := sanitizeDescription(req.ErrorDescription); desc != "" {
		msg += " - " + desc
	}
	return msg
}

func sanitizeDescription(desc string) string {
	var b strings.Builder
	n := 0
	for _, r := range desc {
		if n == maxDescriptionRunes {
			break
		}
		if !unicode.IsPrint(r) {
			r = ' '
		}
		b.WriteRune(r)
		n++
	}
	return strings.TrimSpace(b.String())
}
