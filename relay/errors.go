package relay

import (
	"net/http"

	relayerrors "github.com/jrsteele09/go-oauth-relay/internal/errors"
)

// Messages returned to the caller in {"error": ...} bodies.
const (
	MsgCredentialsRequired   = "clientId and clientSecret are required"
	MsgCodeAndStateRequired  = "code and state are required"
	MsgAuthorizationDenied   = "authorization denied"
	MsgSessionExpired        = "session expired, start the flow again"
	MsgInvalidState          = "invalid state"
	MsgCredentialDecode      = "could not recover the session credentials"
	MsgIncompleteCredentials = "incomplete credentials, restart the flow"
	MsgStartFailed           = "could not start the authorization flow"
	MsgExchangeFailed        = "token exchange failed"
	MsgInternal              = "internal error"
)

// Error is a failure of a relay operation. Kind is one of the sentinels in
// internal/errors, Message is safe to return to the caller and Err is the
// underlying cause, which is only logged.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func NewError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// HTTPStatus maps an error to the status written by the handlers.
func HTTPStatus(err error) int {
	var relayErr *Error
	if !relayerrors.As(err, &relayErr) || relayerrors.Is(relayErr.Kind, relayerrors.ErrInternal) {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// PublicMessage returns the caller-facing message of err.
func PublicMessage(err error) string {
	var relayErr *Error
	if relayerrors.As(err, &relayErr) {
		return relayErr.Message
	}
	return MsgInternal
}

// Outcome names the kind of err for logs and metrics labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case relayerrors.Is(err, relayerrors.ErrInvalidRequest):
		return "invalid_request"
	case relayerrors.Is(err, relayerrors.ErrSessionExpired):
		return "session_expired"
	case relayerrors.Is(err, relayerrors.ErrStateMismatch):
		return "state_mismatch"
	case relayerrors.Is(err, relayerrors.ErrCredentialDecode):
		return "credential_decode_error"
	case relayerrors.Is(err, relayerrors.ErrIncompleteCredentials):
		return "incomplete_credentials"
	default:
		return "internal_error"
	}
}
