package oauthmodel

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jrsteele09/go-oauth-relay/internal/utils"
	"github.com/jrsteele09/go-oauth-relay/oauth2"
)

// maxRequestBodyBytes bounds the JSON bodies accepted by the relay endpoints.
const maxRequestBodyBytes = 64 << 10

// StartRequest holds the body of the start endpoint.
// Sent by the form UI before it redirects the browser to the provider.
type StartRequest struct {
	// ClientID identifies the caller's application at the provider.
	// Required: Yes (non-empty after trimming)
	// Example: "3f2a9c..."
	ClientID string

	// ClientSecret is the application's secret at the provider.
	// Required: Yes (non-empty after trimming)
	// Security: Never log or expose this value. It travels to the callback
	// inside the client session cookie.
	ClientSecret string
}

// StartResponse is returned by the start endpoint on success.
type StartResponse struct {
	// AuthorizeURL is where the caller must send the browser next.
	// Example: "https://bling.com.br/Api/v3/oauth/authorize?client_id=abc&redirect_uri=...&response_type=code&state=..."
	AuthorizeURL string `json:"authorizeUrl"`
}

// CallbackRequest holds the body of the callback endpoint: the query
// parameters the provider appended to the redirect URI.
type CallbackRequest struct {
	// Code is the single-use authorization code.
	// Required: Yes
	Code string

	// State must echo the value issued by start.
	// Required: Yes
	State string

	// Error and ErrorDescription are set instead of Code when the user or the
	// provider denied the authorization.
	Error            string
	ErrorDescription string
}

// ErrorResponse is the body of every relay-generated failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DecodeStartRequest reads a StartRequest from a JSON object. Fields with a
// non-string value are treated as missing; values are trimmed.
func DecodeStartRequest(r io.Reader) (StartRequest, error) {
	fields, err := decodeObject(r)
	if err != nil {
		return StartRequest{}, err
	}
	return StartRequest{
		ClientID:     utils.TrimmedString(fields["clientId"]),
		ClientSecret: utils.TrimmedString(fields["clientSecret"]),
	}, nil
}

// DecodeCallbackRequest reads a CallbackRequest from a JSON object.
// Code and state are used as sent, they are opaque values.
func DecodeCallbackRequest(r io.Reader) (CallbackRequest, error) {
	fields, err := decodeObject(r)
	if err != nil {
		return CallbackRequest{}, err
	}
	return CallbackRequest{
		Code:             utils.StringValue(fields[oauth2.ParamCode]),
		State:            utils.StringValue(fields[oauth2.ParamState]),
		Error:            utils.StringValue(fields[oauth2.ParamError]),
		ErrorDescription: utils.StringValue(fields[oauth2.ParamErrorDescription]),
	}, nil
}

func decodeObject(r io.Reader) (map[string]any, error) {
	var fields map[string]any
	if err := json.NewDecoder(io.LimitReader(r, maxRequestBodyBytes)).Decode(&fields); err != nil {
		return nil, fmt.Errorf("[oauthmodel decodeObject] %w", err)
	}
	if fields == nil {
		return nil, ErrNotAnObject
	}
	return fields, nil
}
