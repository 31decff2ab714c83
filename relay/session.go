package relay

import "time"

// Credentials are the caller's application credentials at the provider.
// They ride along in the client cookie because the server keeps no state
// between start and callback.
type Credentials struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

// Complete reports whether both fields are set.
func (c Credentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// AuthorizationSession is one in-flight flow. It is written once by Start,
// read once by Exchange and lapses by itself after the session TTL.
type AuthorizationSession struct {
	State       string
	Credentials Credentials
	CreatedAt   time.Time
}

// ExpiresAt returns when the session cookies stop being sent.
func (s AuthorizationSession) ExpiresAt(ttl time.Duration) time.Time {
	return s.CreatedAt.Add(ttl)
}

// storedSession is what a callback request carries back: the raw state and
// the still encoded credential payload.
type storedSession struct {
	State   string
	Payload string
}
