package relay

import (
	"fmt"
	"math"
	"net/http"
	"time"
)

// CookieStore keeps an AuthorizationSession in two expiring client cookies:
// <prefix>_state holds the state as issued, <prefix>_client the encoded
// credentials. The browser enforces the TTL through MaxAge.
type CookieStore struct {
	prefix string
	ttl    time.Duration
	secure bool
	codec  CredentialCodec
}

func NewCookieStore(prefix string, ttl time.Duration, secure bool, codec CredentialCodec) *CookieStore {
	if codec == nil {
		codec = Base64JSONCodec{}
	}
	return &CookieStore{prefix: prefix, ttl: ttl, secure: secure, codec: codec}
}

func (c *CookieStore) StateCookieName() string {
	return c.prefix + "_state"
}

func (c *CookieStore) ClientCookieName() string {
	return c.prefix + "_client"
}

// TTL returns how long a session lives.
func (c *CookieStore) TTL() time.Duration {
	return c.ttl
}

// Save writes both session cookies, replacing any earlier flow.
func (c *CookieStore) Save(w http.ResponseWriter, session AuthorizationSession) error {
	payload, err := c.codec.Encode(session.Credentials)
	if err != nil {
		return fmt.Errorf("[relay CookieStore Save] %w", err)
	}
	expires := session.ExpiresAt(c.ttl)
	maxAge := c.maxAge()
	http.SetCookie(w, c.cookie(c.StateCookieName(), session.State, maxAge, expires))
	http.SetCookie(w, c.cookie(c.ClientCookieName(), payload, maxAge, expires))
	return nil
}

// maxAge is the TTL rounded up to whole seconds. A MaxAge of 0 would drop
// the attribute, so it is at least 1.
func (c *CookieStore) maxAge() int {
	seconds := int(math.Ceil(c.ttl.Seconds()))
	return max(seconds, 1)
}

// Load reads both cookies. It reports false unless both are present and non-empty.
func (c *CookieStore) Load(r *http.Request) (storedSession, bool) {
	state, err := r.Cookie(c.StateCookieName())
	if err != nil || state.Value == "" {
		return storedSession{}, false
	}
	client, err := r.Cookie(c.ClientCookieName())
	if err != nil || client.Value == "" {
		return storedSession{}, false
	}
	return storedSession{State: state.Value, Payload: client.Value}, true
}

// Decode recovers the credentials from a loaded payload.
func (c *CookieStore) Decode(payload string) (Credentials, error) {
	return c.codec.Decode(payload)
}

// Clear expires both cookies.
func (c *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(c.StateCookieName(), "", -1, time.Unix(0, 0)))
	http.SetCookie(w, c.cookie(c.ClientCookieName(), "", -1, time.Unix(0, 0)))
}

func (c *CookieStore) cookie(name, value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
		Expires:  expires,
	}
}
