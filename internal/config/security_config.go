package config

import "time"

const (
	sessionTTLVar        = "SESSION_TTL"
	sessionPrefixVar     = "SESSION_COOKIE_PREFIX"
	sessionSealingKeyVar = "SESSION_SEALING_KEY"
)

type SecurityConfig interface {
	GetSessionTTL() time.Duration
	GetSessionCookiePrefix() string
	GetSessionSealingKey() string
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetSessionTTL() time.Duration {
	return GetEnvDuration(sessionTTLVar, 300*time.Second)
}

func (Security) GetSessionCookiePrefix() string {
	return GetEnv(sessionPrefixVar, "bling_oauth")
}

// GetSessionSealingKey returns the secret used to encrypt the credential
// cookie. Empty means the credentials are only base64 encoded.
func (Security) GetSessionSealingKey() string {
	return GetEnv(sessionSealingKeyVar, "")
}
