package oauth2_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-oauth-relay/oauth2"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestSummarize(t *testing.T) {
	t.Run("expires_in as number", func(t *testing.T) {
		s, ok := oauth2.Summarize([]byte(`{"access_token":"T","refresh_token":"R","expires_in":3600}`), now)
		require.True(t, ok)
		require.Equal(t, "T", s.AccessToken)
		require.True(t, s.HasRefreshToken())
		require.Equal(t, time.Hour, s.ExpiresIn)
		require.Equal(t, now.Add(time.Hour), s.ExpiresAt)
	})

	t.Run("expires_in as string", func(t *testing.T) {
		s, ok := oauth2.Summarize([]byte(`{"access_token":"T","expires_in":"60"}`), now)
		require.True(t, ok)
		require.Equal(t, time.Minute, s.ExpiresIn)
		require.False(t, s.HasRefreshToken())
	})

	t.Run("no access token", func(t *testing.T) {
		_, ok := oauth2.Summarize([]byte(`{"error":"invalid_grant"}`), now)
		require.False(t, ok)
	})

	t.Run("not json", func(t *testing.T) {
		_, ok := oauth2.Summarize([]byte(`server error`), now)
		require.False(t, ok)
	})

	t.Run("expiry from jwt access token", func(t *testing.T) {
		exp := now.Add(2 * time.Hour)
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "user-1",
			"exp": exp.Unix(),
		}).SignedString([]byte("1234"))
		require.NoError(t, err)

		s, ok := oauth2.Summarize([]byte(`{"access_token":"`+token+`"}`), now)
		require.True(t, ok)
		require.True(t, exp.Equal(s.ExpiresAt))
		require.Equal(t, 2*time.Hour, s.ExpiresIn)
	})

	t.Run("opaque token without expires_in", func(t *testing.T) {
		s, ok := oauth2.Summarize([]byte(`{"access_token":"opaque"}`), now)
		require.True(t, ok)
		require.True(t, s.ExpiresAt.IsZero())
		require.Zero(t, s.ExpiresIn)
	})
}
