package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestIssueParseRoundtrip(t *testing.T) {
	tok, err := Issue(secret, "halim", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	sub, err := ParseSubject(tok, secret)
	require.NoError(t, err)
	require.Equal(t, "halim", sub)
}

func TestParseExpired(t *testing.T) {
	tok, err := Issue(secret, "halim", -time.Minute)
	require.NoError(t, err)

	_, err = ParseSubject(tok, secret)
	require.Error(t, err)
}

func TestParseWrongSecret(t *testing.T) {
	tok, err := Issue(secret, "halim", time.Hour)
	require.NoError(t, err)

	_, err = ParseSubject(tok, "other-secret")
	require.Error(t, err)
}

func TestParseGarbage(t *testing.T) {
	_, err := ParseSubject("not.a.token", secret)
	require.Error(t, err)

	_, err = ParseSubject("", secret)
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestFromAuthHeader(t *testing.T) {
	tok, ok := FromAuthHeader("Bearer abc.def.ghi")
	require.True(t, ok)
	require.Equal(t, "abc.def.ghi", tok)

	// scheme is case-insensitive
	tok, ok = FromAuthHeader("bearer abc")
	require.True(t, ok)
	require.Equal(t, "abc", tok)

	_, ok = FromAuthHeader("")
	require.False(t, ok)

	_, ok = FromAuthHeader("Basic dXNlcjpwdw==")
	require.False(t, ok)

	_, ok = FromAuthHeader("Bearer ")
	require.False(t, ok)
}
