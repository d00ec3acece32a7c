package utils

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/require"
)

func TestJwtRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.JwtGenerate("user-1", "admin")
	require.NoError(t, err)

	claim, err := issuer.JwtValidate(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claim.ID)
	require.Equal(t, "admin", claim.Role)
}

func TestJwtValidate_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	otherSecret, err := NewTokenIssuer("other-secret", time.Hour).JwtGenerate("user-1", "user")
	require.NoError(t, err)
	expired, err := NewTokenIssuer("test-secret", -time.Minute).JwtGenerate("user-1", "user")
	require.NoError(t, err)
	noID, err := issuer.JwtGenerate("", "user")
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &JwtCustomClaim{ID: "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"other secret": otherSecret,
		"expired":      expired,
		"empty id":     noID,
		"alg none":     unsigned,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.JwtValidate(token)
			require.Error(t, err)
		})
	}
}
