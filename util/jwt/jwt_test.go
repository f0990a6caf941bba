package jwt_test

import (
	"testing"
	"time"

	jwtutil "hotelbooking/util/jwt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestIssue(t *testing.T) {
	tok, err := jwtutil.Issue("s3cret", "front-desk", jwtutil.RoleAdmin, time.Hour)
	require.NoError(t, err)

	parsed, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) { return []byte("s3cret"), nil },
		jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	require.Equal(t, "front-desk", claims["sub"])
	require.Equal(t, "admin", claims["role"])

	_, err = jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) { return []byte("other"), nil })
	require.Error(t, err)
}

func TestIssue_Expired(t *testing.T) {
	tok, err := jwtutil.Issue("s3cret", "x", jwtutil.RoleAdmin, -time.Minute)
	require.NoError(t, err)
	_, err = jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) { return []byte("s3cret"), nil })
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestIssue_EmptySecret(t *testing.T) {
	_, err := jwtutil.Issue("", "x", jwtutil.RoleAdmin, time.Hour)
	require.Error(t, err)
}
