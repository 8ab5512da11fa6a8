package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWTer() *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "estate-api", TTL: 7 * 24 * time.Hour}
}

func TestIssueAndParse(t *testing.T) {
	j := newJWTer()
	tok, err := j.Issue("u1", "ada@x.com", "USER")
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UID)
	assert.Equal(t, "ada@x.com", c.Email)
	assert.Equal(t, "USER", c.Role)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), c.ExpiresAt.Time, 5*time.Second)
}

func TestParseRejectsExpired(t *testing.T) {
	j := newJWTer()
	tok, err := j.IssueAt(time.Now().Add(-8*24*time.Hour), "u1", "ada@x.com", "USER")
	require.NoError(t, err)

	_, err = j.Parse(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseRejectsOtherSecretAndIssuer(t *testing.T) {
	tok, err := newJWTer().Issue("u1", "ada@x.com", "USER")
	require.NoError(t, err)

	other := newJWTer()
	other.Secret = []byte("another")
	_, err = other.Parse(tok)
	assert.Error(t, err)

	other = newJWTer()
	other.Issuer = "someone-else"
	_, err = other.Parse(tok)
	assert.Error(t, err)
}
