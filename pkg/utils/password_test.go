package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, "secret1", hash)
	assert.True(t, CheckPassword("secret1", hash))
	assert.False(t, CheckPassword("secret2", hash))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)
}

func TestIsPasswordHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"bcrypt hash", string(hash), true},
		{"plaintext", "hunter2", false},
		{"empty", "", false},
		{"right prefix wrong length", "$2a$10$short", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPasswordHash(tt.in))
		})
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
