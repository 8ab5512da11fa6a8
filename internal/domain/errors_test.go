package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("reconcile: %w", NotFound("user not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrMalformedEvent))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "user not found", MessageOf(err, "fallback"))
}

func TestInternalErrorHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Internal("create user failed", cause)

	assert.True(t, errors.Is(err, ErrInternal))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "Internal server error", MessageOf(err, "Internal server error"))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestUserTypeDefault(t *testing.T) {
	assert.Equal(t, UserTypeUser, UserType("").OrDefault())
	assert.Equal(t, UserTypeAgent, UserTypeAgent.OrDefault())
	assert.True(t, UserTypeAdmin.Valid())
	assert.False(t, UserType("OWNER").Valid())
}
