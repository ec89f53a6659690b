package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/clinic-chat-api/internal/common"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong-pass", hash))
}

func TestHashPasswordTooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", MaxPasswordLength+1))
	assert.ErrorIs(t, err, common.ErrValidation)

	hash, err := HashPassword(strings.Repeat("a", MaxPasswordLength))
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash(strings.Repeat("a", MaxPasswordLength), hash))
}
