package utils

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "civiq/pkg/errors"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("roads-2024")
	require.NoError(t, err)
	assert.NotEqual(t, "roads-2024", hash)

	assert.NoError(t, CheckPassword(hash, "roads-2024"))
	assert.ErrorIs(t, CheckPassword(hash, "roads-2025"), apperrors.ErrInvalidCredentials)
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", MaxPasswordBytes+1))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusFor(err))
}

func TestCheckPassword_CorruptHash(t *testing.T) {
	err := CheckPassword("not-a-bcrypt-hash", "roads-2024")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
}
