package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiq/internal/session"
	"civiq/pkg/constants"
	apperrors "civiq/pkg/errors"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	s, err := session.New("Anita", constants.RoleDepartment, "Water Supply")
	require.NoError(t, err)

	token, issued, err := svc.GenerateToken(s)
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, claims.ID)

	restored, err := claims.Session()
	require.NoError(t, err)
	assert.Equal(t, s, restored)
}

func TestJWTService_Rejects(t *testing.T) {
	s, err := session.New("Ravi", constants.RoleDriver, "")
	require.NoError(t, err)

	expired := &jwtService{SecretKey: "secret", SessionTTL: time.Minute, now: func() time.Time {
		return time.Now().Add(-time.Hour)
	}}
	token, _, err := expired.GenerateToken(s)
	require.NoError(t, err)
	_, err = expired.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)

	good := NewJWTService("secret", time.Hour)
	token, _, err = good.GenerateToken(s)
	require.NoError(t, err)
	_, err = NewJWTService("other", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = good.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
