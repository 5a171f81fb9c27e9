package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestTokenRoundTrip(t *testing.T) {
	Init()

	memberID, token, err := NewGuestToken()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, memberID, claims.MemberID)
	assert.False(t, claims.Admin)
}

func TestAdminClaimCarries(t *testing.T) {
	Init()

	token, err := CreateToken("boss", true)
	require.NoError(t, err)

	claims, err := Authenticate(token)
	require.NoError(t, err)
	assert.True(t, claims.Admin)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	Init()
	_, err := Authenticate("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	encoded, err := HashPassword("open-sesame")
	require.NoError(t, err)

	ok, err := VerifyPassword("open-sesame", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", encoded)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPassword("x", "$argon2id$nonsense")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestVerifyAdminPasswordDeniesWhenUnconfigured(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD_HASH", "")
	assert.False(t, VerifyAdminPassword("anything"))

	encoded, err := HashPassword("clubsecret")
	require.NoError(t, err)
	t.Setenv("ADMIN_PASSWORD_HASH", encoded)
	assert.True(t, VerifyAdminPassword("clubsecret"))
	assert.False(t, VerifyAdminPassword("guess"))
}
