package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/microblog/config"
)

func setSecret(secret string) {
	config.SetForTesting(config.AppConfig{SecretKey: secret, TokenTTLSec: 3600})
}

func TestPurposeTokenRoundTrip(t *testing.T) {
	setSecret("secret-a")

	token, err := IssuePurposeToken(PurposeEmailChange, 42, "new@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := VerifyPurposeToken(token, PurposeEmailChange)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "new@example.com", claims.NewEmail)
	assert.Equal(t, PurposeEmailChange, claims.Purpose)
}

func TestPurposeTokenExpiry(t *testing.T) {
	setSecret("secret-a")

	token, err := IssuePurposeToken(PurposeConfirm, 1, "", -time.Second)
	require.NoError(t, err)

	_, err = VerifyPurposeToken(token, PurposeConfirm)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPurposeTokenWrongSecret(t *testing.T) {
	setSecret("secret-a")
	token, err := IssuePurposeToken(PurposeConfirm, 1, "", time.Hour)
	require.NoError(t, err)

	setSecret("secret-b")
	_, err = VerifyPurposeToken(token, PurposeConfirm)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPurposeTokenWrongPurpose(t *testing.T) {
	setSecret("secret-a")
	token, err := IssuePurposeToken(PurposeConfirm, 1, "", time.Hour)
	require.NoError(t, err)

	_, err = VerifyPurposeToken(token, PurposePasswordReset)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPurposeTokenMalformed(t *testing.T) {
	setSecret("secret-a")
	_, err := VerifyPurposeToken("not-a-token", PurposeConfirm)
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, err := IssuePurposeToken(PurposeConfirm, 1, "", time.Hour)
	require.NoError(t, err)
	// flip a byte in the signature
	tampered := token[:len(token)-2] + "xx"
	_, err = VerifyPurposeToken(tampered, PurposeConfirm)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	setSecret("secret-a")

	token, err := GenerateToken(7, "alice", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}
