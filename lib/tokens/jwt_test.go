package tokens

import (
	"testing"

	"github.com/coopfin/coophub/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	user := &models.User{ID: 42, Login: "treasurer"}

	token, err := GenerateAccessToken(secret, 3600, user)
	require.NoError(t, err)

	claims, err := ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.ID)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	user := &models.User{ID: 42}

	token, err := GenerateAccessToken([]byte("secret-a"), 3600, user)
	require.NoError(t, err)

	_, err = ParseToken([]byte("secret-b"), token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	user := &models.User{ID: 42}

	token, err := GenerateAccessToken(secret, -60, user)
	require.NoError(t, err)

	_, err = ParseToken(secret, token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken([]byte("test-secret"), "not-a-token")
	assert.Error(t, err)
}
