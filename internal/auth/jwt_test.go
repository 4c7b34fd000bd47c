package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "conocida/pkg/domain-errors"
)

func TestJWTService(t *testing.T) {
	svc := NewJWTService("test-signing-key", "conocida", "conocida-app")

	t.Run("round trip preserves identity and role", func(t *testing.T) {
		token, err := svc.GenerateAccessToken("user-1", "admin", time.Hour)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		token, err := svc.GenerateAccessToken("user-1", "user", -time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		other := NewJWTService("different-key", "conocida", "conocida-app")
		token, err := other.GenerateAccessToken("user-1", "user", time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
