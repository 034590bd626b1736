package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chainbank-backend/internal/models"
)

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("s3cret")
	assert.NoError(t, err)
	assert.NotEqual(t, "s3cret", hashed)

	assert.True(t, VerifyPassword("s3cret", hashed))
	assert.False(t, VerifyPassword("wrong", hashed))
}

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", 30*time.Minute, "test-issuer")
	user := &models.User{
		Email: "alice@example.com",
		Role:  models.RoleAdmin,
	}

	token, err := manager.Generate(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := manager.Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "test-issuer", claims.Issuer)
}

func TestTokenRejection(t *testing.T) {
	manager := NewTokenManager("test-secret", 30*time.Minute, "test-issuer")
	user := &models.User{Email: "bob@example.com", Role: models.RoleUser}

	t.Run("wrong secret", func(t *testing.T) {
		token, err := manager.Generate(user)
		assert.NoError(t, err)

		other := NewTokenManager("different-secret", 30*time.Minute, "test-issuer")
		_, err = other.Validate(token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenManager("test-secret", -time.Minute, "test-issuer")
		token, err := expired.Generate(user)
		assert.NoError(t, err)

		_, err = manager.Validate(token)
		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := manager.Validate("not.a.token")
		assert.Error(t, err)
	})
}

func TestPolicyTable(t *testing.T) {
	assert.True(t, Allowed(models.RoleAdmin, ActionCreateUsers))
	assert.True(t, Allowed(models.RoleAdmin, ActionListUsers))
	assert.True(t, Allowed(models.RoleAdmin, ActionActivateUsers))
	assert.True(t, Allowed(models.RoleAdmin, ActionDeactivateUsers))

	assert.True(t, Allowed(models.RoleModerator, ActionListUsers))
	assert.False(t, Allowed(models.RoleModerator, ActionCreateUsers))
	assert.False(t, Allowed(models.RoleModerator, ActionDeactivateUsers))

	assert.False(t, Allowed(models.RoleUser, ActionListUsers))
	assert.False(t, Allowed(models.Role("unknown"), ActionListUsers))
}
