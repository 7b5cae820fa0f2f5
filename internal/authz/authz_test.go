package authz

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
)

func TestRolePermissions(t *testing.T) {
	t.Run("farmers hold no staff permissions", func(t *testing.T) {
		claims := Claims{UserID: id.NewUserID(), Role: RoleFarmer}
		assert.False(t, claims.Allows(PermFarmReview))
		assert.False(t, claims.Allows(PermStaffManage))
		assert.False(t, claims.IsStaff())
	})

	t.Run("reviewers review but do not manage staff", func(t *testing.T) {
		claims := Claims{UserID: id.NewUserID(), Role: RoleReviewer}
		assert.True(t, claims.Allows(PermFarmReview))
		assert.True(t, claims.Allows(PermApplicationReview))
		assert.True(t, claims.Allows(PermCertificateRevoke))
		assert.False(t, claims.Allows(PermStaffManage))
	})

	t.Run("admins hold everything", func(t *testing.T) {
		claims := Claims{UserID: id.NewUserID(), Role: RoleAdmin}
		assert.True(t, claims.Allows(PermStaffManage))
		assert.True(t, claims.IsStaff())
	})
}

func TestOwns(t *testing.T) {
	owner := id.NewUserID()
	claims := Claims{UserID: owner, Role: RoleFarmer}

	assert.True(t, claims.Owns(owner))
	assert.False(t, claims.Owns(id.NewUserID()))
	assert.False(t, Claims{}.Owns(id.UserID{}), "anonymous claims own nothing")
}

func signedToken(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func TestTokenValidator(t *testing.T) {
	const key = "test-signing-key"
	validator := NewTokenValidator(key)
	userID := id.NewUserID()

	t.Run("accepts a valid token", func(t *testing.T) {
		token := signedToken(t, key, jwt.MapClaims{
			"sub":  userID.String(),
			"role": string(RoleReviewer),
			"exp":  time.Now().Add(time.Hour).Unix(),
		})

		claims, err := validator.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, RoleReviewer, claims.Role)
	})

	t.Run("rejects a token signed with another key", func(t *testing.T) {
		token := signedToken(t, "other-key", jwt.MapClaims{
			"sub":  userID.String(),
			"role": string(RoleFarmer),
		})

		_, err := validator.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		token := signedToken(t, key, jwt.MapClaims{
			"sub":  userID.String(),
			"role": string(RoleFarmer),
			"exp":  time.Now().Add(-time.Hour).Unix(),
		})

		_, err := validator.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		token := signedToken(t, key, jwt.MapClaims{
			"sub":  userID.String(),
			"role": "superuser",
		})

		_, err := validator.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
