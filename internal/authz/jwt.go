package authz

import (
	"github.com/golang-jwt/jwt/v5"

	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
)

// TokenValidator turns a bearer token into Claims. Token issuance lives in a
// separate identity service; this side only verifies.
type TokenValidator struct {
	signingKey []byte
}

func NewTokenValidator(signingKey string) *TokenValidator {
	return &TokenValidator{signingKey: []byte(signingKey)}
}

// ValidateToken parses and verifies an HS256 token and extracts the caller's
// identity and role.
func (v *TokenValidator) ValidateToken(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.Newf(dErrors.CodeUnauthorized, "unexpected signing method %q", t.Method.Alg())
		}
		return v.signingKey, nil
	})
	if err != nil {
		return Claims{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid or expired token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	subject, err := mapClaims.GetSubject()
	if err != nil {
		return Claims{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "token missing subject")
	}
	userID, err := id.ParseUserID(subject)
	if err != nil {
		return Claims{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "token subject is not a user id")
	}

	roleClaim, _ := mapClaims["role"].(string)
	role := Role(roleClaim)
	if !role.Valid() {
		return Claims{}, dErrors.Newf(dErrors.CodeUnauthorized, "unknown role %q", roleClaim)
	}

	return Claims{UserID: userID, Role: role}, nil
}
