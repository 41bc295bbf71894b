package session

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/naveenspark/bankdash/pkg/domain"
)

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Describe reads the claims of a JWT session token without verifying its
// signature. ok is false for tokens that are not JWTs. The result is for
// display; whether a session is active never depends on it.
func Describe(token string) (info domain.SessionInfo, ok bool) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return domain.SessionInfo{}, false
	}
	info = domain.SessionInfo{
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    claims.Role,
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, true
}
