package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims reads the subject and expiry of an access token without
// verifying its signature. The backend remains the authority on validity;
// these values only label the session and fill in a missing expiry.
func tokenClaims(token string) (subject string, expiresAt time.Time) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "", time.Time{}
	}
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return claims.Subject, expiresAt
}
