package auth

import (
	"time"

	"partsgate/internal/domain/entity"
	"partsgate/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
)

// jwtInspector implements service.TokenInspector. It parses tokens without
// verifying signatures: the gateway holds no signing keys and treats the
// backend as the only validator.
type jwtInspector struct {
	parser *jwt.Parser
}

// NewInspector is the constructor for the claim inspector.
func NewInspector() service.TokenInspector {
	return &jwtInspector{parser: jwt.NewParser()}
}

// ExpiresAt returns the exp claim of a JWT access token.
func (i *jwtInspector) ExpiresAt(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}, false
	}

	return expiry.Time, true
}

// Identity extracts subject and role hints from a JWT access token.
func (i *jwtInspector) Identity(token string) (string, entity.Role, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return "", "", false
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", "", false
	}

	rawRole, _ := claims["role"].(string)
	role, ok := entity.ParseRole(rawRole)
	if !ok {
		return subject, "", false
	}

	return subject, role, true
}
