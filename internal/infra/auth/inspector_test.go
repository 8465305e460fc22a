package auth

import (
	"testing"
	"time"

	"partsgate/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)

	return token
}

func TestJWTInspector_ExpiresAt_ReadsExpClaim(t *testing.T) {
	expiry := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	token := signToken(t, jwt.MapClaims{"sub": "casey", "exp": expiry.Unix()})

	inspector := NewInspector()

	got, ok := inspector.ExpiresAt(token)

	require.True(t, ok)
	assert.True(t, got.Equal(expiry))
}

func TestJWTInspector_ExpiresAt_NoExpClaim(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "casey"})

	inspector := NewInspector()

	_, ok := inspector.ExpiresAt(token)

	assert.False(t, ok, "token without expiry is used as-is, the backend decides")
}

func TestJWTInspector_ExpiresAt_NotAJWT(t *testing.T) {
	inspector := NewInspector()

	_, ok := inspector.ExpiresAt("opaque-token")

	assert.False(t, ok)
}

func TestJWTInspector_Identity_SubjectAndRole(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "casey@example.com", "role": "ROLE_CLERK"})

	inspector := NewInspector()

	subject, role, ok := inspector.Identity(token)

	require.True(t, ok)
	assert.Equal(t, "casey@example.com", subject)
	assert.Equal(t, entity.RoleClerk, role)
}

func TestJWTInspector_Identity_UnknownRole(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "casey@example.com", "role": "SUPERVISOR"})

	inspector := NewInspector()

	subject, _, ok := inspector.Identity(token)

	assert.False(t, ok)
	assert.Equal(t, "casey@example.com", subject, "subject is still advisory")
}

func TestJWTInspector_Identity_MissingSubject(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"role": "CUSTOMER"})

	inspector := NewInspector()

	_, _, ok := inspector.Identity(token)

	assert.False(t, ok)
}
