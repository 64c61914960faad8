package jwt

import (
	"time"

	"sivec/internal/domain/user"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Claims defines our canonical JWT claims payload. Branch scopes
// dispatchers to their own office; admins carry an empty branch and
// see everything.
type Claims struct {
	Role   user.Role `json:"role"`
	Branch string    `json:"sucursal,omitempty"`
	jwtlib.RegisteredClaims
}

// ensure Claims implements jwtlib.Claims interface
var _ jwtlib.Claims = (*Claims)(nil)

// NewUserClaims constructs end-user claims (dispatcher/driver/admin).
func NewUserClaims(userID string, role user.Role, branch string, ttl time.Duration) *Claims {
	now := time.Now().UTC()
	return &Claims{
		Role:   role,
		Branch: branch,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
}
