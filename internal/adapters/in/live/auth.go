package live

import (
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/golang-jwt/jwt/v5"
)

// Application close codes, in the 4xxx range websocket reserves for private
// use.
const (
	CloseCodeUnauthorized = 4401
	CloseCodeForbidden    = 4403
)

// ErrInvalidToken is returned for a missing, malformed, expired or otherwise
// unverifiable token.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated principal behind a live connection.
type Identity struct {
	UserID kernel.UUID
	Role   order.Role
}

// claims is the JWT payload this subsystem understands. The subject carries
// the user ID; the role claim carries the actor role.
type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator verifies connection tokens.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an authenticator with the given HMAC secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Authenticate parses and verifies a bearer token.
func (a *Authenticator) Authenticate(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	tokenClaims, ok := parsed.Claims.(*claims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	userID, err := kernel.UUIDFromString(tokenClaims.Subject)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	role, err := order.RoleFromString(tokenClaims.Role)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: userID, Role: role}, nil
}
