// Package auth verifies the access tokens issued by the identity service and
// exposes the authenticated principal to the booking engine.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is the principal's role within the gym.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// IsValid returns true if the role is recognized.
func (r Role) IsValid() bool {
	return r == RoleMember || r == RoleAdmin
}

// Principal is the authenticated caller.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// ErrInvalidToken is returned for malformed, expired or wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload carried by access tokens.
type Claims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

// JWTManager signs and verifies HS256 access tokens.
type JWTManager struct {
	secret    []byte
	accessTTL time.Duration
}

// NewJWTManager creates a JWTManager.
func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), accessTTL: accessTTL}
}

// Generate issues an access token for the principal. Tokens are normally
// issued by the identity service; this is used by tests and tooling.
func (m *JWTManager) Generate(p Principal) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
		Role: p.Role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify parses the token and returns the principal it names.
func (m *JWTManager) Verify(tokenString string) (Principal, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Principal{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	if !claims.Role.IsValid() {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: userID, Role: claims.Role}, nil
}
