package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/user/marina-office/internal/domain"
)

// Claims defines the custom claims for the JWT.
type Claims struct {
	AccountID      uuid.UUID   `json:"account_id"`
	Role           domain.Role `json:"role"`
	ManagedDockIDs []uuid.UUID `json:"managed_dock_ids,omitempty"`
	jwt.RegisteredClaims
}

// Generate creates a new JWT for a given account.
func Generate(accountID uuid.UUID, role domain.Role, managedDockIDs []uuid.UUID, secretKey string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		AccountID:      accountID,
		Role:           role,
		ManagedDockIDs: managedDockIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secretKey))
}

// Validate parses and validates a JWT string.
func Validate(tokenString, secretKey string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !t.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}

// Actor converts validated claims into the domain actor.
func (c *Claims) Actor() domain.Actor {
	return domain.Actor{
		AccountID:      c.AccountID,
		Role:           c.Role,
		ManagedDockIDs: c.ManagedDockIDs,
	}
}
