package mockapi

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/rolegate/internal/domain"
	"github.com/felixgeelhaar/rolegate/internal/token"
)

// Issuer signs and verifies HS256 access tokens
type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewIssuer creates an issuer signing with key
func NewIssuer(key []byte, ttl time.Duration) *Issuer {
	return &Issuer{key: key, ttl: ttl, now: time.Now}
}

// Issue signs an access token for p
func (i *Issuer) Issue(p domain.UserProfile) (string, error) {
	now := i.now()
	claims := token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Email:     p.Email,
		Name:      p.FullName(),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Role:      string(p.Role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
}

// Verify checks signature and expiry
func (i *Issuer) Verify(raw string) (*token.Claims, error) {
	claims := &token.Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return i.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, err
	}
	return claims, nil
}
