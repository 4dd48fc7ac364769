// Package token decodes bearer tokens issued by the backend.
//
// Decoding reads the JWT payload only. Signatures are NOT verified: the
// backend is trusted infrastructure reached over TLS, and the decoded claims
// are used for display and routing hints. Authorization is still enforced by
// the backend on every protected request.
package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/felixgeelhaar/rolegate/internal/domain"
	"github.com/felixgeelhaar/rolegate/internal/errors"
)

// Claims is the decoded payload of a bearer token
type Claims struct {
	jwt.RegisteredClaims

	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      string `json:"role"`
}

var parser = jwt.NewParser()

// Decode parses the token payload without verifying its signature
func Decode(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New(errors.ErrCodeMalformedToken, "token is empty")
	}

	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedToken, "token payload could not be decoded", err)
	}
	return claims, nil
}

// IsExpired reports whether exp*1000 < now in milliseconds.
// A token without exp never expires.
func IsExpired(claims *Claims, now time.Time) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.UnixMilli() < now.UnixMilli()
}

// ToUser maps claims onto a domain.User
func ToUser(claims *Claims) (*domain.User, error) {
	if claims == nil {
		return nil, errors.New(errors.ErrCodeMissingIdentity, "token carries no claims")
	}

	var missing []string
	if claims.Subject == "" {
		missing = append(missing, "sub")
	}
	if claims.Email == "" {
		missing = append(missing, "email")
	}
	if claims.Role == "" {
		missing = append(missing, "role")
	}
	if len(missing) > 0 {
		return nil, errors.New(errors.ErrCodeMissingIdentity,
			"token is missing required claims: "+strings.Join(missing, ", "))
	}

	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name = strings.TrimSpace(claims.FirstName + " " + claims.LastName)
	}

	return &domain.User{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  name,
		Role:  domain.Role(claims.Role),
	}, nil
}

// Resolve decodes raw, rejects expired tokens and maps the claims to a
// user. Every failure is reported with its own code.
func Resolve(raw string, now time.Time) (*domain.User, *Claims, error) {
	claims, err := Decode(raw)
	if err != nil {
		return nil, nil, err
	}
	if IsExpired(claims, now) {
		return nil, claims, errors.New(errors.ErrCodeTokenExpired, "token has expired")
	}
	user, err := ToUser(claims)
	if err != nil {
		return nil, claims, err
	}
	return user, claims, nil
}

// ExtractUser returns the user carried by a valid, unexpired token, or nil
func ExtractUser(raw string, now time.Time) *domain.User {
	user, _, err := Resolve(raw, now)
	if err != nil {
		return nil
	}
	return user
}
