// Package auth issues and verifies the HS256 tokens carried by every
// booking and admin request.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrForbidden    = errors.New("attempted action is not allowed")
	ErrInvalidRole  = errors.New("token contains an invalid role")
	ErrMissingToken = errors.New("missing authorization header")
	ErrMalformed    = errors.New("expected authorization header format: Bearer <token>")
)

type Role string

const (
	RoleEmployee     Role = "employee"
	RoleCompanyAdmin Role = "company_admin"
	RoleSuperAdmin   Role = "super_admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleEmployee, RoleCompanyAdmin, RoleSuperAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

func (r Role) String() string {
	return string(r)
}

// Claims identify the caller. Employee tokens also bind a booking session
// and location; admin tokens carry only the tenant.
type Claims struct {
	jwt.RegisteredClaims
	TenantID   string `json:"tenant_id,omitempty"`
	LocationID string `json:"location_id,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role"`
}

type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type Auth struct {
	secret []byte
	issuer string
	ttl    time.Duration
	method jwt.SigningMethod
	parser *jwt.Parser
	now    func() time.Time
}

func New(cfg Config) *Auth {
	a := &Auth{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		method: jwt.SigningMethodHS256,
		now:    time.Now,
	}
	a.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return a.now() }),
	)
	return a
}

func (a *Auth) Issuer() string {
	return a.issuer
}

// GenerateToken signs claims, filling in the registered fields.
func (a *Auth) GenerateToken(claims Claims) (string, error) {
	if _, err := ParseRole(claims.Role); err != nil {
		return "", err
	}

	now := a.now()
	claims.Issuer = a.issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(a.ttl))
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}

	token := jwt.NewWithClaims(a.method, claims)
	str, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return str, nil
}

// Authenticate verifies a "Bearer <token>" header value.
func (a *Auth) Authenticate(bearerToken string) (Claims, error) {
	if bearerToken == "" {
		return Claims{}, ErrMissingToken
	}
	parts := strings.Split(bearerToken, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return Claims{}, ErrMalformed
	}

	var claims Claims
	token, err := a.parser.ParseWithClaims(parts[1], &claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("authentication failed: %w", err)
	}
	if !token.Valid {
		return Claims{}, errors.New("token is invalid")
	}

	if _, err := ParseRole(claims.Role); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

// Authorize checks that claims hold one of allowed. With no roles listed
// every caller is refused.
func (a *Auth) Authorize(claims Claims, allowed ...Role) error {
	if len(allowed) == 0 {
		return fmt.Errorf("%w: no roles authorized for this endpoint", ErrForbidden)
	}
	for _, r := range allowed {
		if claims.Role == r.String() {
			return nil
		}
	}
	return fmt.Errorf("%w: role %q is not in %v", ErrForbidden, claims.Role, allowed)
}
