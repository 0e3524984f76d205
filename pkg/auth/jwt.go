package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role discriminates the two principal kinds on the wire.
type Role string

const (
	RolePatient Role = "patient"
	RolePathLab Role = "pathlab"
)

func (r Role) Valid() bool {
	return r == RolePatient || r == RolePathLab
}

// Identity is what a verified token resolves to: who the caller is and
// the single key their record queries are scoped by. ScopeKey is the
// patient identifier for patients and the lab id for labs.
type Identity struct {
	PrincipalID string
	Role        Role
	ScopeKey    string
	Email       string
}

// TokenService mints and verifies the identity carrier handed back by
// authenticate. There are no refresh tokens; the carrier is the whole
// session mechanism this service provides.
type TokenService interface {
	Generate(identity Identity) (string, error)
	Validate(token string) (*Identity, error)
}

type claims struct {
	Role     string `json:"role"`
	ScopeKey string `json:"scope_key"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

type jwtService struct {
	secret []byte
	expiry time.Duration
}

func NewJWTService(secret string, expiry time.Duration) TokenService {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &jwtService{secret: []byte(secret), expiry: expiry}
}

func (s *jwtService) Generate(identity Identity) (string, error) {
	if !identity.Role.Valid() {
		return "", fmt.Errorf("invalid role %q", identity.Role)
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role:     string(identity.Role),
		ScopeKey: identity.ScopeKey,
		Email:    identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.PrincipalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	})
	return token.SignedString(s.secret)
}

func (s *jwtService) Validate(tokenString string) (*Identity, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	role := Role(c.Role)
	if !role.Valid() || c.ScopeKey == "" || c.Subject == "" {
		return nil, errors.New("invalid token claims")
	}

	return &Identity{
		PrincipalID: c.Subject,
		Role:        role,
		ScopeKey:    c.ScopeKey,
		Email:       c.Email,
	}, nil
}
