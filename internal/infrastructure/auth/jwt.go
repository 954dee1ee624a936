package auth

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Issuer is stamped on every token and required on verification.
const Issuer = "transferledger"

// Scopes understood by the ledger API.
const (
	ScopeRead     = "ledger:read"
	ScopeTransfer = "ledger:transfer"
)

// Claims carries the caller identity in Subject and the granted scopes.
type Claims struct {
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// JWTManager signs and verifies HS256 tokens for ledger clients.
type JWTManager struct {
	key    []byte
	ttl    time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		key: []byte(secret),
		ttl: ttl,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(Issuer),
			jwt.WithExpirationRequired(),
		),
		now: time.Now,
	}
}

// Generate issues a token for subject. The server only verifies tokens;
// issuing is left to the operator CLI.
func (m *JWTManager) Generate(subject string, scopes ...string) (string, error) {
	now := m.now()
	claims := Claims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
}

// Verify returns ErrExpiredToken for stale tokens and ErrInvalidToken for
// anything else that does not check out, including a missing subject.
func (m *JWTManager) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.key, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case claims.Subject == "":
		return nil, ErrInvalidToken
	}
	return claims, nil
}
