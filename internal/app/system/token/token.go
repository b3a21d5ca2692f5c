// Package token issues and verifies the signed bearer tokens that carry a
// user's identity and role between requests.
package token

import (
	"errors"
	"time"

	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const issuer = "ecahub"

// Claims is the identity carried in a token. Role is kept as a string on the
// wire and parsed on verification so unknown roles never reach callers.
type Claims struct {
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
	SchoolID string      `json:"school_id,omitempty"`
	jwt.RegisteredClaims
}

// UserID is the subject of the token (the user's ObjectID hex).
func (c *Claims) UserID() string { return c.Subject }

// Identity is what Issue needs to know about a user.
type Identity struct {
	UserID   string
	Name     string
	Role     models.Role
	SchoolID string
}

// Manager signs and verifies HS256 tokens with a shared secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager returns a Manager. ttl <= 0 falls back to 24h.
func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for id.
func (m *Manager) Issue(id Identity) (string, error) {
	if !id.Role.Valid() {
		return "", models.ErrUnknownRole
	}
	now := m.now()
	claims := Claims{
		Name:     id.Name,
		Role:     id.Role,
		SchoolID: id.SchoolID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify validates tokenString and returns its claims. It fails with
// ErrExpiredToken for expired tokens and ErrInvalidToken for everything else.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	role, err := models.ParseRole(string(claims.Role))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims.Role = role
	return claims, nil
}
