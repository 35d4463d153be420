package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

var ErrInvalidToken = errors.New("invalid token")

// Manager valida os access tokens emitidos pelo provedor (HS256 com o segredo do projeto).
type Manager struct {
	Secret []byte
	Issuer string
}

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func NewManager(secret, issuer string) *Manager {
	return &Manager{Secret: []byte(secret), Issuer: issuer}
}

// NewAccessToken emite um token no mesmo formato do provedor. Usado em testes e scripts.
func (m *Manager) NewAccessToken(s entity.Session, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: s.Email,
		Role:  s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			Issuer:    m.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
}

func (m *Manager) Parse(tokenStr string) (entity.Session, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if m.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.Issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return m.Secret, nil
	}, opts...)
	if err != nil {
		return entity.Session{}, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return entity.Session{}, ErrInvalidToken
	}
	return entity.Session{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}
