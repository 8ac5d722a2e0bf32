package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-stockyng/internal/model"
)

var ErrInvalidToken = errors.New("invalid or expired token")

const issuer = "stockyng"

// Claims carries the public session fields plus the role's privileges.
type Claims struct {
	UserID     string   `json:"user_id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Username   string   `json:"username"`
	Role       string   `json:"role"`
	ImageURL   string   `json:"image_url,omitempty"`
	Privileges []string `json:"privileges"`
	jwt.RegisteredClaims
}

// Manager signs and validates HS256 tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken creates a token for s.
func (m *Manager) GenerateToken(s model.Session) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID:     s.UserID,
		Name:       s.Name,
		Email:      s.Email,
		Username:   s.Username,
		Role:       s.Role,
		ImageURL:   s.ImageURL,
		Privileges: model.PrivilegesFor(s.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates a token
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
