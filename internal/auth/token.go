package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// TokenIssuer signs and verifies the bearer tokens handed to mobile clients.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

func (t *TokenIssuer) Issue(s Staff) (string, error) {
	now := time.Now().UTC()
	tok, err := jwt.NewBuilder().
		Subject(strconv.FormatInt(s.ID, 10)).
		IssuedAt(now).
		Expiration(now.Add(t.ttl)).
		Claim("name", s.Name).
		Claim("role", s.Role).
		Build()
	if err != nil {
		return "", fmt.Errorf("auth: build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, t.secret))
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return string(signed), nil
}

// Claims is what the middleware extracts from a verified token.
type Claims struct {
	StaffID int64
	Name    string
	Role    string
}

func (t *TokenIssuer) Verify(raw string) (Claims, error) {
	tok, err := jwt.Parse([]byte(raw), jwt.WithKey(jwa.HS256, t.secret), jwt.WithValidate(true))
	if err != nil {
		return Claims{}, err
	}

	id, err := strconv.ParseInt(tok.Subject(), 10, 64)
	if err != nil {
		return Claims{}, fmt.Errorf("auth: bad subject: %w", err)
	}
	c := Claims{StaffID: id}
	if v, ok := tok.Get("name"); ok {
		c.Name, _ = v.(string)
	}
	if v, ok := tok.Get("role"); ok {
		c.Role, _ = v.(string)
	}
	return c, nil
}
