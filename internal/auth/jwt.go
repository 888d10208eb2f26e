package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type JWT struct {
	secret []byte
}

func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret)}
}

// Claims is the identity a verified token carries.
type Claims struct {
	Subject string
	Name    string
	Email   string
	Picture string
}

func (j *JWT) Sign(u User) (string, error) {
	claims := jwt.MapClaims{
		"sub":     u.ID,
		"name":    u.Name,
		"email":   u.Email,
		"picture": u.Picture,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(7 * 24 * time.Hour).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(j.secret)
}

func (j *JWT) Verify(tokenStr string) (Claims, error) {
	t, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	})
	if err != nil || !t.Valid {
		return Claims{}, errors.New("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Claims{}, errors.New("missing sub")
	}

	out := Claims{Subject: sub}
	if v, ok := claims["name"].(string); ok {
		out.Name = v
	}
	if v, ok := claims["email"].(string); ok {
		out.Email = v
	}
	if v, ok := claims["picture"].(string); ok {
		out.Picture = v
	}
	return out, nil
}
