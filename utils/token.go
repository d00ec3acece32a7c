package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

type JwtCustomClaim struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	jwt.StandardClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret   []byte
	lifespan time.Duration
}

func NewTokenIssuer(secret string, lifespan time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:   []byte(secret),
		lifespan: lifespan,
	}
}

func (t *TokenIssuer) JwtGenerate(userID string, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		ID:   userID,
		Role: role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(t.lifespan).Unix(),
			IssuedAt:  now.Unix(),
		},
	})
	return token.SignedString(t.secret)
}

func (t *TokenIssuer) JwtValidate(token string) (*JwtCustomClaim, error) {
	parsed, err := jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claim, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok || !parsed.Valid || claim.ID == "" {
		return nil, errors.New("invalid token")
	}
	return claim, nil
}
