package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yourname/nutritracker/internal"
)

// Claims carried by access tokens. The subject is the user id.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuthProvider validates HS256 tokens signed with a shared secret.
type JWTAuthProvider struct {
	secret []byte
	logger internal.Logger
}

func NewJWTAuthProvider(secret string, logger internal.Logger) *JWTAuthProvider {
	return &JWTAuthProvider{secret: []byte(secret), logger: logger}
}

func (a *JWTAuthProvider) Validate(ctx context.Context, token string) (*internal.User, error) {
	if len(a.secret) == 0 {
		return nil, fmt.Errorf("auth: no signing secret configured")
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		a.logger.Warnf("auth: rejected jwt: %v", err)
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		a.logger.Warnf("auth: jwt without subject")
		return nil, ErrInvalidToken
	}
	return &internal.User{ID: claims.Subject, Token: token, Name: claims.Name}, nil
}

// Issue signs a token for user that expires after ttl.
func (a *JWTAuthProvider) Issue(user internal.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}
