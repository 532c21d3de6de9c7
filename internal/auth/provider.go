package auth

import (
	"context"
	"errors"

	"github.com/yourname/nutritracker/internal"
	"github.com/yourname/nutritracker/internal/config"
)

var ErrInvalidToken = errors.New("invalid token")

// Provider resolves a bearer token to the user it belongs to.
type Provider interface {
	Validate(ctx context.Context, token string) (*internal.User, error)
}

// NewProvider returns the fixed-token provider in development and the JWT
// provider everywhere else.
func NewProvider(cfg *config.Config, logger internal.Logger) Provider {
	if cfg.Env == "development" && cfg.JWTSecret == "" {
		return NewLocalAuthProvider(cfg.AuthToken, logger)
	}
	return NewJWTAuthProvider(cfg.JWTSecret, logger)
}
