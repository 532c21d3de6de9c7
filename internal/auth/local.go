package auth

import (
	"context"

	"github.com/yourname/nutritracker/internal"
)

// LocalAuthProvider accepts a single configured token for the demo user.
type LocalAuthProvider struct {
	Token  string
	logger internal.Logger
}

func (a *LocalAuthProvider) Validate(ctx context.Context, token string) (*internal.User, error) {
	if token != "" && token == a.Token {
		return &internal.User{ID: "u1", Token: a.Token, Name: "Demo User"}, nil
	}
	a.logger.Warnf("auth: rejected local token")
	return nil, ErrInvalidToken
}

func NewLocalAuthProvider(token string, logger internal.Logger) *LocalAuthProvider {
	return &LocalAuthProvider{Token: token, logger: logger}
}
