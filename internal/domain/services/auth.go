package services

import (
	"context"

	"cartable/internal/domain/models/pedagogy"
)

// TokenSource supplies the current bearer token. An empty string means the
// user is not authenticated yet.
type TokenSource interface {
	Token() string
}

// Authenticator exchanges credentials with the upstream API.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*pedagogy.Token, error)
	Me(ctx context.Context, token string) (*pedagogy.User, error)
	Register(ctx context.Context, in *pedagogy.RegisterInput) (*pedagogy.User, error)
	ForgotPassword(ctx context.Context, email string) error
}
