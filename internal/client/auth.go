package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"cartable/internal/domain/models/pedagogy"
)

// Login exchanges credentials for a bearer token (OAuth2 password flow;
// the API expects the email in the "username" field).
func (c *Client) Login(ctx context.Context, email, password string) (*pedagogy.Token, error) {
	form := url.Values{
		"username": {email},
		"password": {password},
	}

	body, err := c.do(ctx, request{
		op:          "auth.token",
		method:      http.MethodPost,
		path:        "/auth/token",
		anonymous:   true,
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	})
	if err != nil {
		return nil, err
	}

	var token pedagogy.Token
	if err := decodeObject("POST /auth/token", body, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Me returns the user the token belongs to.
func (c *Client) Me(ctx context.Context, token string) (*pedagogy.User, error) {
	var u pedagogy.User
	if err := c.doJSON(ctx, "auth.me", http.MethodGet, "/auth/me", token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, in *pedagogy.RegisterInput) (*pedagogy.User, error) {
	var u pedagogy.User
	if err := c.anonymousJSON(ctx, "auth.register", "/auth/register", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ForgotPassword asks the API to send a reset link to email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.anonymousJSON(ctx, "auth.forgot_password", "/auth/forgot-password", map[string]string{"email": email}, nil)
}

func (c *Client) anonymousJSON(ctx context.Context, op, path string, in, out interface{}) error {
	payload, err := jsonBody(in)
	if err != nil {
		return err
	}
	body, err := c.do(ctx, request{
		op:          op,
		method:      http.MethodPost,
		path:        path,
		anonymous:   true,
		body:        payload,
		contentType: "application/json",
	})
	if err != nil {
		return err
	}
	return decodeObject(http.MethodPost+" "+path, body, out)
}
