package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	userKeyKey contextKey = "userKey"
	tokenKey   contextKey = "token"
)

// WithCaller adds the caller's user key and bearer token to the request context
func WithCaller(r *http.Request, userKey, token string) *http.Request {
	ctx := context.WithValue(r.Context(), userKeyKey, userKey)
	ctx = context.WithValue(ctx, tokenKey, token)
	return r.WithContext(ctx)
}

// GetUserKey retrieves the user key from context, returns empty string if not found
func GetUserKey(r *http.Request) string {
	userKey, _ := r.Context().Value(userKeyKey).(string)
	return userKey
}

// GetToken retrieves the bearer token from context, returns empty string if not found
func GetToken(r *http.Request) string {
	token, _ := r.Context().Value(tokenKey).(string)
	return token
}
