package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cartable/internal/auth"
	"cartable/internal/httputil"
)

// AuthMiddleware requires a bearer token on every route except the public
// prefixes. With a verifier the token's signature is checked and the user key
// is its subject. Without one the user key is a digest of the whole token, so
// callers presenting different tokens never share a tree, and the upstream API
// stays the authority on whether a token is valid.
func AuthMiddleware(verifier auth.TokenVerifier, logger *slog.Logger, publicPrefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || isPublic(r.URL.Path, publicPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			token := httputil.BearerToken(r)
			if token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			userKey, ok := identify(verifier, token)
			if !ok {
				logger.Debug("rejected token", "path", r.URL.Path)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithCaller(r, userKey, token))
		})
	}
}

func identify(verifier auth.TokenVerifier, token string) (string, bool) {
	if verifier != nil {
		claims, err := verifier.VerifyToken(token)
		if err != nil {
			return "", false
		}
		return claims.Subject, true
	}

	if claims, err := auth.ParseClaims(token); err == nil && claims.Expired(time.Now()) {
		return "", false
	}
	return auth.UserKey(token), true
}

func isPublic(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
