package auth

// TokenVerifier checks a bearer token before the gateway forwards it.
// This abstraction lets the middleware stay agnostic of how (or whether)
// signatures are checked.
type TokenVerifier interface {
	// VerifyToken validates a token string and returns its claims.
	VerifyToken(tokenString string) (*Claims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
