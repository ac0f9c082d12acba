package auth

import "taskhive/internal/domain/models"

// TokenVerifier validates bearer tokens. The middleware depends on this
// interface rather than on a concrete verifier, so tests can stub it.
type TokenVerifier interface {
	// VerifyToken validates a JWT and returns its claims. Fails with
	// ErrUnauthorized when the token is invalid, expired, or signed with
	// an unexpected key or algorithm.
	VerifyToken(tokenString string) (*models.IdentityClaims, error)

	// Close releases resources held by the verifier.
	Close() error
}
