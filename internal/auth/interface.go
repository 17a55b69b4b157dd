package auth

import "bandstand/internal/domain/models"

// TokenVerifier validates bearer tokens presented by clients.
type TokenVerifier interface {
	// VerifyToken validates a JWT string and returns its parsed claims.
	// Returns an error if the token is invalid, expired, or has an
	// invalid signature.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
