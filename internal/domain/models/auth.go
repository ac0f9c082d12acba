package models

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims is the JWT claims shape issued by the external identity
// provider. Token issuance is out of scope; the backend only verifies.
type IdentityClaims struct {
	jwt.RegisteredClaims        // sub, iss, aud, exp, iat, ...
	Email                string `json:"email"`
	Role                 string `json:"role"` // "authenticated" or "anon"
	SessionID            string `json:"session_id"`
	IsAnonymous          bool   `json:"is_anonymous"`
}

// GetUserID returns the user id from the subject claim.
func (c *IdentityClaims) GetUserID() string {
	return c.Subject
}
