package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines standard claims with the attributed client domain
type SessionClaims struct {
	jwt.RegisteredClaims
	ClientDomain string `json:"client_domain,omitempty"`
}
