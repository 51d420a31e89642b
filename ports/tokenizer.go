package ports

import "github.com/creda-technologies/hitch/core"

// Tokenizer converts between sessions and their externally-verifiable token form
type Tokenizer interface {
	// SessionToToken encodes a session as a signed token
	SessionToToken(session *core.Session) (string, error)

	// TokenToSession decodes and verifies a token, distinguishing expiry
	// (core.ErrTokenExpired) from every other invalidity (core.ErrInvalidToken)
	TokenToSession(token string) (*core.Session, error)
}
