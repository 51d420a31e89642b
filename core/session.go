package core

import "time"

// SessionLifetime is how long a session token stays valid after the challenge
// it was derived from was issued.
const SessionLifetime = 24 * time.Hour

// Session represents an authenticated session derived from a verified
// challenge. Every field is a deterministic function of the signed challenge,
// so re-deriving a session from the same challenge yields identical claims.
type Session struct {
	Subject      string    // account, or account:memo for sub-accounts
	ClientDomain string    // attributed client domain, empty when none
	IssuedAt     time.Time // the challenge's lower time bound, not wall clock
	ExpiresAt    time.Time // IssuedAt + SessionLifetime
	ID           string    // hex-encoded hash of the challenge transaction
}
