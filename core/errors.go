package core

import "errors"

var (
	// ErrInvalidAccount is returned when a claimed account identifier is malformed
	ErrInvalidAccount = errors.New("invalid account")

	// ErrInvalidMemo is returned when a sub-account memo is malformed or not
	// representable as an unsigned 64-bit integer
	ErrInvalidMemo = errors.New("invalid memo")

	// ErrClientDomainRequired is returned when client attribution is mandatory
	// but no client domain was provided
	ErrClientDomainRequired = errors.New("client domain required")

	// ErrClientDomainNotAllowed is returned when the provided client domain is
	// not on the configured allow-list
	ErrClientDomainNotAllowed = errors.New("client domain not allowed")

	// ErrDomainResolution is returned when a client domain's signing key cannot
	// be resolved from its well-known stellar.toml
	ErrDomainResolution = errors.New("unable to resolve client domain signing key")

	// ErrInvalidChallenge is returned when a challenge transaction violates a
	// structural invariant (source account, sequence, time bounds, data entries)
	ErrInvalidChallenge = errors.New("invalid challenge transaction")

	// ErrInsufficientWeight is returned when the attached signatures do not meet
	// the account's medium threshold
	ErrInsufficientWeight = errors.New("signature weight below required threshold")

	// ErrSignatureCount is returned when a challenge for an unfunded account
	// carries a signature count other than the exact number expected
	ErrSignatureCount = errors.New("unexpected signature count")

	// ErrInvalidToken is returned when a session token fails decoding or
	// signature verification
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when a session token has expired; callers
	// should prompt for re-authentication rather than treat this as a forgery
	ErrTokenExpired = errors.New("token has expired")

	// ErrUnattributedToken is returned when client attribution is mandatory but
	// the token carries no allowed client domain
	ErrUnattributedToken = errors.New("token was not attributed to an allowed client domain")

	// ErrMissingCredentials is returned when no bearer credentials accompany a
	// request to an authenticated route
	ErrMissingCredentials = errors.New("missing bearer credentials")

	// ErrAccountNotFound reports that an account does not exist on the ledger.
	// This is an expected outcome for first-time users, not a failure.
	ErrAccountNotFound = errors.New("account not found")
)
