package ports

import "context"

// SigningKeyResolver looks up the signing key a domain publishes in its
// well-known metadata document. Failures wrap core.ErrDomainResolution.
type SigningKeyResolver interface {
	ResolveSigningKey(ctx context.Context, domain string) (string, error)
}
