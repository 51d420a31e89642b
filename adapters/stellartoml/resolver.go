// Package stellartoml resolves the signing key a domain publishes in its
// well-known stellar.toml metadata document.
package stellartoml

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stellar/go/strkey"

	"github.com/creda-technologies/hitch/core"
	"github.com/creda-technologies/hitch/ports"
)

// FetchTimeout bounds the whole metadata fetch. A slow domain fails the
// request; there are no retries.
const FetchTimeout = 3 * time.Second

const wellKnownPath = "/.well-known/stellar.toml"

// documents larger than this are rejected outright
const maxDocumentSize = 100 * 1024

// Resolver fetches stellar.toml documents over HTTPS.
type Resolver struct {
	// HTTP is the client used for fetches. Its timeout applies on top of the
	// per-request deadline.
	HTTP *http.Client

	// UseHTTP switches to plain HTTP. Only for tests against local servers.
	UseHTTP bool
}

// NewResolver creates a resolver with the default timeout
func NewResolver() ports.SigningKeyResolver {
	return &Resolver{HTTP: &http.Client{Timeout: FetchTimeout}}
}

// ResolveSigningKey fetches the domain's stellar.toml and returns its
// SIGNING_KEY entry. Every failure mode wraps core.ErrDomainResolution naming
// the domain: unreachable host, non-200 response, malformed TOML, missing
// entry, or a key that is not a valid ed25519 public key.
func (r *Resolver) ResolveSigningKey(ctx context.Context, domain string) (string, error) {
	scheme := "https"
	if r.UseHTTP {
		scheme = "http"
	}

	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scheme+"://"+domain+wellKnownPath, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %q", core.ErrDomainResolution, domain)
	}

	resp, err := r.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetching %q: %v", core.ErrDomainResolution, domain, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %q responded %d", core.ErrDomainResolution, domain, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return "", fmt.Errorf("%w: reading %q metadata: %v", core.ErrDomainResolution, domain, err)
	}

	var doc struct {
		SigningKey string `toml:"SIGNING_KEY"`
	}
	if err := toml.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("%w: invalid stellar.toml at %q", core.ErrDomainResolution, domain)
	}
	if doc.SigningKey == "" {
		return "", fmt.Errorf("%w: no signing key at %q", core.ErrDomainResolution, domain)
	}
	if !strkey.IsValidEd25519PublicKey(doc.SigningKey) {
		return "", fmt.Errorf("%w: invalid signing key at %q", core.ErrDomainResolution, domain)
	}
	return doc.SigningKey, nil
}
