package stellartoml

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creda-technologies/hitch/core"
)

func serveDocument(t *testing.T, status int, body string) (string, *Resolver) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != wellKnownPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	domain := strings.TrimPrefix(srv.URL, "http://")
	return domain, &Resolver{HTTP: srv.Client(), UseHTTP: true}
}

func TestResolveSigningKey(t *testing.T) {
	key := keypair.MustRandom().Address()
	domain, resolver := serveDocument(t, http.StatusOK,
		"NETWORK_PASSPHRASE = \"Test SDF Network ; September 2015\"\nSIGNING_KEY = \""+key+"\"\n")

	got, err := resolver.ResolveSigningKey(context.Background(), domain)
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestResolveFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"missing signing key", http.StatusOK, "FEDERATION_SERVER = \"https://example.com\"\n"},
		{"invalid signing key", http.StatusOK, "SIGNING_KEY = \"not-a-key\"\n"},
		{"malformed document", http.StatusOK, "SIGNING_KEY = [unterminated\n"},
		{"not found", http.StatusNotFound, ""},
		{"server error", http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			domain, resolver := serveDocument(t, tt.status, tt.body)
			_, err := resolver.ResolveSigningKey(context.Background(), domain)
			assert.ErrorIs(t, err, core.ErrDomainResolution)
		})
	}
}

func TestResolveUnreachableDomain(t *testing.T) {
	resolver := &Resolver{HTTP: &http.Client{}, UseHTTP: true}
	_, err := resolver.ResolveSigningKey(context.Background(), "127.0.0.1:1")
	assert.ErrorIs(t, err, core.ErrDomainResolution)
}
