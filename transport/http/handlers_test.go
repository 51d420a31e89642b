package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creda-technologies/hitch/adapters/events"
	"github.com/creda-technologies/hitch/adapters/tokenizer"
	"github.com/creda-technologies/hitch/core"
	"github.com/creda-technologies/hitch/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePolicySource struct {
	policies map[string]*core.AuthorizationPolicy
}

func (f *fakePolicySource) FetchPolicy(ctx context.Context, accountID string) (*core.AuthorizationPolicy, error) {
	policy, ok := f.policies[accountID]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	return policy, nil
}

type stubResolver struct{ key string }

func (r *stubResolver) ResolveSigningKey(ctx context.Context, domain string) (string, error) {
	return r.key, nil
}

type testServer struct {
	router *gin.Engine
	server *keypair.Full
	client *keypair.Full
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	server := keypair.MustRandom()
	client := keypair.MustRandom()

	cfg := service.Config{
		ServerKeypair:     server,
		HomeDomain:        "example.com",
		WebAuthDomain:     "auth.example.com",
		HostURL:           "https://auth.example.com",
		NetworkPassphrase: network.TestNetworkPassphrase,
	}
	policies := &fakePolicySource{policies: map[string]*core.AuthorizationPolicy{
		client.Address(): {
			Signers:         []core.Signer{{Address: client.Address(), Weight: 1}},
			MediumThreshold: 1,
		},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authService := service.NewAuthService(cfg, policies, &stubResolver{},
		tokenizer.NewJWTTokenizer([]byte("test-secret"), cfg.HostURL), events.NewNopPublisher(), logger)

	wellKnown, err := NewWellKnownHandler(TomlDocument{
		Version:           "2.0.0",
		NetworkPassphrase: cfg.NetworkPassphrase,
		WebAuthEndpoint:   cfg.HostURL + "/auth",
		SigningKey:        server.Address(),
	})
	require.NoError(t, err)

	return &testServer{
		router: SetupRouter(authService, wellKnown),
		server: server,
		client: client,
	}
}

func (ts *testServer) do(t *testing.T, method, target string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	out := map[string]string{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// authenticate walks the full flow and returns a session token.
func (ts *testServer) authenticate(t *testing.T) string {
	t.Helper()
	rec := ts.do(t, http.MethodGet, "/auth?account="+ts.client.Address(), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	challenge := decodeBody(t, rec)

	generic, err := txnbuild.TransactionFromXDR(challenge["transaction"])
	require.NoError(t, err)
	tx, ok := generic.Transaction()
	require.True(t, ok)
	tx, err = tx.Sign(network.TestNetworkPassphrase, ts.client)
	require.NoError(t, err)
	signed, err := tx.Base64()
	require.NoError(t, err)

	payload, err := json.Marshal(gin.H{"transaction": signed})
	require.NoError(t, err)
	rec = ts.do(t, http.MethodPost, "/auth", payload, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody(t, rec)["token"]
	require.NotEmpty(t, token)
	return token
}

func TestChallengeEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/auth?account="+ts.client.Address(), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["transaction"])
	assert.Equal(t, network.TestNetworkPassphrase, body["network_passphrase"])
}

func TestChallengeEndpointRejections(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		target string
	}{
		{"missing account", "/auth"},
		{"malformed account", "/auth?account=not-an-account"},
		{"non-numeric memo", "/auth?account=" + ts.client.Address() + "&memo=abc"},
		{"negative memo", "/auth?account=" + ts.client.Address() + "&memo=-1"},
		{"foreign home domain", "/auth?account=" + ts.client.Address() + "&home_domain=other.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, tt.target, nil, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestTokenEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := ts.authenticate(t)
	assert.NotEmpty(t, token)
}

func TestTokenEndpointRejections(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/auth", []byte(`{}`), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/auth", []byte(`{"transaction":"not-xdr"}`), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTokenEndpointUnsignedChallenge(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/auth?account="+ts.client.Address(), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeBody(t, rec)["transaction"]

	// server signature alone does not meet the threshold
	payload, err := json.Marshal(gin.H{"transaction": envelope})
	require.NoError(t, err)
	rec = ts.do(t, http.MethodPost, "/auth", payload, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := ts.authenticate(t)

	rec := ts.do(t, http.MethodGet, "/session", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ts.client.Address(), decodeBody(t, rec)["account"])
}

func TestSessionEndpointUnauthorized(t *testing.T) {
	ts := newTestServer(t)
	token := ts.authenticate(t)

	tests := []struct {
		name   string
		header map[string]string
	}{
		{"no header", nil},
		{"wrong scheme", map[string]string{"Authorization": "Basic " + token}},
		{"empty bearer", map[string]string{"Authorization": "Bearer "}},
		{"garbage token", map[string]string{"Authorization": "Bearer not.a.token"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, "/session", nil, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestWellKnownDocument(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/.well-known/stellar.toml", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), `SIGNING_KEY = "`+ts.server.Address()+`"`)
	assert.Contains(t, rec.Body.String(), "WEB_AUTH_ENDPOINT")
}
