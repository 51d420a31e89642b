package http

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/BurntSushi/toml"
	"github.com/gin-gonic/gin"
)

// TomlDocument is the metadata this server publishes at
// /.well-known/stellar.toml so wallets can discover the authentication
// endpoint and the key challenges are signed with.
type TomlDocument struct {
	Version           string `toml:"VERSION"`
	NetworkPassphrase string `toml:"NETWORK_PASSPHRASE"`
	WebAuthEndpoint   string `toml:"WEB_AUTH_ENDPOINT"`
	SigningKey        string `toml:"SIGNING_KEY"`
}

// WellKnownHandler serves the rendered metadata document. The document is
// static per deployment, so it is encoded once at construction.
type WellKnownHandler struct {
	body []byte
}

// NewWellKnownHandler renders the metadata document for serving
func NewWellKnownHandler(doc TomlDocument) (*WellKnownHandler, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding stellar.toml: %w", err)
	}
	return &WellKnownHandler{body: buf.Bytes()}, nil
}

// Document handles GET /.well-known/stellar.toml
func (h *WellKnownHandler) Document(c *gin.Context) {
	c.Data(http.StatusOK, "text/plain; charset=utf-8", h.body)
}
