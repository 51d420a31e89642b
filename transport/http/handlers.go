package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/creda-technologies/hitch/core"
	"github.com/creda-technologies/hitch/service"
)

// AuthHandlers contains HTTP handlers for the web authentication endpoints
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
	}
}

// Challenge handles the challenge request: GET /auth
func (h *AuthHandlers) Challenge(c *gin.Context) {
	var req struct {
		Account      string `form:"account" binding:"required"`
		Memo         string `form:"memo"`
		ClientDomain string `form:"client_domain"`
		HomeDomain   string `form:"home_domain"`
	}

	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid request parameters"})
		return
	}

	identity := core.ClaimedIdentity{
		Account:      req.Account,
		ClientDomain: req.ClientDomain,
	}
	if req.Memo != "" {
		memo, err := strconv.ParseUint(req.Memo, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid memo"})
			return
		}
		identity.Memo = &memo
	}

	transaction, networkPassphrase, err := h.authService.CreateChallenge(c.Request.Context(), identity, req.HomeDomain)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transaction":        transaction,
		"network_passphrase": networkPassphrase,
	})
}

// Token handles challenge submission: POST /auth
func (h *AuthHandlers) Token(c *gin.Context) {
	var req struct {
		Transaction string `json:"transaction" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing signed challenge transaction"})
		return
	}

	token, err := h.authService.VerifyChallenge(c.Request.Context(), req.Transaction)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Session returns the identity behind the presented session token
func (h *AuthHandlers) Session(c *gin.Context) {
	value, exists := c.Get(identityKey)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Identity not found in context"})
		return
	}
	identity := value.(*core.ClaimedIdentity)

	resp := gin.H{"account": identity.Account}
	if identity.Memo != nil {
		resp["memo"] = strconv.FormatUint(*identity.Memo, 10)
	}
	if identity.ClientDomain != "" {
		resp["client_domain"] = identity.ClientDomain
	}
	c.JSON(http.StatusOK, resp)
}

// statusForError maps the error taxonomy onto fixed HTTP statuses: 400 for
// malformed, attribution and structural failures, 401 for signature and token
// failures. Anything unrecognized is an internal error and its detail stays
// out of the response.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrInvalidAccount),
		errors.Is(err, core.ErrInvalidMemo),
		errors.Is(err, core.ErrClientDomainRequired),
		errors.Is(err, core.ErrClientDomainNotAllowed),
		errors.Is(err, core.ErrDomainResolution),
		errors.Is(err, core.ErrInvalidChallenge):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, core.ErrInsufficientWeight),
		errors.Is(err, core.ErrSignatureCount),
		errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrTokenExpired),
		errors.Is(err, core.ErrUnattributedToken),
		errors.Is(err, core.ErrMissingCredentials):
		return http.StatusUnauthorized, err.Error()
	}
	return http.StatusInternalServerError, "Internal error"
}
