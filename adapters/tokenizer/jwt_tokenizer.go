package tokenizer

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/creda-technologies/hitch/core"
	"github.com/creda-technologies/hitch/ports"
)

// The issuer claim is the host URL suffixed with " auth", mirroring the
// `<home domain> auth` data entry convention of the challenge itself.
const issuerSuffix = " auth"

// JWTTokenizer implements the Tokenizer interface using HS256 JWTs with a
// symmetric secret configured out-of-band.
type JWTTokenizer struct {
	secret []byte
	issuer string
}

// NewJWTTokenizer creates a new JWT tokenizer issuing for the given host URL
func NewJWTTokenizer(secret []byte, hostURL string) ports.Tokenizer {
	return &JWTTokenizer{secret: secret, issuer: hostURL + issuerSuffix}
}

// SessionToToken converts a Session to a signed JWT. All claims come from the
// session, none from the wall clock, so the same session always produces a
// byte-identical token.
func (j *JWTTokenizer) SessionToToken(session *core.Session) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   session.Subject,
			ID:        session.ID,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
		ClientDomain: session.ClientDomain,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signedToken, nil
}

// TokenToSession parses and verifies a session JWT. Expiry is reported as
// core.ErrTokenExpired so callers can prompt re-authentication; every other
// failure collapses into core.ErrInvalidToken.
func (j *JWTTokenizer) TokenToSession(tokenStr string) (*core.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, core.ErrInvalidToken
	}
	if claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: incomplete claims", core.ErrInvalidToken)
	}

	return &core.Session{
		Subject:      claims.Subject,
		ClientDomain: claims.ClientDomain,
		IssuedAt:     claims.IssuedAt.Time,
		ExpiresAt:    claims.ExpiresAt.Time,
		ID:           claims.ID,
	}, nil
}
