package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/stellar/go/keypair"

	"github.com/creda-technologies/hitch/challenge"
	"github.com/creda-technologies/hitch/core"
	"github.com/creda-technologies/hitch/ports"
)

// Config carries the authentication parameters of one deployment. It is
// passed explicitly at construction; there is no process-wide default.
type Config struct {
	ServerKeypair             *keypair.Full
	HomeDomain                string
	WebAuthDomain             string
	HostURL                   string
	NetworkPassphrase         string
	AllowedClientDomains      []string
	ClientAttributionRequired bool
}

// AuthService handles challenge issuance, challenge verification and session
// token validation. It holds no mutable state; every call stands alone and is
// safe to run concurrently with any other.
type AuthService struct {
	cfg       Config
	verifier  *challenge.Verifier
	tokenizer ports.Tokenizer
	resolver  ports.SigningKeyResolver
	eventPub  ports.EventPublisher
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	cfg Config,
	policies ports.AccountPolicySource,
	resolver ports.SigningKeyResolver,
	tokenizer ports.Tokenizer,
	eventPub ports.EventPublisher,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		cfg: cfg,
		verifier: &challenge.Verifier{
			Policies:          policies,
			ServerAccountID:   cfg.ServerKeypair.Address(),
			NetworkPassphrase: cfg.NetworkPassphrase,
			WebAuthDomain:     cfg.WebAuthDomain,
			HomeDomains:       []string{cfg.HomeDomain},
		},
		tokenizer: tokenizer,
		resolver:  resolver,
		eventPub:  eventPub,
		logger:    logger,
	}
}

// CreateChallenge builds a server-signed challenge transaction for the claimed
// identity and returns its base64 XDR envelope with the network passphrase.
// homeDomain is optional; a value other than the configured home domain is
// rejected. When a client domain is attributed, its signing key is resolved
// from the domain's well-known metadata before anything is built.
func (s *AuthService) CreateChallenge(ctx context.Context, identity core.ClaimedIdentity, homeDomain string) (string, string, error) {
	if err := identity.Validate(); err != nil {
		return "", "", err
	}
	if homeDomain != "" && homeDomain != s.cfg.HomeDomain {
		return "", "", fmt.Errorf("%w: unsupported home domain %q", core.ErrInvalidChallenge, homeDomain)
	}
	if s.cfg.ClientAttributionRequired {
		if identity.ClientDomain == "" {
			return "", "", core.ErrClientDomainRequired
		}
		if !s.domainAllowed(identity.ClientDomain) {
			return "", "", fmt.Errorf("%w: %q", core.ErrClientDomainNotAllowed, identity.ClientDomain)
		}
	}

	var clientSigningKey string
	if identity.ClientDomain != "" {
		key, err := s.resolver.ResolveSigningKey(ctx, identity.ClientDomain)
		if err != nil {
			return "", "", err
		}
		clientSigningKey = key
	}

	envelope, err := challenge.Build(challenge.BuildParams{
		ServerKeypair:     s.cfg.ServerKeypair,
		HomeDomain:        s.cfg.HomeDomain,
		WebAuthDomain:     s.cfg.WebAuthDomain,
		NetworkPassphrase: s.cfg.NetworkPassphrase,
		ClientAccount:     identity.Account,
		Memo:              identity.Memo,
		ClientDomain:      identity.ClientDomain,
		ClientSigningKey:  clientSigningKey,
	})
	if err != nil {
		return "", "", err
	}
	return envelope, s.cfg.NetworkPassphrase, nil
}

// VerifyChallenge verifies a signed challenge envelope against the claimed
// account's live authorization policy and returns a session token whose
// claims are deterministic functions of the challenge.
func (s *AuthService) VerifyChallenge(ctx context.Context, signedXDR string) (string, error) {
	clientDomain, err := s.verifier.Verify(ctx, signedXDR)
	if err != nil {
		return "", err
	}

	session, err := s.deriveSession(signedXDR, clientDomain)
	if err != nil {
		return "", err
	}

	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		return "", fmt.Errorf("failed to create session token: %w", err)
	}

	if err := s.eventPub.PublishSessionIssued(ctx, session.Subject, session.ClientDomain, session.ID); err != nil {
		// the session is already issued; losing the notification is tolerable
		s.logger.Warn("failed to publish session event", "subject", session.Subject, "error", err)
	}
	return token, nil
}

// deriveSession re-parses the already-verified envelope so that repeated
// derivations for the same signed challenge produce identical claims.
func (s *AuthService) deriveSession(signedXDR, clientDomain string) (*core.Session, error) {
	parsed, err := challenge.Read(signedXDR, s.cfg.ServerKeypair.Address(), s.cfg.NetworkPassphrase,
		s.cfg.WebAuthDomain, []string{s.cfg.HomeDomain})
	if err != nil {
		return nil, err
	}
	hash, err := parsed.Tx.Hash(s.cfg.NetworkPassphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidChallenge, err)
	}

	identity := core.ClaimedIdentity{Account: parsed.ClientAccount, Memo: parsed.Memo}
	issuedAt := time.Unix(parsed.Tx.Timebounds().MinTime, 0).UTC()

	return &core.Session{
		Subject:      identity.Subject(),
		ClientDomain: clientDomain,
		IssuedAt:     issuedAt,
		ExpiresAt:    issuedAt.Add(core.SessionLifetime),
		ID:           hex.EncodeToString(hash[:]),
	}, nil
}

// ValidateToken verifies a session token and reconstructs the identity it was
// issued for. When client attribution is mandatory, tokens without an allowed
// client domain are rejected even if otherwise valid.
func (s *AuthService) ValidateToken(token string) (*core.ClaimedIdentity, error) {
	session, err := s.tokenizer.TokenToSession(token)
	if err != nil {
		return nil, err
	}

	if s.cfg.ClientAttributionRequired && !s.domainAllowed(session.ClientDomain) {
		return nil, fmt.Errorf("%w: %q", core.ErrUnattributedToken, session.ClientDomain)
	}

	identity, err := core.IdentityFromSubject(session.Subject, session.ClientDomain)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", core.ErrInvalidToken)
	}
	return &identity, nil
}

func (s *AuthService) domainAllowed(domain string) bool {
	for _, allowed := range s.cfg.AllowedClientDomains {
		if domain == allowed {
			return true
		}
	}
	return false
}
