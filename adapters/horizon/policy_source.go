package horizon

import (
	"context"
	"fmt"

	"github.com/stellar/go/clients/horizonclient"

	"github.com/creda-technologies/hitch/core"
)

const ed25519SignerType = "ed25519_public_key"

// PolicySource loads account authorization policy from a Horizon instance.
// Policy is fetched fresh per call; nothing is cached between requests.
type PolicySource struct {
	client horizonclient.ClientInterface
}

// NewPolicySource creates a Horizon-backed policy source
func NewPolicySource(client horizonclient.ClientInterface) *PolicySource {
	return &PolicySource{client: client}
}

// FetchPolicy returns the account's ed25519 signer set and medium threshold,
// or core.ErrAccountNotFound for accounts absent from the ledger.
func (s *PolicySource) FetchPolicy(ctx context.Context, accountID string) (*core.AuthorizationPolicy, error) {
	account, err := s.client.AccountDetail(horizonclient.AccountRequest{AccountID: accountID})
	if err != nil {
		if horizonclient.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("loading account %s: %w", accountID, err)
	}

	policy := &core.AuthorizationPolicy{
		MediumThreshold: int32(account.Thresholds.MedThreshold),
	}
	for _, signer := range account.Signers {
		// non-ed25519 signers (hashes, pre-auth transactions) cannot sign a
		// challenge and carry no weight here
		if signer.Type != ed25519SignerType {
			continue
		}
		policy.Signers = append(policy.Signers, core.Signer{
			Address: signer.Key,
			Weight:  signer.Weight,
		})
	}
	return policy, nil
}
