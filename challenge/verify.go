package challenge

import (
	"context"
	"errors"
	"fmt"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/xdr"

	"github.com/creda-technologies/hitch/core"
	"github.com/creda-technologies/hitch/ports"
)

// Verification proceeds through an explicit state machine rather than
// branching on recovered errors. The policy-absent fallback exists because an
// unfunded account has no on-ledger signer set to weigh against: the account's
// implicit master-key rule substitutes for the threshold, and a strict
// signature-count bound compensates for the lost weighting so extra unrelated
// signatures cannot ride along.
type state int

const (
	stateStructuralCheck state = iota
	statePolicyLookup
	statePolicyExists
	statePolicyAbsentFallback
	stateSuccess
	stateFailed
)

// Verifier checks signed challenges against live account policy.
type Verifier struct {
	Policies          ports.AccountPolicySource
	ServerAccountID   string
	NetworkPassphrase string
	WebAuthDomain     string
	HomeDomains       []string
}

type verification struct {
	parsed  *Parsed
	hash    [32]byte
	primary string
	policy  *core.AuthorizationPolicy
	err     error
}

// Verify validates a signed challenge envelope end to end and returns the
// attributed client domain, empty when none was embedded. Policy is fetched
// fresh on every call. A challenge that verifies remains replayable until its
// time bound lapses; no consumed-nonce record is kept, and a replay mints a
// token with identical claims.
func (v *Verifier) Verify(ctx context.Context, signedXDR string) (string, error) {
	run := &verification{}
	for st := stateStructuralCheck; ; {
		switch st {
		case stateStructuralCheck:
			st = v.structuralCheck(signedXDR, run)
		case statePolicyLookup:
			st = v.policyLookup(ctx, run)
		case statePolicyExists:
			st = v.verifyThreshold(run)
		case statePolicyAbsentFallback:
			st = v.verifyMasterKeyFallback(run)
		case stateSuccess:
			return run.parsed.ClientDomain, nil
		case stateFailed:
			return "", run.err
		}
	}
}

func (v *Verifier) structuralCheck(signedXDR string, run *verification) state {
	parsed, err := Read(signedXDR, v.ServerAccountID, v.NetworkPassphrase, v.WebAuthDomain, v.HomeDomains)
	if err != nil {
		run.err = err
		return stateFailed
	}
	hash, err := parsed.Tx.Hash(v.NetworkPassphrase)
	if err != nil {
		run.err = fmt.Errorf("%w: %v", core.ErrInvalidChallenge, err)
		return stateFailed
	}
	primary, err := core.PrimaryAccount(parsed.ClientAccount)
	if err != nil {
		run.err = err
		return stateFailed
	}
	run.parsed = parsed
	run.hash = hash
	run.primary = primary
	return statePolicyLookup
}

func (v *Verifier) policyLookup(ctx context.Context, run *verification) state {
	policy, err := v.Policies.FetchPolicy(ctx, run.primary)
	switch {
	case errors.Is(err, core.ErrAccountNotFound):
		return statePolicyAbsentFallback
	case err != nil:
		run.err = fmt.Errorf("fetching policy for account %s: %w", run.primary, err)
		return stateFailed
	}
	run.policy = policy
	return statePolicyExists
}

// verifyThreshold sums the weights of policy signers with a valid signature on
// the challenge. Signatures from keys outside the signer set carry no weight
// but do not invalidate the rest. The server's own key never counts toward the
// client's weight, even if the account lists it as a signer.
func (v *Verifier) verifyThreshold(run *verification) state {
	signatures := run.parsed.Tx.Signatures()
	seen := map[string]bool{}
	var weight int32
	for _, signer := range run.policy.Signers {
		if signer.Address == v.ServerAccountID || seen[signer.Address] {
			continue
		}
		seen[signer.Address] = true
		if anySignatureBy(run.hash, signatures, signer.Address) {
			weight += signer.Weight
		}
	}
	if weight < run.policy.MediumThreshold {
		run.err = fmt.Errorf("%w: account %s signed weight %d of required %d",
			core.ErrInsufficientWeight, run.parsed.ClientAccount, weight, run.policy.MediumThreshold)
		return stateFailed
	}
	return stateSuccess
}

// verifyMasterKeyFallback handles accounts absent from the ledger: the key
// embedded in the account identifier must have signed, and the envelope must
// carry exactly the expected signatures (server plus client master key, plus
// the client domain key when one was attributed).
func (v *Verifier) verifyMasterKeyFallback(run *verification) state {
	signatures := run.parsed.Tx.Signatures()
	if !anySignatureBy(run.hash, signatures, run.primary) {
		run.err = fmt.Errorf("%w: missing or invalid master key signature for account %s",
			core.ErrInsufficientWeight, run.parsed.ClientAccount)
		return stateFailed
	}
	want := 2
	if run.parsed.ClientDomain != "" {
		want = 3
	}
	if len(signatures) != want {
		run.err = fmt.Errorf("%w: got %d signatures, want %d for nonexistent account %s",
			core.ErrSignatureCount, len(signatures), want, run.parsed.ClientAccount)
		return stateFailed
	}
	return stateSuccess
}

// anySignatureBy reports whether any decorated signature verifies under the
// given address. Hints narrow the candidates but never decide alone.
func anySignatureBy(hash [32]byte, signatures []xdr.DecoratedSignature, address string) bool {
	kp, err := keypair.ParseAddress(address)
	if err != nil {
		return false
	}
	hint := xdr.SignatureHint(kp.Hint())
	for _, sig := range signatures {
		if sig.Hint != hint {
			continue
		}
		if kp.Verify(hash[:], []byte(sig.Signature)) == nil {
			return true
		}
	}
	return false
}
