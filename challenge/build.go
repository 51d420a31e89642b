// Package challenge builds, decodes and verifies the challenge transactions a
// client signs to prove control of its account. Challenges are transaction
// envelopes in shape only: sequence number 0 keeps them forever unsubmittable
// to the ledger, and a single 900-second time bound limits their life as a
// signing payload.
package challenge

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"

	"github.com/creda-technologies/hitch/core"
)

// Lifetime is the width of a challenge's time bound.
const Lifetime = 900 * time.Second

const nonceEntropy = 48 // base64-encodes to the 64-byte data entry value

// BuildParams carries everything needed to construct a challenge. There is no
// process-wide default configuration; callers supply all of it explicitly.
type BuildParams struct {
	ServerKeypair     *keypair.Full
	HomeDomain        string
	WebAuthDomain     string
	NetworkPassphrase string
	ClientAccount     string  // G or M strkey the challenge is issued for
	Memo              *uint64 // out-of-band sub-account tag, G accounts only
	ClientDomain      string  // optional attributed client domain
	ClientSigningKey  string  // required when ClientDomain is set
}

// Build constructs and server-signs a challenge transaction, returning its
// base64 XDR envelope. The transaction carries a `<home domain> auth` entry
// with a fresh random nonce sourced from the client account, a
// `web_auth_domain` entry sourced from the server, and, when a client domain
// is attributed, a `client_domain` entry sourced from that domain's published
// signing key.
func Build(p BuildParams) (string, error) {
	identity := core.ClaimedIdentity{Account: p.ClientAccount, Memo: p.Memo}
	if err := identity.Validate(); err != nil {
		return "", err
	}
	if p.ClientDomain != "" && p.ClientSigningKey == "" {
		return "", fmt.Errorf("%w: no signing key for %q", core.ErrDomainResolution, p.ClientDomain)
	}

	nonce := make([]byte, nonceEntropy)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating challenge nonce: %w", err)
	}

	ops := []txnbuild.Operation{
		&txnbuild.ManageData{
			SourceAccount: p.ClientAccount,
			Name:          p.HomeDomain + " auth",
			Value:         []byte(base64.StdEncoding.EncodeToString(nonce)),
		},
		&txnbuild.ManageData{
			SourceAccount: p.ServerKeypair.Address(),
			Name:          entryWebAuthDomain,
			Value:         []byte(p.WebAuthDomain),
		},
	}
	if p.ClientDomain != "" {
		ops = append(ops, &txnbuild.ManageData{
			SourceAccount: p.ClientSigningKey,
			Name:          entryClientDomain,
			Value:         []byte(p.ClientDomain),
		})
	}

	var memo txnbuild.Memo
	if p.Memo != nil {
		memo = txnbuild.MemoID(*p.Memo)
	}

	// Sequence -1 with IncrementSequenceNum lands the envelope on sequence 0.
	sourceAccount := txnbuild.SimpleAccount{
		AccountID: p.ServerKeypair.Address(),
		Sequence:  -1,
	}
	now := time.Now().UTC()
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &sourceAccount,
		IncrementSequenceNum: true,
		Operations:           ops,
		BaseFee:              txnbuild.MinBaseFee,
		Memo:                 memo,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimebounds(now.Unix(), now.Add(Lifetime).Unix()),
		},
	})
	if err != nil {
		return "", fmt.Errorf("building challenge transaction: %w", err)
	}

	tx, err = tx.Sign(p.NetworkPassphrase, p.ServerKeypair)
	if err != nil {
		return "", fmt.Errorf("signing challenge transaction: %w", err)
	}
	return tx.Base64()
}
