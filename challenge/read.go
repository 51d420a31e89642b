package challenge

import (
	"fmt"

	"github.com/stellar/go/txnbuild"

	"github.com/creda-technologies/hitch/core"
)

// Data entry keys a challenge may carry. Anything else in the operation list
// is rejected during the structural decode.
const (
	entryWebAuthDomain = "web_auth_domain"
	entryClientDomain  = "client_domain"
)

// Parsed is a structurally-validated challenge: the decoded transaction plus
// the fields later stages need. ClientAccount preserves the full identifier
// (including a multiplexed tag) for token derivation.
type Parsed struct {
	Tx            *txnbuild.Transaction
	ClientAccount string
	HomeDomain    string
	Memo          *uint64
	ClientDomain  string
}

// Read decodes a signed challenge envelope and enforces its structural
// invariants: envelope signed by the server account, sequence number 0, live
// time bounds, a `<home domain> auth` entry naming one of homeDomains, and a
// matching `web_auth_domain` entry. The optional `client_domain` entry is
// extracted by explicit key match; nothing is inferred from entry position.
func Read(signedXDR, serverAccountID, networkPassphrase, webAuthDomain string, homeDomains []string) (*Parsed, error) {
	tx, clientAccount, homeDomain, memo, err := txnbuild.ReadChallengeTx(
		signedXDR, serverAccountID, networkPassphrase, webAuthDomain, homeDomains,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidChallenge, err)
	}

	parsed := &Parsed{
		Tx:            tx,
		ClientAccount: clientAccount,
		HomeDomain:    homeDomain,
	}
	if memo != nil {
		v := uint64(*memo)
		parsed.Memo = &v
	}

	for _, op := range tx.Operations() {
		entry, ok := op.(*txnbuild.ManageData)
		if !ok {
			// unreachable after ReadChallengeTx, which admits only manage-data ops
			return nil, fmt.Errorf("%w: non data entry operation", core.ErrInvalidChallenge)
		}
		if entry.Name == entryClientDomain {
			parsed.ClientDomain = string(entry.Value)
			break
		}
	}
	return parsed, nil
}
