package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

var domainPattern = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)

// ClaimedIdentity identifies the party a challenge is issued for. Account is a
// Stellar strkey: either an ed25519 public key (G...) or a multiplexed account
// (M...) embedding a 64-bit sub-account tag. Memo carries the tag out-of-band
// for plain accounts; it is never combined with a multiplexed identifier.
type ClaimedIdentity struct {
	Account      string
	Memo         *uint64
	ClientDomain string
}

// Validate checks the account encoding and the memo/multiplexing invariant.
func (id ClaimedIdentity) Validate() error {
	switch {
	case strings.HasPrefix(id.Account, "G"):
		if !strkey.IsValidEd25519PublicKey(id.Account) {
			return fmt.Errorf("%w: %q", ErrInvalidAccount, id.Account)
		}
	case strings.HasPrefix(id.Account, "M"):
		if _, err := xdr.AddressToMuxedAccount(id.Account); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidAccount, id.Account)
		}
		if id.Memo != nil {
			return fmt.Errorf("%w: multiplexed account cannot carry a memo", ErrInvalidMemo)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAccount, id.Account)
	}
	if id.ClientDomain != "" && !domainPattern.MatchString(id.ClientDomain) {
		return fmt.Errorf("%w: invalid domain %q", ErrClientDomainNotAllowed, id.ClientDomain)
	}
	return nil
}

// Subject renders the identity in token-subject form: the account alone, or
// account:memo when an out-of-band sub-account tag is present.
func (id ClaimedIdentity) Subject() string {
	if id.Memo != nil && !strings.HasPrefix(id.Account, "M") {
		return fmt.Sprintf("%s:%d", id.Account, *id.Memo)
	}
	return id.Account
}

// IdentityFromSubject reverses Subject, reattaching the client domain.
func IdentityFromSubject(subject, clientDomain string) (ClaimedIdentity, error) {
	account, rawMemo, found := strings.Cut(subject, ":")
	id := ClaimedIdentity{Account: account, ClientDomain: clientDomain}
	if found {
		memo, err := strconv.ParseUint(rawMemo, 10, 64)
		if err != nil {
			return ClaimedIdentity{}, fmt.Errorf("%w: subject memo %q", ErrInvalidMemo, rawMemo)
		}
		id.Memo = &memo
	}
	if err := id.Validate(); err != nil {
		return ClaimedIdentity{}, err
	}
	return id, nil
}

// PrimaryAccount returns the ed25519 account underlying an identifier: the
// account itself for G addresses, the demultiplexed inner account for M
// addresses. Authorization policy lives on the primary account.
func PrimaryAccount(account string) (string, error) {
	if strings.HasPrefix(account, "M") {
		muxed, err := xdr.AddressToMuxedAccount(account)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidAccount, account)
		}
		inner := muxed.ToAccountId()
		return inner.Address(), nil
	}
	if !strkey.IsValidEd25519PublicKey(account) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccount, account)
	}
	return account, nil
}
