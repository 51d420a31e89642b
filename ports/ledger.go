package ports

import (
	"context"

	"github.com/creda-technologies/hitch/core"
)

// AccountPolicySource resolves an account's live authorization policy from the
// ledger. Implementations return core.ErrAccountNotFound for accounts that do
// not exist; that outcome is expected and triggers the master-key fallback
// rather than a failure. Any other error is terminal for the request.
type AccountPolicySource interface {
	FetchPolicy(ctx context.Context, accountID string) (*core.AuthorizationPolicy, error)
}
