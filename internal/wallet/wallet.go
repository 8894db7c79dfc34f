// Package wallet resolves a Uid to its authorization methods: deriving the
// wallet id, fetching the access list from NEAR's registry contract, and
// checking the caller supplied a proof for every auth method it lists.
package wallet

import (
	"context"
	"fmt"

	"github.com/hot-dao/hot-validation-oracle/internal/oraclerr"
	"github.com/hot-dao/hot-validation-oracle/internal/oracletypes"
)

// WalletResolver is the subset of internal/verifiers/near.Pool this package
// needs, narrowed so callers can substitute a fake in tests.
type WalletResolver interface {
	GetWallet(ctx context.Context, walletID string) (oracletypes.WalletAuthMethods, error)
}

// Resolver fetches a wallet's auth methods and validates a proof against
// them before the orchestrator dispatches any per-method verification.
type Resolver struct {
	Near WalletResolver
}

// Resolve derives uid's wallet id, fetches its WalletAuthMethods, and
// checks that proof carries exactly one user_payload per auth method. The
// arity check runs after the single get_wallet call and before any
// per-auth-method verification call is made.
func (r Resolver) Resolve(ctx context.Context, uid oracletypes.Uid, proof oracletypes.ProofModel) (oracletypes.WalletAuthMethods, error) {
	walletID := uid.ToWalletId().String()

	wallet, err := r.Near.GetWallet(ctx, walletID)
	if err != nil {
		return oracletypes.WalletAuthMethods{}, fmt.Errorf("wallet: fetching auth methods for %s: %w", walletID, err)
	}

	if len(proof.UserPayloads) != len(wallet.AccessList) {
		return oracletypes.WalletAuthMethods{}, &oraclerr.ClientError{
			Reason: fmt.Sprintf("proof carries %d user_payloads but the wallet has %d auth methods", len(proof.UserPayloads), len(wallet.AccessList)),
		}
	}
	return wallet, nil
}
