// Package solana implements the Solana verifier: a Deposit is checked by
// simulating an unsigned hot_verify_deposit instruction built with the same
// PDA derivation the on-chain Anchor program uses, and a
// CheckCompletedWithdrawal is checked by reading the depositor's `User` PDA
// account and comparing nonces directly, no simulation involved.
package solana

import (
	"context"
	"fmt"
	"math/big"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/hot-dao/hot-validation-oracle/internal/oracletypes"
	"github.com/hot-dao/hot-validation-oracle/internal/threshold"
)

// Endpoint is a single Solana RPC server.
type Endpoint struct {
	URL    string
	client *rpc.Client
}

// NewEndpoint builds an Endpoint wrapping a pooled gagliardetto RPC client.
func NewEndpoint(url string) Endpoint {
	return Endpoint{URL: url, client: rpc.New(url)}
}

func (e Endpoint) label() string { return e.URL }

func (e Endpoint) handleDeposit(ctx context.Context, programID solanago.PublicKey, method string, dep oracletypes.DepositWithProof) (bool, error) {
	sender := solanago.PublicKey(dep.Sender)
	receiver := solanago.PublicKey(dep.Receiver)
	tokenID := solanago.PublicKey(dep.TokenID)

	deposit, err := depositPDA(programID, dep.Nonce, sender, receiver, tokenID, dep.Amount)
	if err != nil {
		return false, err
	}
	user, err := userPDA(programID, sender)
	if err != nil {
		return false, err
	}
	state, err := statePDA(programID)
	if err != nil {
		return false, err
	}

	data, err := encodeDepositInstructionData(method, dep)
	if err != nil {
		return false, err
	}

	instruction := solanago.GenericInstruction{
		ProgID: programID,
		AccountValues: []*solanago.AccountMeta{
			{PublicKey: sender, IsSigner: true, IsWritable: true},
			{PublicKey: deposit, IsSigner: false, IsWritable: false},
			{PublicKey: user, IsSigner: false, IsWritable: false},
			{PublicKey: state, IsSigner: false, IsWritable: true},
		},
		DataBytes: data,
	}

	latest, err := e.client.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return false, fmt.Errorf("solana: fetching latest blockhash from %s: %w", e.URL, err)
	}

	tx, err := solanago.NewTransaction(
		[]solanago.Instruction{&instruction},
		latest.Value.Blockhash,
		solanago.TransactionPayer(sender),
	)
	if err != nil {
		return false, fmt.Errorf("solana: building transaction: %w", err)
	}

	resp, err := e.client.SimulateTransactionWithOpts(ctx, tx, &rpc.SimulateTransactionOpts{
		SigVerify:              false,
		ReplaceRecentBlockhash: true,
		Commitment:             rpc.CommitmentConfirmed,
	})
	if err != nil {
		return false, fmt.Errorf("solana: simulating transaction on %s: %w", e.URL, err)
	}
	if resp.Value.Err != nil {
		return false, fmt.Errorf("solana: simulated transaction failed: %v", resp.Value.Err)
	}
	return true, nil
}

func (e Endpoint) handleCompletedWithdrawal(ctx context.Context, programID solanago.PublicKey, withdrawal oracletypes.CompletedWithdrawal) (bool, error) {
	user, err := userPDA(programID, solanago.PublicKey(withdrawal.ReceiverAddress))
	if err != nil {
		return false, err
	}

	info, err := e.client.GetAccountInfo(ctx, user)
	if err != nil {
		return false, fmt.Errorf("solana: fetching account %s from %s: %w", user, e.URL, err)
	}
	if info == nil || info.Value == nil {
		return false, fmt.Errorf("solana: account %s does not exist", user)
	}
	raw := info.Value.Data.GetBinary()

	account, err := decodeUserAccount(raw)
	if err != nil {
		return false, err
	}

	nonceBytes, err := nonceBE(withdrawal.Nonce)
	if err != nil {
		return false, err
	}
	nonce := new(big.Int).SetBytes(nonceBytes[:])
	if nonce.Cmp(account.LastWithdrawNonce) > 0 {
		return false, fmt.Errorf("solana: nonce %s exceeds last withdrawn nonce %s", nonce, account.LastWithdrawNonce)
	}
	return true, nil
}

// HotVerify dispatches to the Deposit or CheckCompletedWithdrawal handler.
func (e Endpoint) HotVerify(ctx context.Context, authContractID, method string, input oracletypes.SolanaInputData) (bool, error) {
	programID, err := solanago.PublicKeyFromBase58(authContractID)
	if err != nil {
		return false, fmt.Errorf("solana: auth contract id: %w", err)
	}

	switch input.Action {
	case oracletypes.SolanaActionDeposit:
		if input.Deposit == nil {
			return false, fmt.Errorf("solana: deposit action with no deposit payload")
		}
		return e.handleDeposit(ctx, programID, method, *input.Deposit)
	case oracletypes.SolanaActionCheckCompletedWithdrawal:
		if input.Withdrawal == nil {
			return false, fmt.Errorf("solana: withdrawal action with no withdrawal payload")
		}
		return e.handleCompletedWithdrawal(ctx, programID, *input.Withdrawal)
	default:
		return false, fmt.Errorf("solana: unrecognized action %v", input.Action)
	}
}

// Pool fans HotVerify out across a redundant set of Solana endpoints for one
// chain, accepting a result once Threshold endpoints agree.
type Pool struct {
	Threshold int
	Endpoints []Endpoint
}

func (p Pool) HotVerify(ctx context.Context, authContractID, method string, input oracletypes.SolanaInputData) (bool, error) {
	coord := threshold.Coordinator[Endpoint, bool]{
		Threshold: p.Threshold,
		Verifiers: p.Endpoints,
		Label:     Endpoint.label,
	}
	return coord.Call(ctx, func(ctx context.Context, e Endpoint) (bool, error) {
		return e.HotVerify(ctx, authContractID, method, input)
	})
}
