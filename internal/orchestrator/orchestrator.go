// Package orchestrator implements Verify, the oracle's single entry point:
// resolve a uid's wallet, check the proof's arity against its access list,
// and AND-aggregate the outcome of verifying every auth method — each of
// which may itself redirect to another chain via a NEAR AuthCall.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hot-dao/hot-validation-oracle/internal/events"
	"github.com/hot-dao/hot-validation-oracle/internal/metrics"
	"github.com/hot-dao/hot-validation-oracle/internal/oraclerr"
	"github.com/hot-dao/hot-validation-oracle/internal/oracletypes"
	"github.com/hot-dao/hot-validation-oracle/internal/verifiers/evm"
	"github.com/hot-dao/hot-validation-oracle/internal/verifiers/near"
	"github.com/hot-dao/hot-validation-oracle/internal/verifiers/solana"
	"github.com/hot-dao/hot-validation-oracle/internal/verifiers/stellar"
	"github.com/hot-dao/hot-validation-oracle/internal/verifiers/ton"
	"github.com/hot-dao/hot-validation-oracle/internal/wallet"
)

// HotVerifyMethodName is the default NEAR/EVM/Stellar method name invoked
// when an auth method's metadata doesn't override it.
const HotVerifyMethodName = "hot_verify"

// Orchestrator wires every chain's verifier pool together and dispatches a
// Verify call across them. One EVM pool per configured EVM chain id; at
// most one pool each for NEAR, Stellar, TON, and Solana (TON and Solana are
// never top-level auth methods, only AuthCall targets).
type Orchestrator struct {
	Wallet  wallet.Resolver
	Near    near.Pool
	Evm     map[uint64]evm.Pool
	Stellar stellar.Pool
	Ton     ton.Pool
	Solana  solana.Pool

	// Events publishes one outcome notification per Verify call. Nil
	// disables publication entirely.
	Events *events.Publisher
}

// Verify resolves uid's wallet, checks proof's arity, and concurrently
// verifies every auth method in the access list. It succeeds only if every
// auth method's verification succeeds; the first failure's error is
// returned once every in-flight verification has settled.
func (o *Orchestrator) Verify(ctx context.Context, uid oracletypes.Uid, messageHex string, proof oracletypes.ProofModel) error {
	timer := prometheusTimer(metrics.RPCVerifyTotalDuration)
	defer timer()

	correlationID := uuid.New().String()
	ctx = withCorrelationID(ctx, correlationID)
	walletID := uid.ToWalletId().String()

	wallet, err := o.Wallet.Resolve(ctx, uid, proof)
	if err != nil {
		o.publishOutcome(correlationID, walletID, err)
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, authMethod := range wallet.AccessList {
		authMethod := authMethod
		userPayload := proof.UserPayloads[i]
		g.Go(func() error {
			return o.verifyAuthMethod(ctx, uid.ToWalletId(), authMethod, proof.MessageBody, messageHex, userPayload)
		})
	}
	err = g.Wait()
	o.publishOutcome(correlationID, walletID, err)
	return err
}

// publishOutcome classifies err into an events.Outcome and fires it at the
// configured publisher, a no-op when Events is nil.
func (o *Orchestrator) publishOutcome(correlationID, walletID string, err error) {
	outcome := events.OutcomeVerified
	reason := ""
	switch {
	case err == nil:
	case oraclerr.AsVerificationDenied(err) != nil:
		outcome = events.OutcomeDenied
		reason = err.Error()
	case oraclerr.AsNoConsensus(err) != nil:
		outcome = events.OutcomeNoConsensus
		reason = err.Error()
	default:
		outcome = events.OutcomeError
		reason = err.Error()
	}
	o.Events.Publish(events.Event{
		CorrelationID: correlationID,
		WalletID:      walletID,
		Outcome:       outcome,
		Reason:        reason,
		ObservedAt:    time.Now().UTC(),
	})
}

// verifyAuthMethod dispatches a single access-list entry to its chain's
// verifier and enforces that it returned true.
func (o *Orchestrator) verifyAuthMethod(ctx context.Context, walletID oracletypes.WalletId, authMethod oracletypes.AuthMethod, messageBody, messageHex, userPayload string) error {
	timer := prometheusTimer(metrics.RPCSingleVerifyDuration)
	defer timer()

	metrics.VerifyTotalAttempts.WithLabelValues(authMethod.ChainID.Label()).Inc()

	var (
		status bool
		err    error
	)
	switch {
	case authMethod.ChainID.IsNear():
		status, err = o.handleNear(ctx, walletID, authMethod, messageHex, messageBody, userPayload)
	case authMethod.ChainID.IsStellar():
		input, buildErr := oracletypes.NewStellarInputData(messageHex, userPayload)
		if buildErr != nil {
			return buildErr
		}
		status, err = o.handleStellar(ctx, authMethod.AccountID, HotVerifyMethodName, input)
	case authMethod.ChainID.IsTon(), authMethod.ChainID.IsTonV2():
		return &oraclerr.ClientError{Reason: "TON cannot be used as a top-level auth method, only as an AuthCall target"}
	case authMethod.ChainID.IsSolana():
		return &oraclerr.ClientError{Reason: "Solana cannot be used as a top-level auth method, only as an AuthCall target"}
	case authMethod.ChainID.IsEvm():
		input, buildErr := oracletypes.NewEvmInputData(messageHex, userPayload)
		if buildErr != nil {
			return buildErr
		}
		status, err = o.handleEvm(ctx, authMethod.ChainID, authMethod.AccountID, HotVerifyMethodName, input)
	default:
		return &oraclerr.ClientError{Reason: fmt.Sprintf("unrecognized auth method chain %s", authMethod.ChainID)}
	}
	if err != nil {
		return fmt.Errorf("verifying auth method on %s: %w", authMethod.ChainID, err)
	}
	if !status {
		return &oraclerr.VerificationDenied{AuthMethod: authMethod.ChainID.String()}
	}
	metrics.VerifySuccessAttempts.WithLabelValues(authMethod.ChainID.Label()).Inc()
	return nil
}

// handleNear calls NEAR's hot_verify (or the metadata-overridden method
// name) and, if the result is an AuthCall indirection, re-dispatches to the
// chain it names.
func (o *Orchestrator) handleNear(ctx context.Context, walletID oracletypes.WalletId, authMethod oracletypes.AuthMethod, messageHex, messageBody, userPayload string) (bool, error) {
	methodName := HotVerifyMethodName
	if authMethod.Metadata != nil {
		var meta oracletypes.AuthMethodMetadata
		if err := unmarshalMetadata(*authMethod.Metadata, &meta); err == nil && meta.Method != "" {
			methodName = meta.Method
		}
	}

	msgHashBase58, err := hexToBase58(messageHex)
	if err != nil {
		return false, fmt.Errorf("near: %w", err)
	}

	wid := walletID.String()
	args := oracletypes.VerifyArgs{
		WalletID:    &wid,
		MsgHash:     msgHashBase58,
		Metadata:    authMethod.Metadata,
		UserPayload: userPayload,
		MsgBody:     messageBody,
	}

	result, err := o.Near.HotVerify(ctx, authMethod.AccountID, methodName, args)
	if err != nil {
		return false, fmt.Errorf("could not get HotVerifyResult from NEAR: %w", err)
	}
	if !result.IsAuthCall {
		return result.Result, nil
	}

	call := result.AuthCall
	switch {
	case call.ChainID.IsStellar():
		input, err := inputDataToStellar(call.Input)
		if err != nil {
			return false, err
		}
		return o.handleStellar(ctx, call.ContractID, call.Method, input)
	case call.ChainID.IsTon(), call.ChainID.IsTonV2():
		input, err := inputDataToTon(call.Input)
		if err != nil {
			return false, err
		}
		return o.handleTon(ctx, call.ContractID, call.Method, input)
	case call.ChainID.IsEvm():
		input, err := inputDataToEvm(call.Input)
		if err != nil {
			return false, err
		}
		return o.handleEvm(ctx, call.ChainID, call.ContractID, call.Method, input)
	case call.ChainID.IsSolana():
		input, err := inputDataToSolana(call.Input)
		if err != nil {
			return false, err
		}
		return o.handleSolana(ctx, call.ContractID, call.Method, input)
	case call.ChainID.IsNear():
		return false, &oraclerr.ClientError{Reason: "an AuthCall must not target NEAR"}
	default:
		return false, &oraclerr.ClientError{Reason: fmt.Sprintf("an AuthCall named an unrecognized chain %s", call.ChainID)}
	}
}

func (o *Orchestrator) handleStellar(ctx context.Context, contractID, method string, input oracletypes.StellarInputData) (bool, error) {
	status, err := o.Stellar.HotVerify(ctx, contractID, method, input)
	if err != nil {
		return false, fmt.Errorf("validation on stellar failed: %w", err)
	}
	return status, nil
}

func (o *Orchestrator) handleTon(ctx context.Context, contractID, method string, input oracletypes.TonInputData) (bool, error) {
	status, err := o.Ton.HotVerify(ctx, contractID, method, input)
	if err != nil {
		return false, fmt.Errorf("validation on ton failed: %w", err)
	}
	return status, nil
}

func (o *Orchestrator) handleSolana(ctx context.Context, contractID, method string, input oracletypes.SolanaInputData) (bool, error) {
	status, err := o.Solana.HotVerify(ctx, contractID, method, input)
	if err != nil {
		return false, fmt.Errorf("validation on solana failed: %w", err)
	}
	return status, nil
}

func (o *Orchestrator) handleEvm(ctx context.Context, chainID oracletypes.ChainId, contractID, method string, input oracletypes.EvmInputData) (bool, error) {
	evmChainID, ok := chainID.EvmChainID()
	if !ok {
		return false, fmt.Errorf("evm: %s is not an EVM chain id", chainID)
	}
	pool, ok := o.Evm[evmChainID]
	if !ok {
		return false, fmt.Errorf("evm validation is not configured for chain %s", chainID)
	}
	_ = method // EVM's ABI-encoded hot_verify has a fixed method name; no override exists on this chain.
	return pool.HotVerify(ctx, contractID, input)
}
