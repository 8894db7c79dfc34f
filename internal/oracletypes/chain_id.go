// Package oracletypes holds the wire-level primitive types shared by every
// verifier and the orchestrator: chain identifiers, wallet/uid codecs, the
// auth-method registry shape, and the per-chain input/result sum types.
package oracletypes

import (
	"encoding/json"
	"fmt"
)

// ChainId is a tagged union over the chains the oracle can verify against.
// It serializes to and from a single unsigned integer (see FromUint64/Uint64).
//
// TonV2 is modeled as an EVM-shaped chain for routing purposes: its numeric
// id (1117) falls into the EVM range, but it must be matched as TonV2 before
// the general Evm arm whenever the two need to be told apart.
type ChainId struct {
	kind chainKind
	evm  uint64 // only meaningful when kind == chainKindEvm
}

type chainKind uint8

const (
	chainKindNear chainKind = iota
	chainKindSolana
	chainKindStellar
	chainKindTon
	chainKindTonV2
	chainKindEvm
)

const (
	nearID    uint64 = 0
	solanaID  uint64 = 1001
	stellarID uint64 = 1100
	tonID     uint64 = 1111
	tonV2ID   uint64 = 1117
)

var (
	Near    = ChainId{kind: chainKindNear}
	Solana  = ChainId{kind: chainKindSolana}
	Stellar = ChainId{kind: chainKindStellar}
	Ton     = ChainId{kind: chainKindTon}
	TonV2   = ChainId{kind: chainKindTonV2, evm: tonV2ID}
)

// Evm builds an Evm(n) chain id. Passing 1117 returns TonV2, matching the
// source's "TonV2 = Evm(1117)" constant and the requirement that TonV2 be
// indistinguishable from Evm(1117) on the wire.
func Evm(n uint64) ChainId {
	if n == tonV2ID {
		return TonV2
	}
	return ChainId{kind: chainKindEvm, evm: n}
}

// FromUint64 decodes the numeric wire representation of a ChainId.
func FromUint64(n uint64) ChainId {
	switch n {
	case nearID:
		return Near
	case solanaID:
		return Solana
	case stellarID:
		return Stellar
	case tonID:
		return Ton
	case tonV2ID:
		return TonV2
	default:
		return ChainId{kind: chainKindEvm, evm: n}
	}
}

// Uint64 encodes the ChainId back to its numeric wire representation.
func (c ChainId) Uint64() uint64 {
	switch c.kind {
	case chainKindNear:
		return nearID
	case chainKindSolana:
		return solanaID
	case chainKindStellar:
		return stellarID
	case chainKindTon:
		return tonID
	case chainKindTonV2:
		return tonV2ID
	case chainKindEvm:
		return c.evm
	default:
		return 0
	}
}

// IsNear, IsSolana, IsStellar, IsTon report the chain's variant. TonV2 counts
// as its own distinct variant, never as IsTon or as a generic EVM chain via
// IsEvm unless explicitly checked with IsTonV2.
func (c ChainId) IsNear() bool    { return c.kind == chainKindNear }
func (c ChainId) IsSolana() bool  { return c.kind == chainKindSolana }
func (c ChainId) IsStellar() bool { return c.kind == chainKindStellar }
func (c ChainId) IsTon() bool     { return c.kind == chainKindTon }
func (c ChainId) IsTonV2() bool   { return c.kind == chainKindTonV2 }

// IsEvm reports whether this is a general Evm(n) chain. It deliberately
// excludes TonV2 even though TonV2 is Evm-shaped on the wire — callers that
// need to dispatch TonV2 like an EVM chain must check IsTonV2 first, per the
// "TonV2 arm must be matched before the general Evm arm" dispatch rule.
func (c ChainId) IsEvm() bool { return c.kind == chainKindEvm }

// EvmChainID returns the numeric EVM chain id for an Evm(n) or TonV2 chain.
func (c ChainId) EvmChainID() (uint64, bool) {
	if c.kind == chainKindEvm || c.kind == chainKindTonV2 {
		return c.evm, true
	}
	return 0, false
}

func (c ChainId) String() string {
	switch c.kind {
	case chainKindNear:
		return "near"
	case chainKindSolana:
		return "solana"
	case chainKindStellar:
		return "stellar"
	case chainKindTon:
		return "ton"
	case chainKindTonV2:
		return "ton_v2"
	default:
		return fmt.Sprintf("evm(%d)", c.evm)
	}
}

// Label returns the numeric wire value as a string, for use as a Prometheus
// label value (`chain_id` in the metrics surface is the integer, not the
// variant name).
func (c ChainId) Label() string {
	return fmt.Sprintf("%d", c.Uint64())
}

func (c ChainId) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Uint64())
}

func (c *ChainId) UnmarshalJSON(data []byte) error {
	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("chain id must be an unsigned integer: %w", err)
	}
	*c = FromUint64(n)
	return nil
}
