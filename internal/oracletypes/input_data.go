package oracletypes

import (
	"encoding/hex"
	"fmt"
)

// EvmArgKind tags a single EVM ABI argument as either a fixed-width or
// dynamic-length byte string, mirroring the source's tagged
// `{"type":"bytes32"|"bytes","value":hex}` shape.
type EvmArgKind string

const (
	EvmArgFixedBytes32 EvmArgKind = "bytes32"
	EvmArgBytes        EvmArgKind = "bytes"
)

// EvmInputArg is one ABI-encodable argument to hot_verify.
type EvmInputArg struct {
	Kind EvmArgKind
	Data []byte
}

// EvmInputData is the ordered argument list ABI-encoded for EVM's
// hot_verify(bytes32,bytes,bytes,bytes)->bool. walletId and metadata are
// always empty per §4.3.2; only msg_hash and user_payload carry content.
type EvmInputData struct {
	Args []EvmInputArg
}

// NewEvmInputData builds the fixed four-argument layout hot_verify expects.
func NewEvmInputData(messageHex, userPayloadHex string) (EvmInputData, error) {
	msgHash, err := hex.DecodeString(trim0x(messageHex))
	if err != nil {
		return EvmInputData{}, fmt.Errorf("evm input: invalid message hex: %w", err)
	}
	userPayload, err := hex.DecodeString(trim0x(userPayloadHex))
	if err != nil {
		return EvmInputData{}, fmt.Errorf("evm input: invalid user payload hex: %w", err)
	}
	return EvmInputData{Args: []EvmInputArg{
		{Kind: EvmArgFixedBytes32, Data: msgHash},
		{Kind: EvmArgBytes, Data: nil},
		{Kind: EvmArgBytes, Data: userPayload},
		{Kind: EvmArgBytes, Data: nil},
	}}, nil
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// StellarArgKind tags a Soroban ScVal argument.
type StellarArgKind string

const (
	StellarArgString StellarArgKind = "string"
	StellarArgBytes  StellarArgKind = "bytes"
)

// StellarInputArg is one Soroban ScVal argument, built from a hex payload.
type StellarInputArg struct {
	Kind StellarArgKind
	Data []byte
}

// StellarInputData is the ordered ScVal argument list for the Soroban
// contract call.
type StellarInputData struct {
	Args []StellarInputArg
}

// NewStellarInputData builds the two-argument layout (msg_hash as a String
// ScVal, user_payload as a Bytes ScVal) used by the bridge's Soroban auth
// contracts.
func NewStellarInputData(messageHex, userPayloadHex string) (StellarInputData, error) {
	msgHash, err := hex.DecodeString(trim0x(messageHex))
	if err != nil {
		return StellarInputData{}, fmt.Errorf("stellar input: invalid message hex: %w", err)
	}
	userPayload, err := hex.DecodeString(trim0x(userPayloadHex))
	if err != nil {
		return StellarInputData{}, fmt.Errorf("stellar input: invalid user payload hex: %w", err)
	}
	return StellarInputData{Args: []StellarInputArg{
		{Kind: StellarArgString, Data: msgHash},
		{Kind: StellarArgBytes, Data: userPayload},
	}}, nil
}

// SolanaAction discriminates the two Solana verification modes.
type SolanaAction int

const (
	SolanaActionDeposit SolanaAction = iota
	SolanaActionCheckCompletedWithdrawal
)

// DepositWithProof is the Borsh-serialized payload accompanying a Solana
// deposit verification instruction. Nonce is carried as a decimal string:
// every nonce in this system is u128-scale (see the source's
// `integer::u128_string` serde helper) and overflows uint64.
type DepositWithProof struct {
	Proof    [32]byte
	Nonce    string
	Sender   [32]byte
	Receiver [32]byte
	TokenID  [32]byte
	Amount   uint64
}

// CompletedWithdrawal names the nonce whose completion is being checked
// against a user's on-chain withdrawal-nonce account, and the receiver
// address whose "user" PDA holds that account.
type CompletedWithdrawal struct {
	Nonce           string
	ReceiverAddress [32]byte
}

// SolanaInputData is either a Deposit (build+simulate an instruction) or a
// CheckCompletedWithdrawal (read an account and compare nonces).
type SolanaInputData struct {
	Action     SolanaAction
	Deposit    *DepositWithProof
	Withdrawal *CompletedWithdrawal
}

// TonAction discriminates the two TON child-call interpretations.
type TonAction int

const (
	TonActionDeposit TonAction = iota
	TonActionCheckCompletedWithdrawal
)

// TonInputData describes the two-step treasury→child runGetMethod walk.
type TonInputData struct {
	TreasuryCallArgs []TonStackItem
	ChildCallMethod  string
	ChildCallArgs    []TonStackItem
	Action           TonAction
	// Nonce is only meaningful when Action == TonActionCheckCompletedWithdrawal.
	// Carried as a decimal string since TON nonces are u128-scale and
	// overflow uint64.
	Nonce string
}

// TonStackItem is one `[tag, payload]` entry of a runGetMethod argument
// stack; see internal/verifiers/ton for the wire encoding.
type TonStackItem struct {
	Tag     string // "num" | "cell" | "slice"
	Payload any
}

// CosmosInputData mirrors the source primitive's Cosmos input shape. No
// Cosmos verifier is specified anywhere in §4.3/§4.4 of the oracle spec —
// Cosmos is named only as a data-model variant in §3 — so this type exists
// for parity with the upstream sum type but is never dispatched to a
// verifier.
type CosmosInputData struct {
	IsExecuted bool
	Nonce      uint64
	MsgHash    [32]byte // only meaningful when !IsExecuted
}

// InputDataKind discriminates the InputData sum type.
type InputDataKind int

const (
	InputDataEvm InputDataKind = iota
	InputDataStellar
	InputDataSolana
	InputDataTon
	InputDataCosmos
)

// InputData is the sum type carried by a HotVerifyAuthCall: exactly one of
// Evm, Stellar, Solana, Ton, Cosmos is populated, selected by Kind.
type InputData struct {
	Kind    InputDataKind
	Evm     *EvmInputData
	Stellar *StellarInputData
	Solana  *SolanaInputData
	Ton     *TonInputData
	Cosmos  *CosmosInputData
}
