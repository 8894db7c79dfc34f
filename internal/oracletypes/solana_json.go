package oracletypes

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
)

type depositWithProofWire struct {
	Proof    string      `json:"proof"`
	Sender   string      `json:"sender"`
	Receiver string      `json:"receiver"`
	TokenID  string      `json:"token_id"`
	Amount   json.Number `json:"amount"`
	Nonce    string      `json:"nonce"`
}

// UnmarshalJSON decodes the flattened {proof, sender, receiver, token_id,
// amount, nonce} wire shape the bridge proof API sends: proof is plain hex,
// the three addresses are base58 pubkeys, amount is a u64 (string or
// number), and nonce is a decimal u128 string.
func (d *DepositWithProof) UnmarshalJSON(data []byte) error {
	var wire depositWithProofWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("solana deposit: %w", err)
	}

	proof, err := hex.DecodeString(wire.Proof)
	if err != nil || len(proof) != 32 {
		return fmt.Errorf("solana deposit: proof must be 32 bytes of hex")
	}
	copy(d.Proof[:], proof)

	sender, err := solanago.PublicKeyFromBase58(wire.Sender)
	if err != nil {
		return fmt.Errorf("solana deposit: sender: %w", err)
	}
	d.Sender = sender

	receiver, err := solanago.PublicKeyFromBase58(wire.Receiver)
	if err != nil {
		return fmt.Errorf("solana deposit: receiver: %w", err)
	}
	d.Receiver = receiver

	tokenID, err := solanago.PublicKeyFromBase58(wire.TokenID)
	if err != nil {
		return fmt.Errorf("solana deposit: token_id: %w", err)
	}
	d.TokenID = tokenID

	amount, err := wire.Amount.Int64()
	if err != nil || amount < 0 {
		return fmt.Errorf("solana deposit: amount must be a non-negative integer")
	}
	d.Amount = uint64(amount)

	if wire.Nonce == "" {
		return fmt.Errorf("solana deposit: nonce is required")
	}
	d.Nonce = wire.Nonce
	return nil
}

type completedWithdrawalWire struct {
	Nonce           string `json:"nonce"`
	ReceiverAddress string `json:"receiver_address"`
}

// UnmarshalJSON decodes {nonce, receiver_address}: the decimal u128 nonce
// whose completion is being checked, and the base58 address whose "user"
// PDA holds the last-used withdrawal nonce.
func (w *CompletedWithdrawal) UnmarshalJSON(data []byte) error {
	var wire completedWithdrawalWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("solana withdrawal: %w", err)
	}
	if wire.Nonce == "" {
		return fmt.Errorf("solana withdrawal: nonce is required")
	}
	w.Nonce = wire.Nonce

	receiver, err := solanago.PublicKeyFromBase58(wire.ReceiverAddress)
	if err != nil {
		return fmt.Errorf("solana withdrawal: receiver_address: %w", err)
	}
	w.ReceiverAddress = receiver
	return nil
}
