package oracletypes

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
)

// Uid is an opaque 32-byte user identity. It accepts either hex or base58 on
// input; its Debug/String form never exposes the bytes, so that a Uid can be
// logged without leaking the identity it names.
type Uid [32]byte

// UidFromHex decodes a hex-encoded Uid.
func UidFromHex(h string) (Uid, error) {
	b, err := hex.DecodeString(h)
	if err != nil {
		return Uid{}, fmt.Errorf("uid: invalid hex: %w", err)
	}
	return uidFromBytes(b)
}

// UidFromBase58 decodes a base58-encoded Uid.
func UidFromBase58(s string) (Uid, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Uid{}, fmt.Errorf("uid: invalid base58: %w", err)
	}
	return uidFromBytes(b)
}

func uidFromBytes(b []byte) (Uid, error) {
	var u Uid
	if len(b) != len(u) {
		return Uid{}, fmt.Errorf("uid: expected %d bytes, got %d", len(u), len(b))
	}
	copy(u[:], b)
	return u, nil
}

// String redacts the Uid's contents; nothing that logs a Uid ever prints its
// bytes, hex, or base58 form.
func (u Uid) String() string { return "Uid([REDACTED])" }

// GoString satisfies fmt's %#v / debug-printing path with the same redaction.
func (u Uid) GoString() string { return u.String() }

// ToWalletId derives the wallet id for this uid: wallet_id = sha256(uid).
func (u Uid) ToWalletId() WalletId {
	sum := sha256.Sum256(u[:])
	return WalletId(sum)
}

// LegacyTweak computes the legacy, unconsumed tweak derivation:
// reverse(sha256(lowercase_hex(uid))). Defined for parity with the source
// primitive; nothing in the oracle's verification path reads it.
func (u Uid) LegacyTweak() [32]byte {
	h := hex.EncodeToString(u[:])
	sum := sha256.Sum256([]byte(h))
	var reversed [32]byte
	for i, b := range sum {
		reversed[len(sum)-1-i] = b
	}
	return reversed
}

// WalletId is the 32-byte value derived from a Uid via sha256, displayed as
// base58.
type WalletId [32]byte

func (w WalletId) String() string {
	return base58.Encode(w[:])
}

// WalletIdFromBase58 parses the base58 display form back into a WalletId.
func WalletIdFromBase58(s string) (WalletId, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return WalletId{}, fmt.Errorf("wallet id: invalid base58: %w", err)
	}
	var w WalletId
	if len(b) != len(w) {
		return WalletId{}, fmt.Errorf("wallet id: expected %d bytes, got %d", len(w), len(b))
	}
	copy(w[:], b)
	return w, nil
}
