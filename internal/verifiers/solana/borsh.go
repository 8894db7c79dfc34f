package solana

import (
	"bytes"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"

	"github.com/hot-dao/hot-validation-oracle/internal/oracletypes"
)

// encodeDepositInstructionData Borsh-serializes a DepositWithProof the same
// way the on-chain program's Anchor-generated deserializer expects it,
// prefixed with the instruction's Anchor discriminator. Field order:
// proof, sender, receiver, token_id, amount, nonce — the order the JSON
// wire carries them in, since the original struct layout isn't available.
func encodeDepositInstructionData(method string, dep oracletypes.DepositWithProof) ([]byte, error) {
	var buf bytes.Buffer
	disc := instructionDiscriminator(method)
	buf.Write(disc[:])

	enc := bin.NewBorshEncoder(&buf)
	if err := enc.WriteBytes(dep.Proof[:], false); err != nil {
		return nil, fmt.Errorf("solana: encoding proof: %w", err)
	}
	if err := enc.WriteBytes(dep.Sender[:], false); err != nil {
		return nil, fmt.Errorf("solana: encoding sender: %w", err)
	}
	if err := enc.WriteBytes(dep.Receiver[:], false); err != nil {
		return nil, fmt.Errorf("solana: encoding receiver: %w", err)
	}
	if err := enc.WriteBytes(dep.TokenID[:], false); err != nil {
		return nil, fmt.Errorf("solana: encoding token_id: %w", err)
	}
	if err := enc.WriteUint64(dep.Amount, bin.LE); err != nil {
		return nil, fmt.Errorf("solana: encoding amount: %w", err)
	}
	nonceLE, err := nonceLE16(dep.Nonce)
	if err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(nonceLE[:], false); err != nil {
		return nil, fmt.Errorf("solana: encoding nonce: %w", err)
	}
	return buf.Bytes(), nil
}

// nonceLE16 renders a decimal u128 nonce as Borsh's 16-byte little-endian
// integer encoding (the reverse byte order of the PDA seed's to_be_bytes()).
func nonceLE16(decimal string) ([16]byte, error) {
	be, err := nonceBE(decimal)
	if err != nil {
		return [16]byte{}, err
	}
	var le [16]byte
	for i, b := range be {
		le[15-i] = b
	}
	return le, nil
}

// userAccount is the decoded form of an Anchor `User` account: a version
// byte, a PDA bump, and two u128 nonce counters, Borsh-serialized
// little-endian after the 8-byte Anchor discriminator.
type userAccount struct {
	LastWithdrawNonce *big.Int
}

// decodeUserAccount validates the Anchor account discriminator and
// Borsh-decodes the fields following it: _version (u8), _bump (u8),
// _last_deposit_nonce (u128, unused here), last_withdraw_nonce (u128).
func decodeUserAccount(data []byte) (userAccount, error) {
	disc := accountDiscriminator("User")
	if len(data) < 8 || !bytes.Equal(data[:8], disc[:]) {
		return userAccount{}, fmt.Errorf("solana: account data does not start with the Anchor `User` discriminator")
	}

	dec := bin.NewBorshDecoder(data[8:])
	if _, err := dec.ReadUint8(); err != nil { // _version
		return userAccount{}, fmt.Errorf("solana: reading user account version: %w", err)
	}
	if _, err := dec.ReadUint8(); err != nil { // _bump
		return userAccount{}, fmt.Errorf("solana: reading user account bump: %w", err)
	}
	if _, err := dec.ReadNBytes(16); err != nil { // _last_deposit_nonce, unused
		return userAccount{}, fmt.Errorf("solana: reading last deposit nonce: %w", err)
	}
	lastWithdrawLE, err := dec.ReadNBytes(16)
	if err != nil {
		return userAccount{}, fmt.Errorf("solana: reading last withdraw nonce: %w", err)
	}

	be := make([]byte, 16)
	for i, b := range lastWithdrawLE {
		be[15-i] = b
	}
	return userAccount{LastWithdrawNonce: new(big.Int).SetBytes(be)}, nil
}
