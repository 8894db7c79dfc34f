package solana

import (
	"fmt"
	"math/big"

	solanago "github.com/gagliardetto/solana-go"
)

// nonceBE renders a decimal u128 nonce string as 16 big-endian bytes, the
// seed encoding every PDA derivation in this package uses.
func nonceBE(decimal string) ([16]byte, error) {
	var out [16]byte
	n, ok := new(big.Int).SetString(decimal, 10)
	if !ok || n.Sign() < 0 {
		return out, fmt.Errorf("solana: %q is not a valid non-negative integer", decimal)
	}
	if n.BitLen() > 128 {
		return out, fmt.Errorf("solana: nonce %q overflows u128", decimal)
	}
	n.FillBytes(out[:])
	return out, nil
}

// userPDA derives the ["user", sender] account holding a depositor's
// last-used withdrawal nonce.
func userPDA(programID, sender solanago.PublicKey) (solanago.PublicKey, error) {
	pda, _, err := solanago.FindProgramAddress([][]byte{[]byte("user"), sender.Bytes()}, programID)
	if err != nil {
		return solanago.PublicKey{}, fmt.Errorf("solana: deriving user pda: %w", err)
	}
	return pda, nil
}

// statePDA derives the ["state"] global bridge-state account.
func statePDA(programID solanago.PublicKey) (solanago.PublicKey, error) {
	pda, _, err := solanago.FindProgramAddress([][]byte{[]byte("state")}, programID)
	if err != nil {
		return solanago.PublicKey{}, fmt.Errorf("solana: deriving state pda: %w", err)
	}
	return pda, nil
}

// depositPDA derives the per-deposit account:
// ["deposit", nonce_be, sender, receiver, token_id, amount_be].
func depositPDA(programID solanago.PublicKey, nonce string, sender, receiver, tokenID solanago.PublicKey, amount uint64) (solanago.PublicKey, error) {
	nonceBytes, err := nonceBE(nonce)
	if err != nil {
		return solanago.PublicKey{}, err
	}
	var amountBytes [8]byte
	new(big.Int).SetUint64(amount).FillBytes(amountBytes[:])

	pda, _, err := solanago.FindProgramAddress([][]byte{
		[]byte("deposit"),
		nonceBytes[:],
		sender.Bytes(),
		receiver.Bytes(),
		tokenID.Bytes(),
		amountBytes[:],
	}, programID)
	if err != nil {
		return solanago.PublicKey{}, fmt.Errorf("solana: deriving deposit pda: %w", err)
	}
	return pda, nil
}
