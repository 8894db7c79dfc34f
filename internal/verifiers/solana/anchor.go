package solana

import "crypto/sha256"

// accountDiscriminator computes Anchor's 8-byte account discriminator:
// sha256("account:<Name>")[:8].
func accountDiscriminator(name string) [8]byte {
	return anchorDiscriminator("account", name)
}

// instructionDiscriminator computes Anchor's 8-byte instruction
// discriminator: sha256("global:<method>")[:8].
func instructionDiscriminator(method string) [8]byte {
	return anchorDiscriminator("global", method)
}

func anchorDiscriminator(prefix, name string) [8]byte {
	h := sha256.Sum256([]byte(prefix + ":" + name))
	var out [8]byte
	copy(out[:], h[:8])
	return out
}
