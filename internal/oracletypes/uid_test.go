package oracletypes

import "testing"

const (
	uidHex      = "0887d14fbe253e8b6a7b8193f3891e04f88a9ed744b91f4990d567ffc8b18e5f"
	uidBase58   = "aJP1DtbLeZkjqjKVw1hhvysfYyprbbSxZgvgK8M64oY"
	walletIdB58 = "A8NpkSkn1HZPYjxJRCpD4iPhDHzP81bbduZTqPpHmEgn"
)

func TestUidHexAndBase58AgreeOnTheSameIdentity(t *testing.T) {
	fromHex, err := UidFromHex(uidHex)
	if err != nil {
		t.Fatal(err)
	}
	fromB58, err := UidFromBase58(uidBase58)
	if err != nil {
		t.Fatal(err)
	}
	if fromHex != fromB58 {
		t.Fatalf("hex and base58 decodes of the same uid must be equal")
	}
}

func TestUidToWalletId(t *testing.T) {
	u, err := UidFromHex(uidHex)
	if err != nil {
		t.Fatal(err)
	}
	got := u.ToWalletId().String()
	if got != walletIdB58 {
		t.Fatalf("ToWalletId() = %s, want %s", got, walletIdB58)
	}
}

func TestUidDebugRedaction(t *testing.T) {
	u, err := UidFromHex(uidHex)
	if err != nil {
		t.Fatal(err)
	}
	s := u.String()
	if s != "Uid([REDACTED])" {
		t.Fatalf("Uid.String() leaked contents: %s", s)
	}
}

func TestUidFromHexRejectsWrongLength(t *testing.T) {
	if _, err := UidFromHex("deadbeef"); err == nil {
		t.Fatalf("expected an error for a too-short uid")
	}
}

func TestWalletIdRoundTrip(t *testing.T) {
	w, err := WalletIdFromBase58(walletIdB58)
	if err != nil {
		t.Fatal(err)
	}
	if w.String() != walletIdB58 {
		t.Fatalf("WalletId round-trip mismatch")
	}
}
