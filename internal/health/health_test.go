package health

import (
	"testing"

	"github.com/hot-dao/hot-validation-oracle/internal/oracletypes"
)

func TestTwoPartDomain(t *testing.T) {
	cases := map[string]string{
		"https://foo-bar.near-mainnet.quiknode.pro/123123": "quiknode.pro",
		"https://rpc.mainnet.near.org":                     "near.org",
		"https://eth.drpc.org":                             "drpc.org",
		"not a url at all":                                 "None",
		"https://localhost":                                "localhost",
	}
	for in, want := range cases {
		if got := twoPartDomain(in); got != want {
			t.Errorf("twoPartDomain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestProbePayloadVariesByChain(t *testing.T) {
	near, ok := probePayload(oracletypes.Near).(map[string]any)
	if !ok || near["method"] != "block" {
		t.Fatalf("near payload should use method=block, got %#v", near)
	}

	stellar, ok := probePayload(oracletypes.Stellar).(map[string]any)
	if !ok || stellar["method"] != "getLatestLedger" {
		t.Fatalf("stellar payload should use method=getLatestLedger, got %#v", stellar)
	}

	evm, ok := probePayload(oracletypes.Evm(1)).(map[string]any)
	if !ok || evm["method"] != "eth_blockNumber" {
		t.Fatalf("evm payload should use method=eth_blockNumber, got %#v", evm)
	}
}
