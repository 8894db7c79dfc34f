package oracletypes

import "testing"

func TestHotVerifyResultDecodesPlainBoolean(t *testing.T) {
	var r HotVerifyResult
	if err := r.UnmarshalJSON([]byte("true")); err != nil {
		t.Fatal(err)
	}
	if r.IsAuthCall {
		t.Fatalf("a bare boolean must never decode as an AuthCall")
	}
	ok, err := r.AsResult()
	if err != nil || !ok {
		t.Fatalf("got (%v, %v), want (true, nil)", ok, err)
	}
}

func TestHotVerifyResultDecodesAuthCall(t *testing.T) {
	payload := `{
		"contract_id": "0x233c2380c2F53d1F0bAC9be1bb0Da7A480a4Cd",
		"method": "hot_verify",
		"chain_id": 56,
		"input": [
			{"type":"bytes32","value":"0x74657374"},
			{"type":"bytes","value":"0x"},
			{"type":"bytes","value":"0x0000000000000000000000000000005e095d2c286c441405"},
			{"type":"bytes","value":"0x"}
		]
	}`
	var r HotVerifyResult
	if err := r.UnmarshalJSON([]byte(payload)); err != nil {
		t.Fatal(err)
	}
	if !r.IsAuthCall {
		t.Fatalf("expected an AuthCall decode")
	}
	if r.AuthCall.ChainID.Uint64() != 56 {
		t.Fatalf("chain id = %d, want 56", r.AuthCall.ChainID.Uint64())
	}
	if r.AuthCall.Input.Kind != InputDataEvm {
		t.Fatalf("expected Evm input data kind")
	}
	if len(r.AuthCall.Input.Evm.Args) != 4 {
		t.Fatalf("expected 4 evm args, got %d", len(r.AuthCall.Input.Evm.Args))
	}
}

func TestHotVerifyResultRejectsGarbage(t *testing.T) {
	var r HotVerifyResult
	if err := r.UnmarshalJSON([]byte(`"not a bool or an object"`)); err == nil {
		t.Fatalf("expected an error for a string payload")
	}
}
