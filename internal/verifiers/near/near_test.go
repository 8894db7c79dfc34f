package near

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hot-dao/hot-validation-oracle/internal/oracletypes"
	"github.com/hot-dao/hot-validation-oracle/internal/transport"
)

func mockNearServer(t *testing.T, handle func(req rpcRequest) (any, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding mock request: %v", err)
		}
		result, rpcErr := handle(req)
		resp := rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: rpcErr}
		if rpcErr == nil {
			resp.Result, _ = json.Marshal(map[string]any{"result": rawIntArray(t, result)})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func rawIntArray(t *testing.T, v any) []int {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	nums := make([]int, len(payload))
	for i, b := range payload {
		nums[i] = int(b)
	}
	return nums
}

func decodeArgsBase64(t *testing.T, req rpcRequest) callFunctionParams {
	t.Helper()
	raw, err := json.Marshal(req.Params)
	if err != nil {
		t.Fatal(err)
	}
	var params callFunctionParams
	if err := json.Unmarshal(raw, &params); err != nil {
		t.Fatal(err)
	}
	return params
}

func TestViewFunctionEncodesArgsAsBase64JSON(t *testing.T) {
	var gotArgsB64 string
	srv := mockNearServer(t, func(req rpcRequest) (any, *rpcError) {
		gotArgsB64 = decodeArgsBase64(t, req).ArgsBase64
		return true, nil
	})
	defer srv.Close()

	ep := Endpoint{URL: srv.URL, Client: transport.New()}
	_, err := ep.viewFunction(context.Background(), "some.contract", "some_method", getWalletArgs{WalletID: "abc"})
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := base64.StdEncoding.DecodeString(gotArgsB64)
	if err != nil {
		t.Fatalf("args_base64 did not decode as base64: %v", err)
	}
	var back getWalletArgs
	if err := json.Unmarshal(decoded, &back); err != nil {
		t.Fatalf("base64-decoded args were not JSON: %v", err)
	}
	if back.WalletID != "abc" {
		t.Fatalf("got wallet_id %q, want abc", back.WalletID)
	}
}

func TestGetWallet(t *testing.T) {
	srv := mockNearServer(t, func(req rpcRequest) (any, *rpcError) {
		params := decodeArgsBase64(t, req)
		if params.AccountID != MPCHotWalletContract || params.MethodName != MPCGetWalletMethod {
			t.Fatalf("unexpected call target: %+v", params)
		}
		return oracletypes.WalletAuthMethods{
			AccessList: []oracletypes.AuthMethod{
				{AccountID: "keys.auth.hot.tg", ChainID: oracletypes.Near},
				{AccountID: "0x233c2380c2F53d1F0bAC9be1bb0Da7A480a4Cd", ChainID: oracletypes.Evm(56)},
			},
			KeyGen:      3,
			BlockHeight: 123456,
		}, nil
	})
	defer srv.Close()

	ep := Endpoint{URL: srv.URL, Client: transport.New()}
	got, err := ep.GetWallet(context.Background(), "somewalletid")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.AccessList) != 2 || got.KeyGen != 3 || got.BlockHeight != 123456 {
		t.Fatalf("unexpected wallet auth methods: %+v", got)
	}
	if !got.AccessList[1].ChainID.IsEvm() {
		t.Fatalf("expected second auth method to be an evm chain")
	}
}

func TestHotVerifyDirectResult(t *testing.T) {
	srv := mockNearServer(t, func(req rpcRequest) (any, *rpcError) {
		params := decodeArgsBase64(t, req)
		if params.MethodName != HotVerifyMethodName {
			t.Fatalf("got method %q, want %q", params.MethodName, HotVerifyMethodName)
		}
		return true, nil
	})
	defer srv.Close()

	ep := Endpoint{URL: srv.URL, Client: transport.New()}
	result, err := ep.HotVerify(context.Background(), "keys.auth.hot.tg", HotVerifyMethodName, oracletypes.VerifyArgs{
		MsgBody: "body", MsgHash: "hash", UserPayload: "payload",
	})
	if err != nil {
		t.Fatal(err)
	}
	ok, err := result.AsResult()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected true")
	}
}

func TestHotVerifyCallsGivenMethodName(t *testing.T) {
	var gotMethod string
	srv := mockNearServer(t, func(req rpcRequest) (any, *rpcError) {
		gotMethod = decodeArgsBase64(t, req).MethodName
		return false, nil
	})
	defer srv.Close()

	ep := Endpoint{URL: srv.URL, Client: transport.New()}
	_, err := ep.HotVerify(context.Background(), "drops.nfts.tg", "hot_verify_deposit", oracletypes.VerifyArgs{
		MsgBody: "body", MsgHash: "hash", UserPayload: "payload",
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotMethod != "hot_verify_deposit" {
		t.Fatalf("got method %q, want hot_verify_deposit", gotMethod)
	}
}

func TestHotVerifyAuthCallIndirection(t *testing.T) {
	srv := mockNearServer(t, func(req rpcRequest) (any, *rpcError) {
		return map[string]any{
			"contract_id": "0x233c2380c2F53d1F0bAC9be1bb0Da7A480a4Cd",
			"method":      "hot_verify",
			"chain_id":    56,
			"input": []map[string]string{
				{"type": "bytes32", "value": "deadbeef"},
			},
		}, nil
	})
	defer srv.Close()

	ep := Endpoint{URL: srv.URL, Client: transport.New()}
	result, err := ep.HotVerify(context.Background(), "keys.auth.hot.tg", HotVerifyMethodName, oracletypes.VerifyArgs{})
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsAuthCall {
		t.Fatal("expected an auth call indirection")
	}
	if result.AuthCall.ContractID != "0x233c2380c2F53d1F0bAC9be1bb0Da7A480a4Cd" {
		t.Fatalf("unexpected auth call target: %+v", result.AuthCall)
	}
	if id, ok := result.AuthCall.ChainID.EvmChainID(); !ok || id != 56 {
		t.Fatalf("unexpected auth call chain id: %+v", result.AuthCall.ChainID)
	}
}

func TestPoolHotVerifyReachesThresholdAcrossEndpoints(t *testing.T) {
	makeSrv := func(value bool) *httptest.Server {
		return mockNearServer(t, func(req rpcRequest) (any, *rpcError) {
			return value, nil
		})
	}
	good1 := makeSrv(true)
	good2 := makeSrv(true)
	bad := makeSrv(false)
	defer good1.Close()
	defer good2.Close()
	defer bad.Close()

	pool := Pool{
		Threshold: 2,
		Endpoints: []Endpoint{
			{URL: good1.URL, Client: transport.New()},
			{URL: good2.URL, Client: transport.New()},
			{URL: bad.URL, Client: transport.New()},
		},
	}

	result, err := pool.HotVerify(context.Background(), "keys.auth.hot.tg", HotVerifyMethodName, oracletypes.VerifyArgs{
		MsgBody: "body", MsgHash: "hash", UserPayload: "payload",
	})
	if err != nil {
		t.Fatal(err)
	}
	ok, err := result.AsResult()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected the 2-vote consensus of true")
	}
}
