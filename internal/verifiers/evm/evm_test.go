package evm

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hot-dao/hot-validation-oracle/internal/oracletypes"
	"github.com/hot-dao/hot-validation-oracle/internal/transport"
)

func packBool(t *testing.T, b bool) string {
	t.Helper()
	out, err := parsedABI.Methods["hot_verify"].Outputs.Pack(b)
	if err != nil {
		t.Fatal(err)
	}
	return "0x" + hex.EncodeToString(out)
}

func mockEvmServer(t *testing.T, blockNumberHex string, callResult bool) (*httptest.Server, *[]string) {
	t.Helper()
	var methods []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		methods = append(methods, req.Method)
		var resp rpcResponse
		resp.JSONRPC, resp.ID = "2.0", req.ID
		switch req.Method {
		case "eth_blockNumber":
			resp.Result = blockNumberHex
		case "eth_call":
			resp.Result = packBool(t, callResult)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	return srv, &methods
}

func validInput(t *testing.T) oracletypes.EvmInputData {
	t.Helper()
	input, err := oracletypes.NewEvmInputData(
		"0x0000000000000000000000000000000000000000000000000000000000000000",
		"0x00",
	)
	if err != nil {
		t.Fatal(err)
	}
	return input
}

func TestHotVerifyPinsBlockDelayBehindTip(t *testing.T) {
	var gotParams []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Method == "eth_call" {
			raw, _ := json.Marshal(req.Params)
			var arr []json.RawMessage
			_ = json.Unmarshal(raw, &arr)
			var blockArg string
			_ = json.Unmarshal(arr[1], &blockArg)
			gotParams = append(gotParams, blockArg)
		}
		var resp rpcResponse
		resp.JSONRPC, resp.ID = "2.0", req.ID
		switch req.Method {
		case "eth_blockNumber":
			resp.Result = "0x64" // block 100
		case "eth_call":
			resp.Result = packBool(t, true)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	ep := Endpoint{URL: srv.URL, Client: transport.New()}
	ok, err := ep.HotVerify(context.Background(), "0xf22Ef29d5Bb80256B569f4233a76EF09Cae996eC", validInput(t))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected true")
	}
	if len(gotParams) != 1 || gotParams[0] != "0x63" {
		t.Fatalf("expected eth_call pinned to 0x63 (100 - blockDelay), got %v", gotParams)
	}
}

func TestHotVerifyDecodesFalse(t *testing.T) {
	srv, _ := mockEvmServer(t, "0x10", false)
	defer srv.Close()

	ep := Endpoint{URL: srv.URL, Client: transport.New()}
	ok, err := ep.HotVerify(context.Background(), "0xf22Ef29d5Bb80256B569f4233a76EF09Cae996eC", validInput(t))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected false")
	}
}

func TestPoolHotVerifyReachesThreshold(t *testing.T) {
	good1, _ := mockEvmServer(t, "0x10", true)
	good2, _ := mockEvmServer(t, "0x10", true)
	bad, _ := mockEvmServer(t, "0x10", false)
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
	ok, err := pool.HotVerify(context.Background(), "0xf22Ef29d5Bb80256B569f4233a76EF09Cae996eC", validInput(t))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected the 2-vote consensus of true")
	}
}

func TestEvmArgsToABIRejectsWrongArgCount(t *testing.T) {
	_, err := evmArgsToABI(oracletypes.EvmInputData{Args: nil})
	if err == nil || !strings.Contains(err.Error(), "exactly 4 arguments") {
		t.Fatalf("expected an arg-count error, got %v", err)
	}
}
