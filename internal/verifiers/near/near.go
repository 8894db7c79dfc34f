// Package near implements the NEAR verifier: JSON-RPC `query`/`call_function`
// view calls against the registry contract (get_wallet) and per-wallet auth
// contracts (hot_verify), fanned out across redundant endpoints by the
// threshold coordinator.
package near

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/hot-dao/hot-validation-oracle/internal/oracletypes"
	"github.com/hot-dao/hot-validation-oracle/internal/threshold"
	"github.com/hot-dao/hot-validation-oracle/internal/transport"
)

// MPCHotWalletContract is the fixed NEAR registry contract naming every
// wallet's auth methods.
const MPCHotWalletContract = "mpc.hot.tg"

// MPCGetWalletMethod is the registry contract's view method.
const MPCGetWalletMethod = "get_wallet"

// HotVerifyMethodName is the default method name invoked on an auth
// contract; an auth method's metadata.method overrides it.
const HotVerifyMethodName = "hot_verify"

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type callFunctionParams struct {
	RequestType string `json:"request_type"`
	Finality    string `json:"finality"`
	AccountID   string `json:"account_id"`
	MethodName  string `json:"method_name"`
	ArgsBase64  string `json:"args_base64"`
}

// innerResult is the shape of a successful call_function result:
// {"result": [byte, byte, ...], ...}. The array is JSON-encoded as a list of
// small integers, not a base64 string; each element is decoded as a number
// and range-checked by bytes(). The UTF-8 bytes it spells out are the
// contract's JSON-encoded return value, which must be decoded once more.
type innerResult struct {
	Result []uint8ArrayElem `json:"result"`
}

// uint8ArrayElem decodes a single element of the NEAR RPC's byte-array
// result encoding ([12, 34, ...]) as a json.Number, so that bytes() can
// report an element outside 0..255 by its index and text.
type uint8ArrayElem = json.Number

func (r innerResult) bytes() ([]byte, error) {
	out := make([]byte, len(r.Result))
	for i, n := range r.Result {
		v, err := n.Int64()
		if err != nil || v < 0 || v > 255 {
			return nil, fmt.Errorf("near: byte-array result element %d out of range: %q", i, n.String())
		}
		out[i] = byte(v)
	}
	return out, nil
}

// Endpoint is a single NEAR RPC server. It holds no mutable state; Pool
// fans a call out across a slice of Endpoints via the threshold
// coordinator.
type Endpoint struct {
	URL    string
	Client *transport.Client
}

func (e Endpoint) label() string { return e.URL }

// viewFunction performs the query/call_function view call and returns the
// contract's JSON-decoded return value.
func (e Endpoint) viewFunction(ctx context.Context, contractID, methodName string, args any) (json.RawMessage, error) {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("near: encoding view call args: %w", err)
	}
	argsB64 := base64.StdEncoding.EncodeToString(argsJSON)

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      "dontcare",
		Method:  "query",
		Params: callFunctionParams{
			RequestType: "call_function",
			Finality:    "final",
			AccountID:   contractID,
			MethodName:  methodName,
			ArgsBase64:  argsB64,
		},
	}

	resp, err := transport.PostJSONReceiveJSON[rpcResponse](ctx, e.Client, e.URL, req)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("near: rpc error from %s: %s: %s", e.URL, resp.Error.Name, resp.Error.Message)
	}

	var inner innerResult
	if err := json.Unmarshal(resp.Result, &inner); err != nil {
		return nil, fmt.Errorf("near: decoding call_function envelope from %s: %w", e.URL, err)
	}
	raw, err := inner.bytes()
	if err != nil {
		return nil, fmt.Errorf("near: decoding call_function envelope from %s: %w", e.URL, err)
	}
	return json.RawMessage(raw), nil
}

type getWalletArgs struct {
	WalletID string `json:"wallet_id"`
}

// GetWallet fetches WalletAuthMethods for walletID from the registry
// contract on this single endpoint.
func (e Endpoint) GetWallet(ctx context.Context, walletID string) (oracletypes.WalletAuthMethods, error) {
	raw, err := e.viewFunction(ctx, MPCHotWalletContract, MPCGetWalletMethod, getWalletArgs{WalletID: walletID})
	if err != nil {
		return oracletypes.WalletAuthMethods{}, err
	}
	var wallet oracletypes.WalletAuthMethods
	if err := json.Unmarshal(raw, &wallet); err != nil {
		return oracletypes.WalletAuthMethods{}, fmt.Errorf("near: decoding wallet auth methods from %s: %w", e.URL, err)
	}
	return wallet, nil
}

// HotVerify calls hot_verify (or the auth method's overridden method name)
// on contractID, returning the untagged HotVerifyResult.
func (e Endpoint) HotVerify(ctx context.Context, contractID, method string, args oracletypes.VerifyArgs) (oracletypes.HotVerifyResult, error) {
	raw, err := e.viewFunction(ctx, contractID, method, verifyArgsWire(args))
	if err != nil {
		return oracletypes.HotVerifyResult{}, err
	}
	var result oracletypes.HotVerifyResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return oracletypes.HotVerifyResult{}, fmt.Errorf("near: decoding hot_verify result from %s: %w", e.URL, err)
	}
	return result, nil
}

type verifyArgsWireShape struct {
	MsgBody     string  `json:"msg_body"`
	MsgHash     string  `json:"msg_hash"`
	WalletID    *string `json:"wallet_id"`
	UserPayload string  `json:"user_payload"`
	Metadata    *string `json:"metadata"`
}

func verifyArgsWire(a oracletypes.VerifyArgs) verifyArgsWireShape {
	return verifyArgsWireShape{
		MsgBody:     a.MsgBody,
		MsgHash:     a.MsgHash,
		WalletID:    a.WalletID,
		UserPayload: a.UserPayload,
		Metadata:    a.Metadata,
	}
}

// Pool fans GetWallet/HotVerify calls out across a redundant set of NEAR
// endpoints, accepting a result only once Threshold endpoints agree.
type Pool struct {
	Threshold int
	Endpoints []Endpoint
}

// GetWallet returns the consensus WalletAuthMethods for walletID.
func (p Pool) GetWallet(ctx context.Context, walletID string) (oracletypes.WalletAuthMethods, error) {
	coord := threshold.Coordinator[Endpoint, string]{
		Threshold: p.Threshold,
		Verifiers: p.Endpoints,
		Label:     Endpoint.label,
	}
	return threshold.CallJSON(ctx, coord, func(ctx context.Context, e Endpoint) (oracletypes.WalletAuthMethods, error) {
		return e.GetWallet(ctx, walletID)
	})
}

// HotVerify returns the consensus HotVerifyResult for a hot_verify call on
// contractID/method.
func (p Pool) HotVerify(ctx context.Context, contractID, method string, args oracletypes.VerifyArgs) (oracletypes.HotVerifyResult, error) {
	coord := threshold.Coordinator[Endpoint, string]{
		Threshold: p.Threshold,
		Verifiers: p.Endpoints,
		Label:     Endpoint.label,
	}
	return threshold.CallJSON(ctx, coord, func(ctx context.Context, e Endpoint) (oracletypes.HotVerifyResult, error) {
		return e.HotVerify(ctx, contractID, method, args)
	})
}
