// Package ton implements the TON verifier: a two-step runGetMethod walk
// (treasury contract → child contract) with no TON SDK in the corpus, so
// addresses, cells, and the stack-item wire protocol are all hand-rolled
// against the documented TON Center v2 JSON-RPC format.
package ton

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/hot-dao/hot-validation-oracle/internal/oracletypes"
	"github.com/hot-dao/hot-validation-oracle/internal/threshold"
	"github.com/hot-dao/hot-validation-oracle/internal/transport"
)

// successNum is the sentinel value a treasury/child contract returns for a
// successfully completed deposit check.
const successNum = "-0x1"

type rpcParams struct {
	Address string `json:"address"`
	Method  string `json:"method"`
	Stack   []any  `json:"stack"`
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      string    `json:"id"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
}

type rpcResponse struct {
	Result struct {
		Stack []json.RawMessage `json:"stack"`
	} `json:"result"`
	Error string `json:"error"`
}

// Endpoint is a single TON RPC server (TON Center v2 JSON-RPC).
type Endpoint struct {
	URL    string
	Client *transport.Client
}

func (e Endpoint) label() string { return e.URL }

func (e Endpoint) runGetMethod(ctx context.Context, address tonAddress, method string, stack []oracletypes.TonStackItem) (responseStackItem, error) {
	wireStack, err := stackItemsToWire(stack)
	if err != nil {
		return responseStackItem{}, err
	}
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      "dontcare",
		Method:  "runGetMethod",
		Params: rpcParams{
			Address: address.base64URL(),
			Method:  method,
			Stack:   wireStack,
		},
	}
	resp, err := transport.PostJSONReceiveJSON[rpcResponse](ctx, e.Client, e.URL, req)
	if err != nil {
		return responseStackItem{}, err
	}
	if resp.Error != "" {
		return responseStackItem{}, fmt.Errorf("ton: rpc error from %s: %s", e.URL, resp.Error)
	}
	if len(resp.Result.Stack) != 1 {
		return responseStackItem{}, fmt.Errorf("ton: expected exactly 1 result stack item from %s, got %d", e.URL, len(resp.Result.Stack))
	}
	return decodeResponseStackItem(resp.Result.Stack[0])
}

func (e Endpoint) treasuryCall(ctx context.Context, treasuryAddr string, method string, args []oracletypes.TonStackItem) (tonAddress, error) {
	addr, err := parseTonAddress(treasuryAddr)
	if err != nil {
		return tonAddress{}, fmt.Errorf("ton: treasury call: %w", err)
	}
	item, err := e.runGetMethod(ctx, addr, method, args)
	if err != nil {
		return tonAddress{}, fmt.Errorf("ton: treasury call to %s: %w", treasuryAddr, err)
	}
	return item.asAddress()
}

func (e Endpoint) childCall(ctx context.Context, childAddr tonAddress, method string, args []oracletypes.TonStackItem) (string, error) {
	item, err := e.runGetMethod(ctx, childAddr, method, args)
	if err != nil {
		return "", fmt.Errorf("ton: child call: %w", err)
	}
	return item.asNum()
}

// HotVerify walks the treasury→child runGetMethod protocol and checks the
// returned number against the requested action: a plain Deposit expects the
// successNum sentinel, a CheckCompletedWithdrawal expects its nonce to be
// no greater than the last-withdrawn nonce the child contract reports.
func (e Endpoint) HotVerify(ctx context.Context, treasuryAddr string, treasuryMethod string, input oracletypes.TonInputData) (bool, error) {
	childAddr, err := e.treasuryCall(ctx, treasuryAddr, treasuryMethod, input.TreasuryCallArgs)
	if err != nil {
		return false, err
	}
	num, err := e.childCall(ctx, childAddr, input.ChildCallMethod, input.ChildCallArgs)
	if err != nil {
		return false, err
	}

	switch input.Action {
	case oracletypes.TonActionDeposit:
		if num != successNum {
			return false, fmt.Errorf("ton: expected success (%s), got %s", successNum, num)
		}
		return true, nil
	case oracletypes.TonActionCheckCompletedWithdrawal:
		lastUsed, ok := new(big.Int).SetString(num, 0) // base 0: accepts TON's optional "0x"/"-0x" prefix
		if !ok {
			return false, fmt.Errorf("ton: can't parse last-withdrawn nonce %q as an integer", num)
		}
		nonce, ok := new(big.Int).SetString(input.Nonce, 10)
		if !ok {
			return false, fmt.Errorf("ton: can't parse requested nonce %q as an integer", input.Nonce)
		}
		if nonce.Cmp(lastUsed) > 0 {
			return false, fmt.Errorf("ton: nonce %s exceeds last withdrawn nonce %s", nonce, lastUsed)
		}
		return true, nil
	default:
		return false, fmt.Errorf("ton: unrecognized action %v", input.Action)
	}
}

// Pool fans HotVerify out across a redundant set of TON endpoints for one
// chain, accepting a result once Threshold endpoints agree.
type Pool struct {
	Threshold int
	Endpoints []Endpoint
}

func (p Pool) HotVerify(ctx context.Context, treasuryAddr, treasuryMethod string, input oracletypes.TonInputData) (bool, error) {
	coord := threshold.Coordinator[Endpoint, bool]{
		Threshold: p.Threshold,
		Verifiers: p.Endpoints,
		Label:     Endpoint.label,
	}
	return coord.Call(ctx, func(ctx context.Context, e Endpoint) (bool, error) {
		return e.HotVerify(ctx, treasuryAddr, treasuryMethod, input)
	})
}
