// Package evm implements the EVM verifier: an eth_blockNumber probe to pin a
// reorg-safe block, followed by an eth_call against hot_verify, ABI-encoded
// via go-ethereum's accounts/abi.
package evm

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/hot-dao/hot-validation-oracle/internal/oracletypes"
	"github.com/hot-dao/hot-validation-oracle/internal/threshold"
	"github.com/hot-dao/hot-validation-oracle/internal/transport"
)

// blockDelay is the number of blocks behind the chain tip an eth_call is
// pinned to. Some networks have too much finality time (15+ minutes) to wait
// for a safe/final block, and in practice most reverts happen in the very
// next block, so a small delta from the latest block is good enough without
// paying the finality latency.
const blockDelay = 1

// hotVerifyABI is the fixed ABI this oracle calls on every EVM auth
// contract: hot_verify(bytes32,bytes,bytes,bytes) -> bool.
const hotVerifyABI = `[
  {
    "inputs": [
      { "internalType": "bytes32", "name": "msg_hash",    "type": "bytes32" },
      { "internalType": "bytes",   "name": "walletId",    "type": "bytes"   },
      { "internalType": "bytes",   "name": "userPayload", "type": "bytes"   },
      { "internalType": "bytes",   "name": "metadata",    "type": "bytes"   }
    ],
    "name": "hot_verify",
    "outputs": [
      { "internalType": "bool", "name": "", "type": "bool" }
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

var parsedABI = mustParseABI(hotVerifyABI)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("evm: invalid hot_verify ABI literal: %v", err))
	}
	return parsed
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      string    `json:"id"`
	Result  string    `json:"result"`
	Error   *rpcError `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Endpoint is a single EVM JSON-RPC server.
type Endpoint struct {
	URL    string
	Client *transport.Client
}

func (e Endpoint) label() string { return e.URL }

func (e Endpoint) call(ctx context.Context, method string, params any) (string, error) {
	req := rpcRequest{JSONRPC: "2.0", ID: "dontcare", Method: method, Params: params}
	resp, err := transport.PostJSONReceiveJSON[rpcResponse](ctx, e.Client, e.URL, req)
	if err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("evm: rpc error from %s: %d %s", e.URL, resp.Error.Code, resp.Error.Message)
	}
	return resp.Result, nil
}

func (e Endpoint) blockNumber(ctx context.Context) (uint64, error) {
	raw, err := e.call(ctx, "eth_blockNumber", []any{})
	if err != nil {
		return 0, err
	}
	var n uint64
	if _, err := fmt.Sscanf(strings.TrimPrefix(raw, "0x"), "%x", &n); err != nil {
		return 0, fmt.Errorf("evm: decoding block number %q from %s: %w", raw, e.URL, err)
	}
	return n, nil
}

// HotVerify calls hot_verify(msg_hash, wallet_id, user_payload, metadata) on
// contractID at a block pinned blockDelay behind the current tip.
func (e Endpoint) HotVerify(ctx context.Context, contractID string, input oracletypes.EvmInputData) (bool, error) {
	block, err := e.blockNumber(ctx)
	if err != nil {
		return false, err
	}
	if block < blockDelay {
		return false, fmt.Errorf("evm: block number %d underflows blockDelay %d", block, blockDelay)
	}
	pinned := block - blockDelay

	args, err := evmArgsToABI(input)
	if err != nil {
		return false, err
	}
	data, err := parsedABI.Pack("hot_verify", args...)
	if err != nil {
		return false, fmt.Errorf("evm: encoding hot_verify call: %w", err)
	}

	callObj := map[string]string{
		"to":   contractID,
		"data": "0x" + hex.EncodeToString(data),
	}
	raw, err := e.call(ctx, "eth_call", []any{callObj, fmt.Sprintf("0x%x", pinned)})
	if err != nil {
		return false, err
	}

	retBytes, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return false, fmt.Errorf("evm: decoding eth_call return from %s: %w", e.URL, err)
	}
	out, err := parsedABI.Unpack("hot_verify", retBytes)
	if err != nil {
		return false, fmt.Errorf("evm: unpacking hot_verify return from %s: %w", e.URL, err)
	}
	if len(out) != 1 {
		return false, fmt.Errorf("evm: expected a single bool return, got %d values", len(out))
	}
	b, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("evm: hot_verify returned non-bool value %T", out[0])
	}
	return b, nil
}

// evmArgsToABI maps the fixed four-argument EvmInputData layout onto
// go-ethereum's ABI packing types: a 32-byte array for msg_hash, and raw
// []byte for the three dynamic-length arguments.
func evmArgsToABI(input oracletypes.EvmInputData) ([]any, error) {
	if len(input.Args) != 4 {
		return nil, fmt.Errorf("evm: hot_verify expects exactly 4 arguments, got %d", len(input.Args))
	}
	var msgHash [32]byte
	if len(input.Args[0].Data) != 32 {
		return nil, fmt.Errorf("evm: msg_hash argument must be exactly 32 bytes, got %d", len(input.Args[0].Data))
	}
	copy(msgHash[:], input.Args[0].Data)
	return []any{
		msgHash,
		input.Args[1].Data,
		input.Args[2].Data,
		input.Args[3].Data,
	}, nil
}

// Pool fans HotVerify out across a redundant set of EVM endpoints for one
// chain, accepting a result once Threshold endpoints agree.
type Pool struct {
	Threshold int
	Endpoints []Endpoint
}

func (p Pool) HotVerify(ctx context.Context, contractID string, input oracletypes.EvmInputData) (bool, error) {
	coord := threshold.Coordinator[Endpoint, bool]{
		Threshold: p.Threshold,
		Verifiers: p.Endpoints,
		Label:     Endpoint.label,
	}
	return coord.Call(ctx, func(ctx context.Context, e Endpoint) (bool, error) {
		return e.HotVerify(ctx, contractID, input)
	})
}
