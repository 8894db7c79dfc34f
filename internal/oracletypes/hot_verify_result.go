package oracletypes

import (
	"encoding/json"
	"fmt"
)

// HotVerifyAuthCall asks the orchestrator to re-dispatch verification to
// another chain's verifier instead of answering directly.
type HotVerifyAuthCall struct {
	ContractID string
	Method     string
	ChainID    ChainId
	Input      InputData
}

// HotVerifyResult is the untagged sum type returned by a NEAR hot_verify
// call: either a direct boolean, or an AuthCall indirection. A plain boolean
// payload must always decode as Result, never as AuthCall — the two shapes
// (JSON scalar vs JSON object) cannot be confused.
type HotVerifyResult struct {
	IsAuthCall bool
	Result     bool
	AuthCall   HotVerifyAuthCall
}

// AsResult returns the boolean outcome, failing if this is actually an
// AuthCall indirection that the caller forgot to dispatch.
func (r HotVerifyResult) AsResult() (bool, error) {
	if r.IsAuthCall {
		return false, fmt.Errorf("hot verify result: expected a direct result, got an auth call")
	}
	return r.Result, nil
}

func (r *HotVerifyResult) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		r.IsAuthCall = false
		r.Result = b
		return nil
	}

	var wire struct {
		ContractID string          `json:"contract_id"`
		Method     string          `json:"method"`
		ChainID    ChainId         `json:"chain_id"`
		Input      json.RawMessage `json:"input"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("hot verify result: neither a boolean nor an auth call object: %w", err)
	}
	var input InputData
	if err := json.Unmarshal(wire.Input, &input); err != nil {
		return fmt.Errorf("hot verify result: auth call input: %w", err)
	}
	r.IsAuthCall = true
	r.AuthCall = HotVerifyAuthCall{
		ContractID: wire.ContractID,
		Method:     wire.Method,
		ChainID:    wire.ChainID,
		Input:      input,
	}
	return nil
}
