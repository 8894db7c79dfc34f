package oracletypes

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// UnmarshalJSON decodes the untagged InputData sum type by structural shape.
// Evm/Stellar arrive as a JSON array of `{type, value}` argument tuples;
// Solana/Ton/Cosmos arrive as objects and are told apart by which keys are
// present, checked in the order Ton, Solana, Cosmos (Ton objects also carry
// an "action" key, so the Ton keys are checked first).
func (d *InputData) UnmarshalJSON(data []byte) error {
	var arr []rawArg
	if err := json.Unmarshal(data, &arr); err == nil {
		return d.unmarshalArgArray(arr)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("input data: neither an argument array nor an object: %w", err)
	}

	switch {
	case hasAny(obj, "treasury_call_args", "child_call_method"):
		return d.unmarshalTon(obj)
	case hasAny(obj, "action", "deposit", "withdrawal"):
		return d.unmarshalSolana(obj)
	case hasAny(obj, "is_executed", "nonce", "msg_hash"):
		return d.unmarshalCosmos(obj)
	default:
		return fmt.Errorf("input data: unrecognized object shape")
	}
}

func hasAny(obj map[string]json.RawMessage, keys ...string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}

type rawArg struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (d *InputData) unmarshalArgArray(arr []rawArg) error {
	if len(arr) == 0 {
		return fmt.Errorf("input data: empty argument array")
	}
	switch arr[0].Type {
	case string(EvmArgFixedBytes32), string(EvmArgBytes):
		args := make([]EvmInputArg, 0, len(arr))
		for _, a := range arr {
			b, err := hex.DecodeString(trim0x(a.Value))
			if err != nil {
				return fmt.Errorf("input data: evm arg: %w", err)
			}
			args = append(args, EvmInputArg{Kind: EvmArgKind(a.Type), Data: b})
		}
		d.Kind = InputDataEvm
		d.Evm = &EvmInputData{Args: args}
		return nil
	case string(StellarArgString), string(StellarArgBytes):
		args := make([]StellarInputArg, 0, len(arr))
		for _, a := range arr {
			b, err := hex.DecodeString(trim0x(a.Value))
			if err != nil {
				return fmt.Errorf("input data: stellar arg: %w", err)
			}
			args = append(args, StellarInputArg{Kind: StellarArgKind(a.Type), Data: b})
		}
		d.Kind = InputDataStellar
		d.Stellar = &StellarInputData{Args: args}
		return nil
	default:
		return fmt.Errorf("input data: unrecognized argument tag %q", arr[0].Type)
	}
}

func (d *InputData) unmarshalSolana(obj map[string]json.RawMessage) error {
	var action string
	if err := json.Unmarshal(obj["action"], &action); err != nil {
		return fmt.Errorf("input data: solana action: %w", err)
	}
	sd := &SolanaInputData{}
	switch action {
	case "deposit":
		var dep DepositWithProof
		if err := json.Unmarshal(obj["deposit"], &dep); err != nil {
			return fmt.Errorf("input data: solana deposit: %w", err)
		}
		sd.Action = SolanaActionDeposit
		sd.Deposit = &dep
	case "check_completed_withdrawal":
		var w CompletedWithdrawal
		if err := json.Unmarshal(obj["withdrawal"], &w); err != nil {
			return fmt.Errorf("input data: solana withdrawal: %w", err)
		}
		sd.Action = SolanaActionCheckCompletedWithdrawal
		sd.Withdrawal = &w
	default:
		return fmt.Errorf("input data: unrecognized solana action %q", action)
	}
	d.Kind = InputDataSolana
	d.Solana = sd
	return nil
}

func (d *InputData) unmarshalTon(obj map[string]json.RawMessage) error {
	td := &TonInputData{}
	if raw, ok := obj["child_call_method"]; ok {
		if err := json.Unmarshal(raw, &td.ChildCallMethod); err != nil {
			return fmt.Errorf("input data: ton child_call_method: %w", err)
		}
	}
	if raw, ok := obj["treasury_call_args"]; ok {
		args, err := unmarshalTonStack(raw)
		if err != nil {
			return fmt.Errorf("input data: ton treasury_call_args: %w", err)
		}
		td.TreasuryCallArgs = args
	}
	if raw, ok := obj["child_call_args"]; ok {
		args, err := unmarshalTonStack(raw)
		if err != nil {
			return fmt.Errorf("input data: ton child_call_args: %w", err)
		}
		td.ChildCallArgs = args
	}
	var action string
	if err := json.Unmarshal(obj["action"], &action); err != nil {
		return fmt.Errorf("input data: ton action: %w", err)
	}
	switch action {
	case "deposit":
		td.Action = TonActionDeposit
	case "check_completed_withdrawal":
		td.Action = TonActionCheckCompletedWithdrawal
		if raw, ok := obj["nonce"]; ok {
			var nonceStr string
			if err := json.Unmarshal(raw, &nonceStr); err == nil {
				td.Nonce = nonceStr
			} else {
				var n json.Number
				if err := json.Unmarshal(raw, &n); err != nil {
					return fmt.Errorf("input data: ton nonce: %w", err)
				}
				td.Nonce = n.String()
			}
		}
	default:
		return fmt.Errorf("input data: unrecognized ton action %q", action)
	}
	d.Kind = InputDataTon
	d.Ton = td
	return nil
}

// unmarshalTonStack decodes a runGetMethod-style stack array: each entry is
// a `["tag", payload]` tuple. "num" payloads are plain numeric strings;
// "cell"/"slice" payloads are hex-encoded byte strings (this oracle only
// ever needs to send byte-aligned cells as treasury/child call arguments,
// never an existing BOC/object pair).
func unmarshalTonStack(raw json.RawMessage) ([]TonStackItem, error) {
	var tuples []json.RawMessage
	if err := json.Unmarshal(raw, &tuples); err != nil {
		return nil, fmt.Errorf("not an array: %w", err)
	}
	items := make([]TonStackItem, 0, len(tuples))
	for _, t := range tuples {
		var pair [2]json.RawMessage
		if err := json.Unmarshal(t, &pair); err != nil {
			return nil, fmt.Errorf("stack item is not a 2-tuple: %w", err)
		}
		var tag string
		if err := json.Unmarshal(pair[0], &tag); err != nil {
			return nil, fmt.Errorf("stack item tag: %w", err)
		}
		switch tag {
		case "num":
			var s string
			if err := json.Unmarshal(pair[1], &s); err != nil {
				return nil, fmt.Errorf("num payload: %w", err)
			}
			items = append(items, TonStackItem{Tag: "num", Payload: s})
		case "cell", "slice":
			var hexStr string
			if err := json.Unmarshal(pair[1], &hexStr); err != nil {
				return nil, fmt.Errorf("%s payload: %w", tag, err)
			}
			b, err := hex.DecodeString(trim0x(hexStr))
			if err != nil {
				return nil, fmt.Errorf("%s payload hex: %w", tag, err)
			}
			items = append(items, TonStackItem{Tag: tag, Payload: b})
		default:
			return nil, fmt.Errorf("unrecognized stack item tag %q", tag)
		}
	}
	return items, nil
}

func (d *InputData) unmarshalCosmos(obj map[string]json.RawMessage) error {
	cd := &CosmosInputData{}
	if raw, ok := obj["is_executed"]; ok {
		if err := json.Unmarshal(raw, &cd.IsExecuted); err != nil {
			return fmt.Errorf("input data: cosmos is_executed: %w", err)
		}
	}
	if raw, ok := obj["nonce"]; ok {
		if err := json.Unmarshal(raw, &cd.Nonce); err != nil {
			return fmt.Errorf("input data: cosmos nonce: %w", err)
		}
	}
	if raw, ok := obj["msg_hash"]; ok {
		var h string
		if err := json.Unmarshal(raw, &h); err == nil {
			b, err := hex.DecodeString(trim0x(h))
			if err != nil || len(b) != 32 {
				return fmt.Errorf("input data: cosmos msg_hash: invalid 32-byte hex")
			}
			copy(cd.MsgHash[:], b)
		}
	}
	d.Kind = InputDataCosmos
	d.Cosmos = cd
	return nil
}
