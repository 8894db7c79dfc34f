package ton

import (
	"encoding/json"
	"fmt"

	"github.com/hot-dao/hot-validation-oracle/internal/oracletypes"
)

// stackItemsToWire encodes a TonStackItem list into runGetMethod's stack
// argument format: each entry is a ["tag", payload] tuple. "num" payloads
// are the numeric string directly; "cell"/"slice" payloads are the
// serializable cell object re-encoded as a JSON *string* (double-encoded),
// matching the source's `serde_json::to_string(&cell)` step.
func stackItemsToWire(items []oracletypes.TonStackItem) ([]any, error) {
	out := make([]any, 0, len(items))
	for _, item := range items {
		switch item.Tag {
		case "num":
			s, ok := item.Payload.(string)
			if !ok {
				return nil, fmt.Errorf("ton: num stack item payload must be a string, got %T", item.Payload)
			}
			out = append(out, [2]any{"num", s})
		case "cell", "slice":
			data, ok := item.Payload.([]byte)
			if !ok {
				return nil, fmt.Errorf("ton: %s stack item payload must be []byte, got %T", item.Tag, item.Payload)
			}
			encoded, err := json.Marshal(newByteAlignedCell(data))
			if err != nil {
				return nil, fmt.Errorf("ton: encoding %s stack item: %w", item.Tag, err)
			}
			out = append(out, [2]any{item.Tag, string(encoded)})
		default:
			return nil, fmt.Errorf("ton: unrecognized stack item tag %q", item.Tag)
		}
	}
	return out, nil
}

// responseStackItem is one element of a runGetMethod response stack: either
// a bare numeric string, or a {bytes, object} pair for a cell/slice whose
// two encodings must agree.
type responseStackItem struct {
	Tag    string
	Num    string
	Cell   serializableCell
	IsCell bool
}

func decodeResponseStackItem(raw json.RawMessage) (responseStackItem, error) {
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(raw, &tuple); err != nil {
		return responseStackItem{}, fmt.Errorf("ton: stack item is not a 2-element tuple: %w", err)
	}
	var tag string
	if err := json.Unmarshal(tuple[0], &tag); err != nil {
		return responseStackItem{}, fmt.Errorf("ton: stack item tag: %w", err)
	}

	switch tag {
	case "num":
		var num string
		if err := json.Unmarshal(tuple[1], &num); err != nil {
			return responseStackItem{}, fmt.Errorf("ton: num stack item value: %w", err)
		}
		return responseStackItem{Tag: "num", Num: num}, nil
	case "cell", "slice":
		var wire struct {
			Bytes  string          `json:"bytes"`
			Object json.RawMessage `json:"object"`
		}
		if err := json.Unmarshal(tuple[1], &wire); err != nil {
			return responseStackItem{}, fmt.Errorf("ton: %s stack item value: %w", tag, err)
		}
		fromBOC, err := decodeBOCRootCell(wire.Bytes)
		if err != nil {
			return responseStackItem{}, fmt.Errorf("ton: %s stack item bytes form: %w", tag, err)
		}
		var fromObject serializableCell
		if err := json.Unmarshal(wire.Object, &fromObject); err != nil {
			return responseStackItem{}, fmt.Errorf("ton: %s stack item object form: %w", tag, err)
		}
		if fromBOC.BitLen != fromObject.BitLen || !bytesEqual(fromBOC.Data, fromObject.Data) {
			return responseStackItem{}, fmt.Errorf("ton: %s stack item bytes/object forms disagree (boc bitlen=%d, object bitlen=%d)", tag, fromBOC.BitLen, fromObject.BitLen)
		}
		return responseStackItem{Tag: tag, Cell: fromObject, IsCell: true}, nil
	default:
		return responseStackItem{}, fmt.Errorf("ton: unexpected stack item tag %q", tag)
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// asAddress interprets a cell/slice stack item as an address slice, loading
// the workchain/hash directly from its stored bits the way tonlib_core's
// `parser().load_address()` would, assuming the conventional TON address
// cell layout (2-bit tag, 1-bit anycast flag, 8-bit workchain, 256-bit
// hash — 267 bits total, no anycast).
func (r responseStackItem) asAddress() (tonAddress, error) {
	if !r.IsCell {
		return tonAddress{}, fmt.Errorf("ton: stack item is not a cell/slice")
	}
	if r.Cell.BitLen != 267 {
		return tonAddress{}, fmt.Errorf("ton: address cell has %d bits, want 267 (addr_std, no anycast)", r.Cell.BitLen)
	}
	// Layout (MSB-first): 2 bits tag (10), 1 bit anycast (0), 8 bits
	// workchain, 256 bits hash — 267 bits packed into 34 bytes with a
	// trailing partial byte.
	bits := newBitReader(r.Cell.Data)
	if _, err := bits.readBits(3); err != nil { // tag + anycast
		return tonAddress{}, err
	}
	wc, err := bits.readBits(8)
	if err != nil {
		return tonAddress{}, err
	}
	hash, err := bits.readBytes(32)
	if err != nil {
		return tonAddress{}, err
	}
	var addr tonAddress
	addr.Workchain = int8(wc)
	copy(addr.Hash[:], hash)
	return addr, nil
}

func (r responseStackItem) asNum() (string, error) {
	if r.Tag != "num" {
		return "", fmt.Errorf("ton: stack item is not a num")
	}
	return r.Num, nil
}
