package ton

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// serializableCell is the "object" form of a TON cell/slice stack item: raw
// data bytes plus the exact bit length (TON cells are not byte-granular —
// e.g. an address cell is 267 bits), matching tonlib_core's SerializableCell
// wire shape exactly.
type serializableCell struct {
	Data    []byte
	BitLen  int
	Special bool
}

func newByteAlignedCell(data []byte) serializableCell {
	return serializableCell{Data: data, BitLen: len(data) * 8}
}

type serializableCellWire struct {
	Data struct {
		B64 string `json:"b64"`
		Len int    `json:"len"`
	} `json:"data"`
	Refs    []json.RawMessage `json:"refs"`
	Special bool              `json:"special"`
}

func (c serializableCell) MarshalJSON() ([]byte, error) {
	var wire serializableCellWire
	wire.Data.B64 = base64.StdEncoding.EncodeToString(c.Data)
	wire.Data.Len = c.BitLen
	wire.Refs = []json.RawMessage{}
	wire.Special = c.Special
	return json.Marshal(wire)
}

func (c *serializableCell) UnmarshalJSON(data []byte) error {
	var wire serializableCellWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("ton: decoding serializable cell: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(wire.Data.B64)
	if err != nil {
		return fmt.Errorf("ton: decoding cell data base64: %w", err)
	}
	c.Data = raw
	c.BitLen = wire.Data.Len
	c.Special = wire.Special
	return nil
}

// decodeBOCRootCell reads the root cell's raw stored data and exact bit
// length out of a base64-encoded bag-of-cells. Only the root cell's data is
// parsed — the references this oracle's stack items ever produce are
// leaf cells (an address or a fixed-length proof), so a full cell-tree walk
// is unnecessary; every runGetMethod response this verifier decodes is a
// single-cell BOC.
func decodeBOCRootCell(b64 string) (serializableCell, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return serializableCell{}, fmt.Errorf("ton: decoding boc base64: %w", err)
	}
	if len(raw) < 6 {
		return serializableCell{}, fmt.Errorf("ton: boc too short (%d bytes)", len(raw))
	}
	if binary.BigEndian.Uint32(raw[0:4]) != 0xb5ee9c72 {
		return serializableCell{}, fmt.Errorf("ton: not a bag-of-cells (bad magic)")
	}

	descriptor := raw[4]
	hasIdx := descriptor&0x80 != 0
	size := int(descriptor & 0x07)
	offBytes := int(raw[5])

	pos := 6
	readUint := func(n int) (int, error) {
		if pos+n > len(raw) {
			return 0, fmt.Errorf("ton: boc truncated reading %d-byte field at %d", n, pos)
		}
		v := 0
		for i := 0; i < n; i++ {
			v = v<<8 | int(raw[pos])
			pos++
		}
		return v, nil
	}

	cellsCount, err := readUint(size)
	if err != nil {
		return serializableCell{}, err
	}
	rootsCount, err := readUint(size)
	if err != nil {
		return serializableCell{}, err
	}
	if _, err := readUint(size); err != nil { // absent count
		return serializableCell{}, err
	}
	if _, err := readUint(offBytes); err != nil { // tot_cells_size
		return serializableCell{}, err
	}
	for i := 0; i < rootsCount; i++ {
		if _, err := readUint(size); err != nil {
			return serializableCell{}, err
		}
	}
	if hasIdx {
		pos += cellsCount * offBytes
	}

	if pos+2 > len(raw) {
		return serializableCell{}, fmt.Errorf("ton: boc truncated before cell header")
	}
	d1, d2 := raw[pos], raw[pos+1]
	_ = d1 // refs_count/exotic/level — unused, this parser never descends into refs
	pos += 2

	fullBytes := int(d2) / 2
	hasPartial := d2%2 == 1
	dataLen := fullBytes
	if hasPartial {
		dataLen++
	}
	if pos+dataLen > len(raw) {
		return serializableCell{}, fmt.Errorf("ton: boc truncated reading %d-byte cell payload", dataLen)
	}
	data := append([]byte{}, raw[pos:pos+dataLen]...)

	bitLen := fullBytes * 8
	if hasPartial {
		bitLen += trailingCompletionTagBits(data[dataLen-1])
	}

	return serializableCell{Data: data, BitLen: bitLen}, nil
}

// trailingCompletionTagBits finds the number of significant payload bits in
// a partial last byte: TON cells pad a non-byte-aligned tail with a single
// '1' completion tag followed by zero bits, so the payload length is 7 minus
// the bit-index (from the LSB) of the lowest set bit.
func trailingCompletionTagBits(b byte) int {
	for i := 0; i < 8; i++ {
		if b&(1<<uint(i)) != 0 {
			return 7 - i
		}
	}
	return 0
}
