package ton

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hot-dao/hot-validation-oracle/internal/oracletypes"
	"github.com/hot-dao/hot-validation-oracle/internal/transport"
)

const (
	treasuryAddrFriendly = "EQANEViM3AKQzi6Aj3sEeyqFu8pXqhy9Q9xGoId_0qp3CNVJ"
	depositChildAddr     = "EQAgwUhaRZwU77BXUVEbtnEN8tplzDWMqUr0TbXWfez58tTL"
	withdrawalChildAddr  = "EQCJWrtdMceshv4LiGZOtJlkP6OdQJZjpsBbgmMksobq10c0"
	lowNonce             = "1753218716000000003679"
	highNonce            = "2753218716000000003679"
)

// bitWriter packs MSB-first bits into a byte buffer, the test-side mirror of
// bitReader, used to build synthetic address cells for mock RPC responses.
type bitWriter struct {
	buf   []byte
	nbits int
}

func (w *bitWriter) writeBits(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		bit := byte((v >> uint(i)) & 1)
		byteIdx := w.nbits / 8
		if byteIdx >= len(w.buf) {
			w.buf = append(w.buf, 0)
		}
		bitIdx := 7 - (w.nbits % 8)
		w.buf[byteIdx] |= bit << uint(bitIdx)
		w.nbits++
	}
}

// finishWithCompletionTag pads the buffer to a byte boundary with TON's
// completion-tag convention (a single '1' bit followed by zero bits) and
// returns the padded bytes alongside the pre-padding bit length.
func (w *bitWriter) finishWithCompletionTag() ([]byte, int) {
	bitLen := w.nbits
	if w.nbits%8 != 0 {
		byteIdx := w.nbits / 8
		bitIdx := 7 - (w.nbits % 8)
		w.buf[byteIdx] |= 1 << uint(bitIdx)
	}
	return w.buf, bitLen
}

func addressCellBytes(t *testing.T, friendly string) ([]byte, int) {
	t.Helper()
	addr, err := parseTonAddress(friendly)
	if err != nil {
		t.Fatal(err)
	}
	var w bitWriter
	w.writeBits(0b10, 2) // addr_std tag
	w.writeBits(0, 1)    // no anycast
	w.writeBits(uint64(uint8(addr.Workchain)), 8)
	for _, b := range addr.Hash {
		w.writeBits(uint64(b), 8)
	}
	return w.finishWithCompletionTag()
}

// buildSingleCellBOC wraps data/bitLen as a minimal single-root, single-cell
// bag-of-cells matching what decodeBOCRootCell parses: a 4-byte magic, a
// 1-byte descriptor/offset-size pair (fixed at 1 byte per count field), the
// cells/roots/absent/tot-size counts, a single root index, a 2-byte cell
// header (d1 unused by the parser, d2 encoding the data length and partial
// flag), then the raw payload.
func buildSingleCellBOC(t *testing.T, data []byte, bitLen int) string {
	t.Helper()
	fullBytes := bitLen / 8
	hasPartial := bitLen%8 != 0
	wantLen := fullBytes
	if hasPartial {
		wantLen++
	}
	if wantLen != len(data) {
		t.Fatalf("data length %d disagrees with bitLen %d", len(data), bitLen)
	}

	var buf []byte
	buf = append(buf, 0xb5, 0xee, 0x9c, 0x72) // magic
	buf = append(buf, 0x01)                   // descriptor: size=1, no idx
	buf = append(buf, 0x01)                   // offset_bytes=1
	buf = append(buf, 0x01)                   // cells_count=1
	buf = append(buf, 0x01)                   // roots_count=1
	buf = append(buf, 0x00)                   // absent_count=0
	buf = append(buf, byte(len(data)+2))      // tot_cells_size (unchecked by parser)
	buf = append(buf, 0x00)                   // roots list: root 0
	d2 := byte(fullBytes*2) + 0
	if hasPartial {
		d2++
	}
	buf = append(buf, 0x00, d2) // d1 (unused), d2
	buf = append(buf, data...)
	return base64.StdEncoding.EncodeToString(buf)
}

func cellStackValueJSON(t *testing.T, friendly string) string {
	t.Helper()
	data, bitLen := addressCellBytes(t, friendly)
	cell := serializableCell{Data: data, BitLen: bitLen}
	objJSON, err := json.Marshal(cell)
	if err != nil {
		t.Fatal(err)
	}
	boc := buildSingleCellBOC(t, data, bitLen)
	out, err := json.Marshal(struct {
		Bytes  string          `json:"bytes"`
		Object json.RawMessage `json:"object"`
	}{Bytes: boc, Object: objJSON})
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestAddressCellRoundTrip(t *testing.T) {
	raw := cellStackValueJSON(t, depositChildAddr)
	item, err := decodeResponseStackItem(json.RawMessage(`["cell",` + raw + `]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	addr, err := item.asAddress()
	if err != nil {
		t.Fatalf("asAddress: %v", err)
	}
	if got := addr.base64URL(); got != depositChildAddr {
		t.Fatalf("got %s, want %s", got, depositChildAddr)
	}
}

func TestBOCMagicCheck(t *testing.T) {
	var magic uint32
	raw, _ := base64.StdEncoding.DecodeString(buildSingleCellBOC(t, []byte{0xff}, 8))
	magic = binary.BigEndian.Uint32(raw[:4])
	if magic != 0xb5ee9c72 {
		t.Fatalf("unexpected magic %x", magic)
	}
}

// mockTonServer answers runGetMethod: the treasury address always returns
// the given child cell, any other address (the child) returns the given
// num string.
func mockTonServer(t *testing.T, childCellJSON, childNum string) *httptest.Server {
	t.Helper()
	treasury, err := parseTonAddress(treasuryAddrFriendly)
	if err != nil {
		t.Fatal(err)
	}
	treasuryFriendly := treasury.base64URL()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		var stackItem json.RawMessage
		if req.Params.Address == treasuryFriendly {
			stackItem = json.RawMessage(`["cell",` + childCellJSON + `]`)
		} else {
			stackItem = json.RawMessage(`["num","` + childNum + `"]`)
		}
		resp := rpcResponse{}
		resp.Result.Stack = []json.RawMessage{stackItem}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func sampleStack() []oracletypes.TonStackItem {
	return []oracletypes.TonStackItem{{Tag: "num", Payload: "0"}}
}

func TestHotVerifyDeposit(t *testing.T) {
	cellJSON := cellStackValueJSON(t, depositChildAddr)
	srv := mockTonServer(t, cellJSON, successNum)
	defer srv.Close()

	ep := Endpoint{URL: srv.URL, Client: transport.New()}
	input := oracletypes.TonInputData{
		TreasuryCallArgs: sampleStack(),
		ChildCallMethod:  "seqno",
		ChildCallArgs:    sampleStack(),
		Action:           oracletypes.TonActionDeposit,
	}

	ok, err := ep.HotVerify(context.Background(), treasuryAddrFriendly, "get_wallet_address", input)
	if err != nil {
		t.Fatalf("HotVerify: %v", err)
	}
	if !ok {
		t.Fatal("expected deposit check to succeed")
	}
}

func TestHotVerifyDepositWrongResultFails(t *testing.T) {
	cellJSON := cellStackValueJSON(t, depositChildAddr)
	srv := mockTonServer(t, cellJSON, "0x0")
	defer srv.Close()

	ep := Endpoint{URL: srv.URL, Client: transport.New()}
	input := oracletypes.TonInputData{
		TreasuryCallArgs: sampleStack(),
		ChildCallMethod:  "seqno",
		ChildCallArgs:    sampleStack(),
		Action:           oracletypes.TonActionDeposit,
	}

	ok, err := ep.HotVerify(context.Background(), treasuryAddrFriendly, "get_wallet_address", input)
	if err == nil || ok {
		t.Fatal("expected non-success sentinel to fail verification")
	}
}

func TestHotVerifyWithdrawalLowNonceSucceeds(t *testing.T) {
	cellJSON := cellStackValueJSON(t, withdrawalChildAddr)
	srv := mockTonServer(t, cellJSON, highNonce) // last-used nonce reported by child
	defer srv.Close()

	ep := Endpoint{URL: srv.URL, Client: transport.New()}
	input := oracletypes.TonInputData{
		TreasuryCallArgs: sampleStack(),
		ChildCallMethod:  "get_last_used_nonce",
		ChildCallArgs:    sampleStack(),
		Action:           oracletypes.TonActionCheckCompletedWithdrawal,
		Nonce:            lowNonce,
	}

	ok, err := ep.HotVerify(context.Background(), treasuryAddrFriendly, "get_wallet_address", input)
	if err != nil {
		t.Fatalf("HotVerify: %v", err)
	}
	if !ok {
		t.Fatal("expected nonce <= last-used to succeed")
	}
}

func TestHotVerifyWithdrawalHighNonceFails(t *testing.T) {
	cellJSON := cellStackValueJSON(t, withdrawalChildAddr)
	srv := mockTonServer(t, cellJSON, lowNonce) // last-used nonce reported by child
	defer srv.Close()

	ep := Endpoint{URL: srv.URL, Client: transport.New()}
	input := oracletypes.TonInputData{
		TreasuryCallArgs: sampleStack(),
		ChildCallMethod:  "get_last_used_nonce",
		ChildCallArgs:    sampleStack(),
		Action:           oracletypes.TonActionCheckCompletedWithdrawal,
		Nonce:            highNonce,
	}

	ok, err := ep.HotVerify(context.Background(), treasuryAddrFriendly, "get_wallet_address", input)
	if err == nil || ok {
		t.Fatal("expected nonce exceeding last-used to fail")
	}
}

func TestPoolHotVerifyReachesThreshold(t *testing.T) {
	cellJSON := cellStackValueJSON(t, depositChildAddr)
	var endpoints []Endpoint
	for i := 0; i < 3; i++ {
		srv := mockTonServer(t, cellJSON, successNum)
		defer srv.Close()
		endpoints = append(endpoints, Endpoint{URL: srv.URL, Client: transport.New()})
	}

	pool := Pool{Threshold: 2, Endpoints: endpoints}
	input := oracletypes.TonInputData{
		TreasuryCallArgs: sampleStack(),
		ChildCallMethod:  "seqno",
		ChildCallArgs:    sampleStack(),
		Action:           oracletypes.TonActionDeposit,
	}

	ok, err := pool.HotVerify(context.Background(), treasuryAddrFriendly, "get_wallet_address", input)
	if err != nil {
		t.Fatalf("Pool.HotVerify: %v", err)
	}
	if !ok {
		t.Fatal("expected pool consensus to succeed")
	}
}
