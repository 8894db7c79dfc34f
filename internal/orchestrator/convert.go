package orchestrator

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hot-dao/hot-validation-oracle/internal/oracletypes"
)

// hexToBase58 re-encodes a hex message hash as base58, the wire format
// NEAR's msg_hash view-call argument expects.
func hexToBase58(messageHex string) (string, error) {
	b, err := hex.DecodeString(trimHexPrefix(messageHex))
	if err != nil {
		return "", fmt.Errorf("invalid message hex: %w", err)
	}
	return base58.Encode(b), nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func unmarshalMetadata(metadata string, out *oracletypes.AuthMethodMetadata) error {
	return json.Unmarshal([]byte(metadata), out)
}

func inputDataToStellar(d oracletypes.InputData) (oracletypes.StellarInputData, error) {
	if d.Kind != oracletypes.InputDataStellar || d.Stellar == nil {
		return oracletypes.StellarInputData{}, fmt.Errorf("auth call input: expected a stellar payload, got %v", d.Kind)
	}
	return *d.Stellar, nil
}

func inputDataToTon(d oracletypes.InputData) (oracletypes.TonInputData, error) {
	if d.Kind != oracletypes.InputDataTon || d.Ton == nil {
		return oracletypes.TonInputData{}, fmt.Errorf("auth call input: expected a ton payload, got %v", d.Kind)
	}
	return *d.Ton, nil
}

func inputDataToEvm(d oracletypes.InputData) (oracletypes.EvmInputData, error) {
	if d.Kind != oracletypes.InputDataEvm || d.Evm == nil {
		return oracletypes.EvmInputData{}, fmt.Errorf("auth call input: expected an evm payload, got %v", d.Kind)
	}
	return *d.Evm, nil
}

func inputDataToSolana(d oracletypes.InputData) (oracletypes.SolanaInputData, error) {
	if d.Kind != oracletypes.InputDataSolana || d.Solana == nil {
		return oracletypes.SolanaInputData{}, fmt.Errorf("auth call input: expected a solana payload, got %v", d.Kind)
	}
	return *d.Solana, nil
}

// prometheusTimer starts a histogram timer the same way the source's
// `let _timer = metrics::X.start_timer()` RAII guard does: the returned
// func observes the elapsed duration, called via defer at the call site.
func prometheusTimer(h prometheus.Histogram) func() {
	timer := prometheus.NewTimer(h)
	return func() { timer.ObserveDuration() }
}

type correlationIDKey struct{}

// withCorrelationID attaches a per-request id to ctx so every log line
// emitted while verifying one request can be joined together.
func withCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationID retrieves the id set by withCorrelationID, or "" if none.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}
