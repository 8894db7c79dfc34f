package threshold

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// CallJSON runs a threshold_call whose result type R is not itself
// comparable (e.g. it embeds a slice or a nested struct, like
// WalletAuthMethods or HotVerifyResult) by voting on each result's
// canonical JSON encoding instead of the Go value directly. Two
// deserializations of the same JSON content always marshal back to
// identical bytes (Go's encoding/json is deterministic for field-ordered
// structs and ordered slices), so this preserves the "equal results from
// different verifiers collapse into the same bucket" invariant without
// requiring R: comparable.
func CallJSON[V any, R any](ctx context.Context, c Coordinator[V, string], f func(context.Context, V) (R, error)) (R, error) {
	var zero R

	var mu sync.Mutex
	cache := make(map[string]R)

	keyedF := func(ctx context.Context, v V) (string, error) {
		r, err := f(ctx, v)
		if err != nil {
			return "", err
		}
		key, err := json.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("threshold: encoding vote for comparison: %w", err)
		}
		k := string(key)
		mu.Lock()
		if _, ok := cache[k]; !ok {
			cache[k] = r
		}
		mu.Unlock()
		return k, nil
	}

	key, err := c.Call(ctx, keyedF)
	if err != nil {
		return zero, err
	}

	mu.Lock()
	r, ok := cache[key]
	mu.Unlock()
	if !ok {
		return zero, fmt.Errorf("threshold: internal error, winning key %q missing from cache", key)
	}
	return r, nil
}
