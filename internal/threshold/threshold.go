// Package threshold implements the generic K-of-N consensus coordinator:
// fan a callable out across a verifier set with bounded concurrency, tally
// identical results, and return the first value whose vote count reaches
// the configured threshold.
package threshold

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/hot-dao/hot-validation-oracle/internal/oraclerr"
)

// Coordinator runs a threshold_call over a fixed verifier set V, producing
// votes of a comparable result type R. Threshold and Verifiers are
// immutable after construction; no verifier is added or removed at runtime.
type Coordinator[V any, R comparable] struct {
	Threshold int
	Verifiers []V
	// Label renders a verifier for inclusion in the NoConsensus tally/errors
	// (used only for diagnostics, e.g. the endpoint URL).
	Label func(V) string
}

// Call fans f out across every verifier with bounded concurrency Threshold,
// shuffling the verifier order with a cryptographic source first so that a
// slow endpoint never structurally dominates the result. It returns the
// first R whose vote count reaches Threshold, cancelling any still
// in-flight calls (best-effort; in-flight HTTP requests observe ctx
// cancellation via their own context-aware transport). Errors are
// collected but never counted as votes. If every call completes without any
// value reaching Threshold, Call returns an *oraclerr.NoConsensus carrying
// the full tally and collected errors.
func (c Coordinator[V, R]) Call(ctx context.Context, f func(context.Context, V) (R, error)) (R, error) {
	var zero R

	order, err := shuffledIndices(len(c.Verifiers))
	if err != nil {
		return zero, fmt.Errorf("threshold: shuffling verifiers: %w", err)
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := semaphore.NewWeighted(int64(c.Threshold))

	type vote struct {
		result R
		err    error
		label  string
	}
	votes := make(chan vote, len(order))

	var wg sync.WaitGroup
	go func() {
		for _, idx := range order {
			v := c.Verifiers[idx]
			label := ""
			if c.Label != nil {
				label = c.Label(v)
			}
			if err := sem.Acquire(callCtx, 1); err != nil {
				// Context already cancelled (consensus reached elsewhere, or the
				// caller gave up) — stop launching new calls.
				break
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer sem.Release(1)
				r, err := f(callCtx, v)
				select {
				case votes <- vote{result: r, err: err, label: label}:
				case <-callCtx.Done():
				}
			}()
		}
		wg.Wait()
		close(votes)
	}()

	tally := make(map[R]int)
	tallyLabels := make(map[string]int)
	var collectedErrs []error

	for v := range votes {
		if v.err != nil {
			collectedErrs = append(collectedErrs, v.err)
			continue
		}
		tally[v.result]++
		tallyLabels[fmt.Sprintf("%v", v.result)]++
		if tally[v.result] >= c.Threshold {
			cancel() // best-effort: stop any calls still in flight
			return v.result, nil
		}
	}

	return zero, &oraclerr.NoConsensus{
		Threshold: c.Threshold,
		Tally:     tallyLabels,
		Errors:    collectedErrs,
	}
}

// shuffledIndices returns a cryptographically-shuffled permutation of
// [0, n), Fisher-Yates with crypto/rand as the entropy source. math/rand
// would not satisfy the "shuffled with a cryptographic source" invariant.
func shuffledIndices(n int) ([]int, error) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := n - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, err
		}
		j := int(jBig.Int64())
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx, nil
}
