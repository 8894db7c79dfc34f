// Package health runs a periodic, best-effort availability probe against
// every configured RPC server and publishes the result as gauges: whether
// each server answered, and whether each chain currently has enough live
// servers to still reach its configured threshold.
package health

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/hot-dao/hot-validation-oracle/internal/metrics"
	"github.com/hot-dao/hot-validation-oracle/internal/oracletypes"
)

const (
	evaluationInterval  = 30 * time.Second
	probeTimeout        = 5 * time.Second
	maxConcurrentProbes = 5
)

// Observer periodically probes every configured server and records its
// up/down state, plus each chain's slack above its consensus threshold.
type Observer struct {
	configs oracletypes.ValidationConfig
	http    *http.Client
}

// NewObserver builds an Observer over a fixed, already-validated config.
func NewObserver(configs oracletypes.ValidationConfig) *Observer {
	return &Observer{configs: configs, http: &http.Client{Timeout: probeTimeout}}
}

// Run ticks every 30s until ctx is canceled, probing all configured servers
// on each tick. It blocks; callers run it in its own goroutine and cancel
// ctx to stop it.
func (o *Observer) Run(ctx context.Context) {
	ticker := time.NewTicker(evaluationInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.checkAllServers(ctx)
		}
	}
}

func (o *Observer) checkAllServers(ctx context.Context) {
	for chainID, cfg := range o.configs {
		available := o.healthcheckMany(ctx, chainID, cfg.Servers)
		label := chainID.Label()

		up := 0
		for server, ok := range available {
			domain := twoPartDomain(server)
			if ok {
				up++
				metrics.RPCAvailabilityServerUp.WithLabelValues(label, domain).Set(1)
			} else {
				metrics.RPCAvailabilityServerUp.WithLabelValues(label, domain).Set(0)
			}
		}
		metrics.RPCAvailabilityThresholdDelta.WithLabelValues(label).Set(float64(up - cfg.Threshold))
	}
}

// healthcheckMany probes every server for chainID concurrently, bounded to
// maxConcurrentProbes in flight at once, and reports which ones answered.
func (o *Observer) healthcheckMany(ctx context.Context, chainID oracletypes.ChainId, servers []string) map[string]bool {
	results := make(map[string]bool, len(servers))
	resultsCh := make(chan struct {
		server string
		ok     bool
	}, len(servers))

	sem := semaphore.NewWeighted(maxConcurrentProbes)
	for _, server := range servers {
		server := server
		if err := sem.Acquire(ctx, 1); err != nil {
			resultsCh <- struct {
				server string
				ok     bool
			}{server, false}
			continue
		}
		go func() {
			defer sem.Release(1)
			ok := o.probe(ctx, chainID, server) == nil
			resultsCh <- struct {
				server string
				ok     bool
			}{server, ok}
		}()
	}
	for range servers {
		r := <-resultsCh
		results[r.server] = r.ok
	}
	return results
}

// probe sends one chain-appropriate lightweight RPC request to server and
// reports whether it received a 2xx response.
func (o *Observer) probe(ctx context.Context, chainID oracletypes.ChainId, server string) error {
	payload := probePayload(chainID)
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, server, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("health: %s returned status %d", server, resp.StatusCode)
	}
	return nil
}

// probePayload builds the chain-appropriate minimal JSON-RPC request: NEAR's
// final-block query, Stellar's getLatestLedger, or EVM's eth_blockNumber.
// TON and Solana chains have no dedicated probe: they get the eth_blockNumber
// request too, and only the HTTP status of the reply is checked.
func probePayload(chainID oracletypes.ChainId) any {
	switch {
	case chainID.IsNear():
		return map[string]any{
			"jsonrpc": "2.0",
			"method":  "block",
			"params":  map[string]any{"finality": "final"},
			"id":      1,
		}
	case chainID.IsStellar():
		return map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"method":  "getLatestLedger",
		}
	default:
		return map[string]any{
			"jsonrpc": "2.0",
			"method":  "eth_blockNumber",
			"params":  []any{},
			"id":      1,
		}
	}
}

// twoPartDomain extracts a two-label domain suffix from an RPC server URL,
// e.g. "https://foo-bar.near-mainnet.quiknode.pro/123" -> "quiknode.pro",
// so the up/down gauge's domain label never carries an access-token path
// segment or a full subdomain that could identify a specific account.
func twoPartDomain(server string) string {
	u, err := url.Parse(server)
	if err != nil || u.Hostname() == "" {
		return "None"
	}
	labels := strings.Split(u.Hostname(), ".")
	if len(labels) < 2 {
		if len(labels) == 1 {
			return labels[0]
		}
		return "None"
	}
	return labels[len(labels)-2] + "." + labels[len(labels)-1]
}
