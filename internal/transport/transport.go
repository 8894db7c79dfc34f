// Package transport provides the single process-wide HTTP client the NEAR,
// Stellar, TON and EVM verifiers funnel their outbound RPCs through, with
// uniform timeout handling and error enrichment. The Solana verifier uses
// solana-go's RPC client and the health observer its own http.Client.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hot-dao/hot-validation-oracle/internal/oraclerr"
)

// DefaultTimeout is the per-request upper bound enforced on every outbound
// HTTP call, regardless of the caller's own context deadline.
const DefaultTimeout = 1500 * time.Millisecond

// logSnipMax bounds the error body snippet: 600 bytes total, half from the
// head and half from the tail, joined with an ellipsis.
const logSnipMax = 600

// Client is a thin wrapper around *http.Client enforcing DefaultTimeout and
// classifying failures per the oracle's error taxonomy. A single Client is
// constructed at process start and shared by the NEAR, Stellar, TON and EVM
// verifiers; it is safe for concurrent use.
type Client struct {
	http *http.Client
}

// New builds a pooled transport Client. The underlying *http.Client relies
// on Go's default connection pooling (http.DefaultTransport's settings),
// matching the teacher's per-client *http.Client pattern.
func New() *Client {
	return &Client{http: &http.Client{}}
}

// PostJSONReceiveJSON POSTs body as JSON to url and decodes the response
// into out. Errors are RequestFailed-shaped (oraclerr.Transport) for
// transport failures and non-2xx responses, or oraclerr.Decode for 2xx
// responses whose body does not parse.
func PostJSONReceiveJSON[T any](ctx context.Context, c *Client, url string, body any) (T, error) {
	var zero T

	encoded, err := json.Marshal(body)
	if err != nil {
		return zero, fmt.Errorf("transport: encoding request body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return zero, fmt.Errorf("transport: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, &oraclerr.Transport{URL: url, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, &oraclerr.Transport{URL: url, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return zero, &oraclerr.Transport{
			URL:    url,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("non-success status, body: %s", snip(respBody)),
		}
	}

	var out T
	if err := json.Unmarshal(respBody, &out); err != nil {
		return zero, &oraclerr.Decode{
			URL:    url,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%w (body: %s)", err, snip(respBody)),
		}
	}
	return out, nil
}

// GetJSON issues a GET to url and decodes the response into T, with the
// same error classification as PostJSONReceiveJSON.
func GetJSON[T any](ctx context.Context, c *Client, url string) (T, error) {
	var zero T

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return zero, fmt.Errorf("transport: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, &oraclerr.Transport{URL: url, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, &oraclerr.Transport{URL: url, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return zero, &oraclerr.Transport{
			URL:    url,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("non-success status, body: %s", snip(respBody)),
		}
	}

	var out T
	if err := json.Unmarshal(respBody, &out); err != nil {
		return zero, &oraclerr.Decode{
			URL:    url,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%w (body: %s)", err, snip(respBody)),
		}
	}
	return out, nil
}

// snip truncates b to logSnipMax bytes, keeping half from the head and half
// from the tail with an ellipsis in between. Only used when constructing
// error text — the happy path never materializes this string.
func snip(b []byte) string {
	s := string(b)
	if len(s) <= logSnipMax {
		return s
	}
	half := logSnipMax / 2
	return fmt.Sprintf("%s…%s", s[:half], s[len(s)-half:])
}
