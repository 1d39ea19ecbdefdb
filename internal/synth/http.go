package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/licmaster/internal/domain/types"
	"github.com/okian/licmaster/pkg/logger"
)

// ErrUnexpectedStatus is returned when the service answers with a status the
// client does not handle.
var ErrUnexpectedStatus = errors.New("unexpected status")

// HTTPClient wraps http.Client with the service base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends a request and decodes a JSON answer into out when out is non-nil.
// It returns the response status.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(ctx, "failed to close response body", logger.Error(err))
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, fmt.Errorf("%w %d from %s %s: %s", ErrUnexpectedStatus, resp.StatusCode, method, path, bytes.TrimSpace(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode %s response: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

// Health checks /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	return err
}

// PostBatch submits one batch. The second return is true when the service
// had already seen the batch ID.
func (c *HTTPClient) PostBatch(ctx context.Context, b Batch) (types.StageResult, bool, error) {
	var res types.StageResult
	status, err := c.do(ctx, http.MethodPost, "/records", b, &res)
	if err != nil {
		return res, false, err
	}
	switch status {
	case http.StatusAccepted:
		return res, false, nil
	case http.StatusOK:
		return res, true, nil
	}
	return res, false, fmt.Errorf("%w %d from POST /records", ErrUnexpectedStatus, status)
}

// Reconcile triggers a synchronous reconcile run.
func (c *HTTPClient) Reconcile(ctx context.Context) (types.RunInfo, error) {
	var run types.RunInfo
	_, err := c.do(ctx, http.MethodPost, "/reconcile", nil, &run)
	return run, err
}

// Stats reads /stats.
func (c *HTTPClient) Stats(ctx context.Context) (types.ServiceStats, error) {
	var st types.ServiceStats
	_, err := c.do(ctx, http.MethodGet, "/stats", nil, &st)
	return st, err
}

// submitBatches posts batches with cfg.Workers concurrent submitters and
// records the outcome counts on stats.
func submitBatches(ctx context.Context, cfg *Config, client *HTTPClient, batches []Batch, stats *Stats) error {
	logger.Get().Info(ctx, "submitting batches",
		logger.Int("batches", len(batches)),
		logger.Int("workers", cfg.Workers))

	var accepted, duplicate, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for _, b := range batches {
		g.Go(func() error {
			res, dup, err := client.PostBatch(gctx, b)
			switch {
			case err != nil:
				failed.Add(1)
				logger.Get().Warn(gctx, "batch failed", logger.String("batchID", b.BatchID), logger.Error(err))
			case dup:
				duplicate.Add(1)
			default:
				accepted.Add(int64(res.Accepted))
			}
			if cfg.Verbose {
				logger.Get().Info(gctx, "batch submitted",
					logger.String("batchID", b.BatchID),
					logger.Int("records", len(b.Records)),
					logger.Int("accepted", res.Accepted),
					logger.Bool("duplicate", dup))
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	stats.Accepted += int(accepted.Load())
	stats.Duplicates += int(duplicate.Load())
	stats.Failed += int(failed.Load())

	logger.Get().Info(ctx, "batch submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("failed", stats.Failed))
	return nil
}
