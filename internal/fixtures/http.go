package fixtures

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/ratecards/internal/domain/model"
)

// RunStatus is the part of a run record the smoke test reads.
type RunStatus struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Documents int    `json:"documents"`
	Error     string `json:"error"`
}

// Client talks to the service API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client with a request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

func (c *Client) do(ctx context.Context, method, path string, want int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(nil))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(body))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", http.StatusOK, nil)
}

// TriggerRun starts a pipeline run.
func (c *Client) TriggerRun(ctx context.Context) (RunStatus, error) {
	var run RunStatus
	err := c.do(ctx, http.MethodPost, "/runs", http.StatusAccepted, &run)
	return run, err
}

// WaitForRun polls the run until it leaves the running state.
func (c *Client) WaitForRun(ctx context.Context, id string, every time.Duration) (RunStatus, error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		var run RunStatus
		if err := c.do(ctx, http.MethodGet, "/runs/"+id, http.StatusOK, &run); err != nil {
			return RunStatus{}, err
		}
		if run.Status != "running" {
			return run, nil
		}
		select {
		case <-ctx.Done():
			return RunStatus{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Gold fetches the gold table of the latest successful run.
func (c *Client) Gold(ctx context.Context) (model.GoldTable, error) {
	var t model.GoldTable
	err := c.do(ctx, http.MethodGet, "/ratecards/gold", http.StatusOK, &t)
	return t, err
}
