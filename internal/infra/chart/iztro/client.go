package iztro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/iztro-mcp/internal/domain/astrolabe"
	apperrors "github.com/yanqian/iztro-mcp/pkg/errors"
)

const (
	defaultBaseURL = "http://localhost:3000"
	defaultTimeout = 10 * time.Second
	astrolabePath  = "/v1/astrolabe"
)

// Client talks to an iztro chart service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a chart client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(url, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Chart requests a natal chart and returns the JSON document as received.
func (c *Client) Chart(ctx context.Context, chartReq astrolabe.ChartRequest) (json.RawMessage, error) {
	body, err := json.Marshal(chartReq)
	if err != nil {
		return nil, apperrors.Wrap("chart_error", "encode chart request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+astrolabePath, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap("chart_error", "build chart request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap("chart_error", "chart request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, apperrors.Wrap("chart_error",
			fmt.Sprintf("chart request error: status=%d body=%s", resp.StatusCode, string(payload)), nil)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap("chart_error", "read chart response", err)
	}
	if !json.Valid(payload) {
		return nil, apperrors.Wrap("chart_error", "chart response is not valid JSON", nil)
	}
	return json.RawMessage(payload), nil
}

var _ astrolabe.ChartClient = (*Client)(nil)
