package facility

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client looks up a single facility's raw detail record upstream
type Client interface {
	FetchDetail(ctx context.Context, facilityType, code, areaCode string) (map[string]interface{}, error)
}

// HTTPClient calls the open-data proxy endpoints over HTTP
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient creates a facility detail client
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type detailRequest struct {
	Code     string `json:"stcode"`
	AreaCode string `json:"arcode,omitempty"`
}

type detailResponse struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error,omitempty"`
	Data    map[string]interface{} `json:"data"`
}

// FetchDetail posts a lookup to the per-type detail endpoint and returns the
// raw upstream item
func (c *HTTPClient) FetchDetail(ctx context.Context, facilityType, code, areaCode string) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/%s-detail", c.baseURL, facilityType)

	jsonData, err := json.Marshal(detailRequest{Code: code, AreaCode: areaCode})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("facility API error: status %d: %s", resp.StatusCode, string(body))
	}

	var out detailResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !out.Success {
		if out.Error != "" {
			return nil, fmt.Errorf("facility API error: %s", out.Error)
		}
		return nil, fmt.Errorf("facility API returned failure")
	}
	if out.Data == nil {
		return nil, fmt.Errorf("facility API response has no data")
	}

	return out.Data, nil
}
