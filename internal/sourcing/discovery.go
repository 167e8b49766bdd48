package sourcing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DiscoveryResult is one search-engine hit. Only URL is consumed downstream;
// title and snippet are kept for logging.
type DiscoveryResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// DiscoveryError is a typed page-level provider failure. It aborts further
// pagination but already-collected identifiers are retained.
type DiscoveryError struct {
	Page       int
	StatusCode int
	Body       string
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery provider returned %d on page %d: %s", e.StatusCode, e.Page, e.Body)
}

// DiscoveryClient queries the external search discovery provider.
type DiscoveryClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewDiscoveryClient(baseURL, apiKey string, timeout time.Duration) *DiscoveryClient {
	return &DiscoveryClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// discoveryResponse mirrors the provider's top-level JSON response.
type discoveryResponse struct {
	Results []DiscoveryResult `json:"results"`
}

// SearchPage fetches one page of results for the query expression.
func (c *DiscoveryClient) SearchPage(ctx context.Context, query string, page, pageSize int) ([]DiscoveryResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("num", strconv.Itoa(pageSize))

	reqURL := c.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &DiscoveryError{Page: page, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var apiResp discoveryResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	return apiResp.Results, nil
}
