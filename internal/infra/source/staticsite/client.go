package staticsite

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yanqian/activity-for-you/internal/domain/activity"
)

const (
	defaultTimeout  = 10 * time.Second
	maxDocumentSize = 1 << 20
)

// Client fetches recommendation documents published as <baseURL>/<city>.json.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the static data directory at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch retrieves the raw document for city.
func (c *Client) Fetch(ctx context.Context, city string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(city))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build document request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("document request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", endpoint, activity.ErrDocumentNotFound)
	}
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("document request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read document response: %w", err)
	}
	if len(body) > maxDocumentSize {
		return nil, fmt.Errorf("document for %s exceeds %d bytes", city, maxDocumentSize)
	}
	return body, nil
}

var _ activity.DocumentSource = (*Client)(nil)
