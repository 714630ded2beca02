package sync

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// ErrTimeout marks an external request that did not complete in time.
var ErrTimeout = errors.New("external request timed out")

// UpstreamError carries a non-2xx response from the external CMS.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("strapi returned status %d: %s", e.StatusCode, e.Body)
}

// Entry is one existing record in the external CMS.
type Entry struct {
	ID         int             `json:"id"`
	Attributes json.RawMessage `json:"attributes"`
}

type searchResponse struct {
	Data []Entry `json:"data"`
}

// Client talks to the Strapi content API. No retries, no backoff; failures
// surface to the caller.
type Client struct {
	host     string
	apiToken string
	http     *http.Client
}

// NewClient creates a Strapi client with a request timeout.
func NewClient(host, apiToken string, timeout time.Duration) *Client {
	return &Client{
		host:     host,
		apiToken: apiToken,
		http:     &http.Client{Timeout: timeout},
	}
}

// FindByIntegrationID searches the CMS for entries whose integrationId
// matches. Returns all matches; callers take the first on duplicates.
func (c *Client) FindByIntegrationID(integrationID string) ([]Entry, error) {
	path := "/api/imoveis?" + url.Values{
		"filters[integrationId][$eq]": {integrationID},
	}.Encode()

	body, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode strapi search response: %w", err)
	}
	return resp.Data, nil
}

// Create inserts a new CMS entry and returns the response body.
func (c *Client) Create(payload StrapiImovel) (json.RawMessage, error) {
	return c.send(http.MethodPost, "/api/imoveis", payload)
}

// Update overwrites an existing CMS entry and returns the response body.
func (c *Client) Update(entryID int, payload StrapiImovel) (json.RawMessage, error) {
	return c.send(http.MethodPut, fmt.Sprintf("/api/imoveis/%d", entryID), payload)
}

// Delete removes a CMS entry.
func (c *Client) Delete(entryID int) error {
	_, err := c.do(http.MethodDelete, fmt.Sprintf("/api/imoveis/%d", entryID), nil)
	return err
}

func (c *Client) send(method, path string, payload StrapiImovel) (json.RawMessage, error) {
	// Strapi v4 wraps write payloads in a "data" envelope
	body, err := json.Marshal(map[string]StrapiImovel{"data": payload})
	if err != nil {
		return nil, err
	}
	return c.do(method, path, body)
}

func (c *Client) do(method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, c.host+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, ErrTimeout)
}
