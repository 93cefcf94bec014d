package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Client talks to the journal backend API: per-exchange balance checks and
// the trade-record CRUD endpoints.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new journal API client
func NewClient(baseURL, token string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "journal").Logger(),
	}
}

// CheckExchange runs a balance check for one exchange.
func (c *Client) CheckExchange(exchangeID string, creds Credentials) (*CheckResult, error) {
	var result CheckResult
	if err := c.do(http.MethodPost, "/check/"+exchangeID, creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetBalanceSummary returns the backend's aggregate balance view.
func (c *Client) GetBalanceSummary() (*BalanceSummary, error) {
	var summary BalanceSummary
	if err := c.do(http.MethodGet, "/balance/summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ListRecords fetches the full trade-record list.
func (c *Client) ListRecords() ([]RecordPayload, error) {
	var list []RecordPayload
	if err := c.do(http.MethodGet, "/records", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetRecord fetches a single record by id.
func (c *Client) GetRecord(id int64) (*RecordPayload, error) {
	var record RecordPayload
	if err := c.do(http.MethodGet, fmt.Sprintf("/records/%d", id), nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateRecord submits a new record and returns the authoritative server copy.
func (c *Client) CreateRecord(payload RecordPayload) (*RecordPayload, error) {
	var created RecordPayload
	if err := c.do(http.MethodPost, "/records", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateRecord updates a record and returns the authoritative server copy.
func (c *Client) UpdateRecord(id int64, payload RecordPayload) (*RecordPayload, error) {
	var updated RecordPayload
	if err := c.do(http.MethodPut, fmt.Sprintf("/records/%d", id), payload, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteRecord deletes a record by id.
func (c *Client) DeleteRecord(id int64) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/records/%d", id), nil, nil)
}

// do performs a request and decodes the JSON response into out when non-nil.
func (c *Client) do(method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(raw)
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("journal API error (%s %s): %s", method, endpoint, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
