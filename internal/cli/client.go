package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/metaloot/registry/internal/dependencies/ids"
	"github.com/metaloot/registry/internal/instruction"
)

// Client is an HTTP client for the API
type Client struct {
	baseURL    string
	httpClient *http.Client
	ids        ids.Generator
	trace      io.Writer
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		ids: ids.New(),
	}
}

// SetTrace makes the client log each request and its status to w
func (c *Client) SetTrace(w io.Writer) {
	c.trace = w
}

// APIError represents an error response from the API
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func (e *APIError) String() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Do performs an HTTP request and decodes a successful JSON body into result
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if c.trace != nil {
		_, _ = fmt.Fprintf(c.trace, "%s %s -> %d\n", method, url, resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// Check for error responses
	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return fmt.Errorf("%s", errResp.Error.String())
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	// Parse successful response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.Do(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, http.MethodPost, path, body, result)
}

// Submit wraps ix in a fresh transaction, signs it with keys and posts it
func (c *Client) Submit(ctx context.Context, ix instruction.Instruction, keys ...solana.PrivateKey) (Receipt, error) {
	tx := instruction.NewTransaction(c.ids.NewID(), ix)
	if len(keys) > 0 {
		if err := tx.Sign(keys...); err != nil {
			return Receipt{}, fmt.Errorf("failed to sign transaction: %w", err)
		}
	}

	var receipt Receipt
	if err := c.Post(ctx, "/api/v1/transactions", tx, &receipt); err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}
