// ABOUTME: JSON-over-HTTP implementation of the backend Client
// ABOUTME: Signs requests with project credentials and tags them with request ids
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

// ErrStatus is wrapped by errors for non-2xx responses.
var ErrStatus = errors.New("unexpected status")

// HTTPConfig holds the hosted project coordinates.
type HTTPConfig struct {
	BaseURL   string
	ProjectID string
	PublicKey string
	Timeout   time.Duration
}

// HTTPClient talks to the hosted backend.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	projectID  string
	publicKey  string
	logger     *zap.Logger
}

// NewHTTPClient constructs a hosted backend client.
func NewHTTPClient(cfg HTTPConfig, logger *zap.Logger) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		projectID:  cfg.ProjectID,
		publicKey:  cfg.PublicKey,
		logger:     logger,
	}
}

func (c *HTTPClient) FetchRecords(ctx context.Context, table string, params Params) (*Response, error) {
	return c.call(ctx, table, "fetch", params)
}

func (c *HTTPClient) GetRecordByID(ctx context.Context, table string, id int, params Params) (*Response, error) {
	params.RecordIDs = []int{id}
	return c.call(ctx, table, "get", params)
}

func (c *HTTPClient) CreateRecord(ctx context.Context, table string, params Params) (*Response, error) {
	return c.call(ctx, table, "create", params)
}

func (c *HTTPClient) UpdateRecord(ctx context.Context, table string, params Params) (*Response, error) {
	return c.call(ctx, table, "update", params)
}

func (c *HTTPClient) DeleteRecord(ctx context.Context, table string, params Params) (*Response, error) {
	return c.call(ctx, table, "delete", params)
}

func (c *HTTPClient) call(ctx context.Context, table, action string, params Params) (*Response, error) {
	path := fmt.Sprintf("/v1/tables/%s/%s", url.PathEscape(table), action)

	var resp Response
	if err := c.doJSON(ctx, http.MethodPost, path, params, &resp); err != nil {
		return nil, fmt.Errorf("%s %s: %w", action, table, err)
	}
	return &resp, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	endpoint := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.projectID != "" {
		req.Header.Set("X-Apper-Project-Id", c.projectID)
	}
	if c.publicKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.publicKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		c.logger.Warn("backend request failed",
			zap.String("request_id", requestID),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, strings.TrimSpace(msg))
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
