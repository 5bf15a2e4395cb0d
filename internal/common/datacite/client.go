package datacite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bulk-doi/internal/common/config"
	commonhttp "bulk-doi/internal/common/http"
	"bulk-doi/internal/common/metrics"
)

const contentType = "application/vnd.api+json"

// ErrConflict is returned by Create when the DOI is already registered.
var ErrConflict = errors.New("doi already registered")

// APIError is a non-success response from the DataCite API.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("datacite %s failed (status %d): %s", e.Operation, e.StatusCode, e.Body)
}

// Client talks to one DataCite environment (test or live).
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *commonhttp.Client
}

func NewClient(cfg config.DataciteConfig) *Client {
	return NewClientWithHTTP(cfg, commonhttp.NewClient(config.GetDuration(cfg.Timeout)))
}

func NewClientWithHTTP(cfg config.DataciteConfig, httpClient *commonhttp.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: httpClient,
	}
}

// Exists reports whether doi is known to DataCite in any state (draft,
// registered or findable).
func (c *Client) Exists(ctx context.Context, doi string) (bool, error) {
	status, body, err := c.do(ctx, "exists", http.MethodGet, "/dois/"+doi, nil)
	if err != nil {
		return false, err
	}

	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, &APIError{Operation: "exists", StatusCode: status, Body: string(body)}
	}
}

// Create registers doi as a draft with the given metadata.
func (c *Client) Create(ctx context.Context, doi string, payload *Payload) error {
	if payload == nil {
		return fmt.Errorf("payload is required")
	}
	if payload.Data.Attributes.DOI == "" {
		payload.Data.Attributes.DOI = doi
	}
	if payload.Data.Attributes.DOI != doi {
		return fmt.Errorf("payload doi %q does not match %q", payload.Data.Attributes.DOI, doi)
	}

	status, body, err := c.do(ctx, "create", http.MethodPost, "/dois", payload)
	if err != nil {
		return err
	}

	switch {
	case status == http.StatusCreated || status == http.StatusOK:
		return nil
	case status == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, doi)
	case status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(string(body)), "already been taken"):
		return fmt.Errorf("%w: %s", ErrConflict, doi)
	default:
		return &APIError{Operation: "create", StatusCode: status, Body: string(body)}
	}
}

// Publish makes a draft DOI findable. Published DOIs cannot be deleted.
func (c *Client) Publish(ctx context.Context, doi string) error {
	payload := &Payload{
		Data: Data{
			ID:         doi,
			Type:       ResourceType,
			Attributes: Attributes{Event: EventPublish},
		},
	}

	status, body, err := c.do(ctx, "publish", http.MethodPut, "/dois/"+doi, payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &APIError{Operation: "publish", StatusCode: status, Body: string(body)}
	}
	return nil
}

// Ping checks that the API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	status, body, err := c.do(ctx, "heartbeat", http.MethodGet, "/heartbeat", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &APIError{Operation: "heartbeat", StatusCode: status, Body: string(body)}
	}
	return nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, payload interface{}) (int, []byte, error) {
	start := time.Now()
	defer func() {
		metrics.DataciteRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal %s payload: %w", operation, err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", contentType)
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.DataciteRequests.WithLabelValues(operation, "error").Inc()
		return 0, nil, fmt.Errorf("failed to execute %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.DataciteRequests.WithLabelValues(operation, "error").Inc()
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	metrics.DataciteRequests.WithLabelValues(operation, fmt.Sprintf("%d", resp.StatusCode)).Inc()
	return resp.StatusCode, body, nil
}
