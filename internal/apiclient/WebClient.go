package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/log"
)

// identityKeys are stripped from outgoing bodies when their value is "". The server
// rejects an empty string where it expects a numeric identity.
var identityKeys = []string{"id", "objectId", "environmentId", "userId"}

// WebClient sends authenticated JSON requests to the API.
type WebClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger

	mu    sync.RWMutex
	token string
}

// NewWebClient creates a client for the API at baseURL.
func NewWebClient(baseURL string, logger *log.Logger) *WebClient {
	return &WebClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// SetToken sets the bearer token sent with every following request.
func (c *WebClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *WebClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *WebClient) Get(ctx context.Context, route string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, route, nil)
}

func (c *WebClient) Post(ctx context.Context, route string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, route, body)
}

func (c *WebClient) Put(ctx context.Context, route string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPut, route, body)
}

func (c *WebClient) Delete(ctx context.Context, route string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, route, nil)
}

func (c *WebClient) do(ctx context.Context, method, route string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(sanitizeBody(payload))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+route, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debugf("%s %s", method, route)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: "reading response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := newStatusError(resp.StatusCode, data)
		c.logger.Warnf("%s %s failed: %v", method, route, reqErr)
		return nil, reqErr
	}
	return data, nil
}

// sanitizeBody removes top-level identity keys whose value is the empty string.
// Bodies that are not JSON objects are returned unchanged.
func sanitizeBody(payload []byte) []byte {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return payload
	}

	changed := false
	for _, key := range identityKeys {
		if raw, ok := fields[key]; ok && string(bytes.TrimSpace(raw)) == `""` {
			delete(fields, key)
			changed = true
		}
	}
	if !changed {
		return payload
	}

	sanitized, err := json.Marshal(fields)
	if err != nil {
		return payload
	}
	return sanitized
}
