package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"medcore/m/domain"
)

// Client is the keyed record API the adapter talks to.
type Client interface {
	Fetch(ctx context.Context, entity domain.EntityType) ([]json.RawMessage, error)
	Upsert(ctx context.Context, entity domain.EntityType, record json.RawMessage) error
	Delete(ctx context.Context, entity domain.EntityType, id string) error
}

// HTTPClient implements Client against /api/{collection}.
type HTTPClient struct {
	baseURL string
	secret  string
	http    *http.Client
}

// NewHTTPClient builds a client. Deadlines come from the caller's context.
func NewHTTPClient(baseURL, secret string) *HTTPClient {
	return &HTTPClient{baseURL: baseURL, secret: secret, http: &http.Client{}}
}

func (c *HTTPClient) Fetch(ctx context.Context, entity domain.EntityType) ([]json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/"+string(entity), nil)
	if err != nil {
		return nil, err
	}
	var records []json.RawMessage
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errNotCollection
	}
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", entity, err)
	}
	return records, nil
}

func (c *HTTPClient) Upsert(ctx context.Context, entity domain.EntityType, record json.RawMessage) error {
	_, err := c.do(ctx, http.MethodPost, "/api/"+string(entity), record)
	return err
}

func (c *HTTPClient) Delete(ctx context.Context, entity domain.EntityType, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/"+string(entity)+"/"+url.PathEscape(id), nil)
	return err
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	token, err := SignToken(c.secret, time.Now())
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}
	return data, nil
}
