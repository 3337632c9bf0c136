package clients

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

	"cafe-pos/config"

	"github.com/google/uuid"
)

var (
	// ErrTransport wraps failures where no usable HTTP response arrived.
	ErrTransport = errors.New("cafe api unreachable")
	// ErrUnauthenticated means the stored credential is missing, expired or rejected.
	ErrUnauthenticated = errors.New("not authenticated")
)

// ServerError is a well-formed response that the API marked as failed.
type ServerError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("cafe api: %s (http %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("cafe api: request failed (http %d, status %q)", e.StatusCode, e.Status)
}

// TokenSource supplies the bearer token; it is consulted before every authenticated call.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the remote café API.
type Client struct {
	baseURL    string
	imageURL   string
	makerID    string
	httpClient *http.Client
	tokens     TokenSource
}

func NewClient(cfg config.APIConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		imageURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
		makerID:  cfg.MakerID,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// WithTokens returns a copy of the client that authenticates with ts.
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

// envelope is the {status, message, data} wrapper most endpoints use.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *envelope) ok() bool {
	return strings.EqualFold(e.Status, "success")
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, auth bool, out interface{}) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, contentType, reader, auth, out)
}

// send issues one request with an already encoded body. contentType may be
// empty when there is no body.
func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader, auth bool, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("makerID", c.makerID)
	req.Header.Set("X-Request-ID", uuid.NewString())

	if auth {
		if c.tokens == nil {
			return ErrUnauthenticated
		}
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s response: %v", ErrTransport, path, err)
	}

	switch {
	case auth && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden):
		return fmt.Errorf("%w: %s", ErrUnauthenticated, messageFrom(respBody))
	case resp.StatusCode >= 400:
		var env envelope
		_ = json.Unmarshal(respBody, &env)
		return &ServerError{StatusCode: resp.StatusCode, Status: env.Status, Message: env.Message}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &ServerError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("unreadable response from %s", path)}
	}
	return nil
}

// checkStatus rejects an envelope whose status is present but not success.
// Endpoints that answer with a bare object and no status pass.
func checkStatus(raw json.RawMessage) error {
	var env envelope
	if len(bytes.TrimSpace(raw)) == 0 || json.Unmarshal(raw, &env) != nil {
		return nil
	}
	if env.Status != "" && !env.ok() {
		return &ServerError{StatusCode: http.StatusOK, Status: env.Status, Message: env.Message}
	}
	return nil
}

// decodeList accepts both a bare JSON array and an envelope whose data is an
// array, and returns the rows undecoded. A failed envelope comes back as its
// own *ServerError, anything else that is not a list as an unexpected-format one.
func decodeList(raw json.RawMessage, what string) ([]json.RawMessage, error) {
	malformed := &ServerError{StatusCode: http.StatusOK, Message: what + " has an unexpected format"}
	var rows []json.RawMessage
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, malformed
		}
		return rows, nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, malformed
	}
	if env.Status != "" && !env.ok() {
		return nil, &ServerError{StatusCode: http.StatusOK, Status: env.Status, Message: env.Message}
	}
	if len(env.Data) == 0 {
		if env.Status == "" {
			return nil, malformed
		}
		return nil, nil
	}
	if string(env.Data) == "null" {
		return nil, nil
	}
	if err := json.Unmarshal(env.Data, &rows); err != nil {
		return nil, malformed
	}
	return rows, nil
}

func messageFrom(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Message
}

func pathID(s string) string {
	return url.PathEscape(strings.TrimSpace(s))
}
