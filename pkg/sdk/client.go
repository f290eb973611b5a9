// Package sdk provides the client-side library for the taskdock HTTP API.
// It is what the CLI uses and what other Go programs should embed.
package sdk

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/taskdock-dev/taskdock/pkg/schema"
)

// APIError is a non-2xx response decoded from the {error} envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Client talks to a taskdock daemon. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a client for the given base URL. An empty URL falls back to
// TASKDOCK_ADDR, then to http://localhost:7080. Setting
// TASKDOCK_INSECURE_TLS=true accepts the daemon's self-signed certificate.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("TASKDOCK_ADDR")
	}
	if baseURL == "" {
		baseURL = "http://localhost:7080"
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	if os.Getenv("TASKDOCK_INSECURE_TLS") == "true" {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Client{baseURL: baseURL, http: httpClient}
}

// SetToken installs a previously obtained session token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current session token, empty if not logged in.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login authenticates and remembers the session token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (schema.Principal, error) {
	var resp struct {
		Token string           `json:"token"`
		User  schema.Principal `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return schema.Principal{}, err
	}
	c.SetToken(resp.Token)
	return resp.User, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/auth/register", body, nil)
}

// Tasks returns all of the caller's tasks keyed by task id.
func (c *Client) Tasks(ctx context.Context) (map[string]schema.Task, error) {
	var out map[string]schema.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTask adds a task and returns the created record.
func (c *Client) CreateTask(ctx context.Context, text string) (schema.Task, error) {
	var out schema.Task
	body := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, "/tasks", body, &out); err != nil {
		return schema.Task{}, err
	}
	return out, nil
}

// SetCompleted updates the completed flag on a task.
func (c *Client) SetCompleted(ctx context.Context, taskID string, completed bool) error {
	body := map[string]bool{"completed": completed}
	return c.do(ctx, http.MethodPut, "/tasks/"+taskID, body, nil)
}

// DeleteTask removes a task. Deleting an unknown id succeeds.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+taskID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error == "" {
			envelope.Error = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: envelope.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
