// Package client is the Go client for the vademecum API, used by the CLI
// and by service consumers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to a vademecum API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets a bearer token obtained elsewhere.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New constructs a Client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TokenPair mirrors the login response.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Answer mirrors the chat response.
type Answer struct {
	QueryID     string `json:"query_id"`
	Reply       string `json:"reply"`
	Drug        string `json:"drug,omitempty"`
	Section     string `json:"section,omitempty"`
	Source      string `json:"source,omitempty"`
	Substituted bool   `json:"substituted,omitempty"`
	Outcome     string `json:"outcome"`
}

// SearchResult mirrors one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Generic string `json:"generic_name,omitempty"`
	Section string `json:"section"`
	Text    string `json:"text,omitempty"`
}

// APIError is a non-2xx response decoded into the uniform error body.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d [%s]: %s", e.Status, e.Code, e.Message)
}

// Login authenticates and stores the access token on the client for
// subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	var pair TokenPair
	err := c.post(ctx, "/auth/login", map[string]string{
		"username": username, "password": password,
	}, &pair)
	if err != nil {
		return nil, err
	}
	c.token = pair.AccessToken
	return &pair, nil
}

// Ask sends one question to the chat endpoint. Requires a prior Login or
// WithToken.
func (c *Client) Ask(ctx context.Context, query string) (*Answer, error) {
	var ans Answer
	if err := c.post(ctx, "/chat/ask", map[string]string{"query": query}, &ans); err != nil {
		return nil, err
	}
	return &ans, nil
}

// Search looks up medication fragments by name.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	q := url.Values{"q": {query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Results []SearchResult `json:"results"`
	}
	if err := c.get(ctx, "/medicamentos/buscar?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{Status: res.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(res.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
