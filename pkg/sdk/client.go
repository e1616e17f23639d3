// Package sdk provides the client-side library for the MediaID service, plus the
// store interfaces shared by the server and its backends.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/celerix-dev/mediaid/pkg/schema"
)

// APIError is a non-2xx reply from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mediaid: HTTP %d", e.Status)
	}
	return fmt.Sprintf("mediaid: HTTP %d: %s", e.Status, e.Message)
}

// Client talks to a running MediaID server. Requests are never retried.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL, e.g. "http://localhost:5000".
// A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Submit posts a profile form. Keys are the form wire names (firstName, zipCode, ...).
func (c *Client) Submit(ctx context.Context, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out struct {
		Message string `json:"message"`
	}
	return c.do(req, &out)
}

// History returns every stored record. IDs are not part of the wire shape and stay zero.
func (c *Client) History(ctx context.Context) ([]schema.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/history", nil)
	if err != nil {
		return nil, err
	}
	var records []schema.Record
	if err := c.do(req, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Chat sends text to the assistant and returns its reply.
// Agent failures come back as reply text, not as an error.
func (c *Client) Chat(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(map[string]string{"user_input": text})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		Response string `json:"response"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
