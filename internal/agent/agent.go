// Package agent forwards chat text to a remote Mistral agent and relays its reply.
//
// Ask never fails: transport, format and extraction problems are logged and
// turned into a display string, so the chat endpoint always has something to show.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// DefaultEndpoint is the Mistral agents completion URL.
const DefaultEndpoint = "https://api.mistral.ai/v1/agents/completions"

// ExtractionFailure is returned when the reply is JSON but has no
// choices[0].message.content string.
const ExtractionFailure = "Error: Could not extract response from JSON"

const contentPath = "choices.0.message.content"

// Kind classifies a failed agent call.
type Kind int

const (
	// Transport covers network failures and non-2xx statuses.
	Transport Kind = iota + 1
	// Format means the body was not valid JSON.
	Format
	// Extraction means the body lacked the reply content.
	Extraction
)

func (k Kind) String() string {
	switch k {
	case Transport:
		return "transport"
	case Format:
		return "format"
	case Extraction:
		return "extraction"
	default:
		return "unknown"
	}
}

// CallError describes why an agent call produced no reply.
type CallError struct {
	Kind Kind
	Err  error
}

func (e *CallError) Error() string {
	switch e.Kind {
	case Transport:
		return fmt.Sprintf("Error: Failed to connect to Mistral agent: %v", e.Err)
	case Format:
		return fmt.Sprintf("Error: Invalid JSON response from Mistral agent: %v", e.Err)
	default:
		return ExtractionFailure
	}
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Config holds the process-wide agent credentials.
type Config struct {
	APIKey   string
	AgentID  string
	Endpoint string
}

// Proxy calls the agent completion API.
type Proxy struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New returns a Proxy. A nil client means a plain http.Client with no timeout;
// a nil logger discards logs.
func New(cfg Config, client *http.Client, logger *zap.Logger) *Proxy {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Proxy{cfg: cfg, client: client, logger: logger}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	AgentID  string    `json:"agent_id"`
	Messages []message `json:"messages"`
}

// Ask sends text as a single user message and returns the agent's reply, or a
// descriptive error string when the call fails.
func (p *Proxy) Ask(ctx context.Context, text string) string {
	reply, err := p.Complete(ctx, text)
	if err != nil {
		var ce *CallError
		if !errors.As(err, &ce) {
			ce = &CallError{Kind: Transport, Err: err}
		}
		p.logger.Warn("agent call failed",
			zap.Stringer("kind", ce.Kind),
			zap.Error(ce.Err),
		)
		return ce.Error()
	}
	return reply
}

// Complete performs the call and reports failures as *CallError.
func (p *Proxy) Complete(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(completionRequest{
		AgentID:  p.cfg.AgentID,
		Messages: []message{{Role: "user", Content: text}},
	})
	if err != nil {
		return "", &CallError{Kind: Transport, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &CallError{Kind: Transport, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &CallError{Kind: Transport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &CallError{Kind: Transport, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &CallError{Kind: Transport, Err: fmt.Errorf("%s for url: %s", resp.Status, p.cfg.Endpoint)}
	}

	p.logger.Debug("agent response", zap.ByteString("body", body))

	// gjson does not report why a document is invalid, so decode once for the detail.
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", &CallError{Kind: Format, Err: err}
	}

	content := gjson.GetBytes(body, contentPath)
	if content.Type != gjson.String {
		return "", &CallError{Kind: Extraction, Err: fmt.Errorf("no %s in response", contentPath)}
	}
	return content.Str, nil
}
