// Package compiler is the HTTP client for the external HTML compiler
// service. The compiler is an opaque collaborator: projected markup in,
// compiled HTML out, or an error string. Nothing in this package inspects
// or depends on how the compiler renders components.
package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CompileError is an error reported by the compiler itself, as opposed to a
// transport failure. Its message is surfaced verbatim as preview-area text;
// it never affects the authoritative document.
type CompileError struct {
	Message string
}

func (e *CompileError) Error() string {
	return e.Message
}

// Request is the compiler service's input contract.
type Request struct {
	Markup           string            `json:"markup"`
	PreviewVariables map[string]string `json:"previewVariables,omitempty"`
}

// Response is the compiler service's output contract: exactly one of HTML
// or Error is populated.
type Response struct {
	HTML  string `json:"html"`
	Error string `json:"error"`
}

// Client talks to one compiler endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	variables  map[string]string
}

// New returns a client for the given endpoint URL. timeout bounds each
// request; the per-request context can cancel earlier (a superseded
// preview request is cancelled by the scheduler).
func New(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetPreviewVariables sets the substitution variables sent with every
// compile request (recipient name placeholders and the like).
func (c *Client) SetPreviewVariables(vars map[string]string) {
	c.variables = vars
}

// Compile sends projected markup and returns the compiled HTML. A
// *CompileError means the compiler rejected the markup; other errors are
// transport-level.
func (c *Client) Compile(ctx context.Context, markup string) (string, error) {
	body, err := json.Marshal(Request{Markup: markup, PreviewVariables: c.variables})
	if err != nil {
		return "", fmt.Errorf("encoding compile request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building compile request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("compiler request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", fmt.Errorf("reading compiler response: %w", err)
	}

	var decoded Response
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("decoding compiler response (status %d): %w", resp.StatusCode, err)
	}
	if decoded.Error != "" {
		return "", &CompileError{Message: decoded.Error}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("compiler returned status %d", resp.StatusCode)
	}
	return decoded.HTML, nil
}
