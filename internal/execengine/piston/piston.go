package piston

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vovakirdan/coderoom-server/internal/execengine"
)

// DefaultURL is the public Piston v2 API.
const DefaultURL = "https://emkc.org/api/v2/piston"

const maxErrorBody = 4 << 10

// PistonEngine implements execengine.Engine against a Piston v2 API.
type PistonEngine struct {
	baseURL string
	client  *http.Client
}

// New creates an engine for baseURL. A nil client uses http.DefaultClient;
// deadlines come from the caller's context.
func New(baseURL string, client *http.Client) *PistonEngine {
	if client == nil {
		client = http.DefaultClient
	}
	return &PistonEngine{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// ListRuntimes fetches GET /runtimes.
func (e *PistonEngine) ListRuntimes(ctx context.Context) ([]execengine.Runtime, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/runtimes", nil)
	if err != nil {
		return nil, fmt.Errorf("build runtimes request: %w", err)
	}

	var runtimes []execengine.Runtime
	if err := e.do(req, &runtimes); err != nil {
		return nil, err
	}
	return runtimes, nil
}

// Execute posts the request to /execute.
func (e *PistonEngine) Execute(ctx context.Context, r *execengine.Request) (*execengine.Response, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode execute request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build execute request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp execengine.Response
	if err := e.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (e *PistonEngine) do(req *http.Request, out any) error {
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("piston %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &execengine.StatusError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &execengine.StatusError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("malformed response: %v", err),
		}
	}
	return nil
}

// errorMessage prefers Piston's {"message": "..."} body and falls back to
// the raw text or the status line.
func errorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
		return payload.Message
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return resp.Status
}

// Ensure PistonEngine implements execengine.Engine
var _ execengine.Engine = (*PistonEngine)(nil)
