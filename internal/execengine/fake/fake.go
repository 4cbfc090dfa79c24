// Package fake provides a deterministic in-memory execengine.Engine.
package fake

import (
	"context"
	"sync"

	"github.com/vovakirdan/coderoom-server/internal/execengine"
)

// Engine serves a fixed runtime list and answers Execute with Respond, or
// by echoing the first file's content to stdout when Respond is nil.
type Engine struct {
	mu sync.Mutex

	Runtimes []execengine.Runtime
	ListErr  error
	Respond  func(req *execengine.Request) (*execengine.Response, error)

	listCalls int
	requests  []*execengine.Request
}

// New returns a fake engine serving runtimes.
func New(runtimes ...execengine.Runtime) *Engine {
	return &Engine{Runtimes: runtimes}
}

// ListRuntimes implements execengine.Engine.
func (e *Engine) ListRuntimes(ctx context.Context) ([]execengine.Runtime, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.listCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.ListErr != nil {
		return nil, e.ListErr
	}
	out := make([]execengine.Runtime, len(e.Runtimes))
	copy(out, e.Runtimes)
	return out, nil
}

// Execute implements execengine.Engine.
func (e *Engine) Execute(ctx context.Context, req *execengine.Request) (*execengine.Response, error) {
	e.mu.Lock()
	e.requests = append(e.requests, req)
	respond := e.Respond
	e.mu.Unlock()

	if respond != nil {
		return respond(req)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp := &execengine.Response{Language: req.Language, Version: req.Version}
	if len(req.Files) > 0 {
		resp.Run.Stdout = req.Files[0].Content
	}
	return resp, nil
}

// ListCalls reports how many times ListRuntimes was called.
func (e *Engine) ListCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listCalls
}

// Requests returns the execute requests received so far.
func (e *Engine) Requests() []*execengine.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*execengine.Request, len(e.requests))
	copy(out, e.requests)
	return out
}

var _ execengine.Engine = (*Engine)(nil)
