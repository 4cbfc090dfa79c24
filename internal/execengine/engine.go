package execengine

import (
	"context"
	"fmt"
)

// Runtime is one language/version pair the engine can execute.
type Runtime struct {
	Language string   `json:"language"`
	Version  string   `json:"version"`
	Aliases  []string `json:"aliases"`
}

// File is a source file shipped with an execution request.
type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Request asks the engine to run files with a concrete runtime.
type Request struct {
	Language string `json:"language"`
	Version  string `json:"version"`
	Files    []File `json:"files"`
	Stdin    string `json:"stdin"`
}

// Stage is the output of one execution phase.
type Stage struct {
	Stdout string  `json:"stdout"`
	Stderr string  `json:"stderr"`
	Output string  `json:"output"`
	Code   *int    `json:"code"`
	Signal *string `json:"signal"`
}

// Response is the engine's answer. Compile is nil for interpreted languages.
type Response struct {
	Language string `json:"language"`
	Version  string `json:"version"`
	Run      Stage  `json:"run"`
	Compile  *Stage `json:"compile,omitempty"`
}

// Engine abstracts the remote code-execution backend.
type Engine interface {
	// ListRuntimes returns every runtime the engine currently supports.
	ListRuntimes(ctx context.Context) ([]Runtime, error)

	// Execute runs a single request and waits for its result.
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// StatusError reports that the engine answered but rejected the request or
// sent a body that could not be decoded. Any other error from an Engine
// means the engine could not be reached.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("engine status %d: %s", e.StatusCode, e.Message)
}
