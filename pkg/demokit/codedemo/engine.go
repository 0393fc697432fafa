package codedemo

import (
	"errors"
	"fmt"
)

// Sentinel errors for engine operations.
var (
	// ErrEmptySnippet indicates an empty code snippet.
	ErrEmptySnippet = errors.New("snippet must not be empty")

	// ErrNilEngine indicates a code demo built without an engine.
	ErrNilEngine = errors.New("engine must not be nil")
)

// Engine evaluates code snippets against a persistent namespace. State set
// by one snippet (or by the setup code) is visible to later snippets.
//
// Implementations are not safe for concurrent use; a demo session drives
// its engine from a single goroutine.
type Engine interface {
	// Name identifies the engine ("js", "expr").
	Name() string

	// CommentPrefix returns the line-comment marker of the engine's
	// language, used when stripping comments from snippets.
	CommentPrefix() string

	// Setup evaluates the setup code, populating the namespace.
	Setup(code string) error

	// Eval evaluates one snippet and returns its value.
	// A nil value with a nil error means the snippet produced no output.
	Eval(snippet string) (any, error)

	// Set binds a value into the namespace under name.
	Set(name string, value any) error
}

// EvalError reports a snippet that failed to evaluate.
type EvalError struct {
	// Engine is the engine name.
	Engine string
	// Snippet is the code that failed.
	Snippet string
	// Err is the underlying evaluation error.
	Err error
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: evaluating %q: %v", e.Engine, e.Snippet, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *EvalError) Unwrap() error {
	return e.Err
}
