package codedemo

import (
	"strings"

	"github.com/dop251/goja"
)

// JSEngine evaluates JavaScript snippets in a single persistent goja
// runtime. Assignments without a declaration keyword land on the global
// object, so setup code like "foo = 1 + 1" carries over to later snippets.
type JSEngine struct {
	vm *goja.Runtime
}

// NewJSEngine creates a JavaScript engine with an empty namespace.
func NewJSEngine() *JSEngine {
	return &JSEngine{vm: goja.New()}
}

// Name identifies the engine.
func (e *JSEngine) Name() string {
	return "js"
}

// CommentPrefix returns the JavaScript line-comment marker.
func (e *JSEngine) CommentPrefix() string {
	return "//"
}

// Set binds a value into the runtime's global namespace.
func (e *JSEngine) Set(name string, value any) error {
	return e.vm.Set(name, value)
}

// Setup runs the setup code in the runtime.
func (e *JSEngine) Setup(code string) error {
	if strings.TrimSpace(code) == "" {
		return nil
	}
	if _, err := e.vm.RunString(code); err != nil {
		return &EvalError{Engine: e.Name(), Snippet: code, Err: err}
	}
	return nil
}

// Eval runs one snippet and returns its exported value. In JavaScript an
// assignment is an expression, so "eggs = spam + 5" returns the assigned
// value. Undefined and null results are reported as no output.
func (e *JSEngine) Eval(snippet string) (any, error) {
	if strings.TrimSpace(snippet) == "" {
		return nil, ErrEmptySnippet
	}
	value, err := e.vm.RunString(snippet)
	if err != nil {
		return nil, &EvalError{Engine: e.Name(), Snippet: snippet, Err: err}
	}
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, nil
	}
	return value.Export(), nil
}
