package codedemo

import (
	"regexp"
	"strings"

	exprlang "github.com/expr-lang/expr"
)

// assignPattern matches "name = expression". The negative first character
// of the right-hand side keeps "==" comparisons from parsing as assignments.
var assignPattern = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_]*)\s*=\s*([^=].*)$`)

// ExprEngine evaluates expr-lang expressions against a persistent variable
// environment. expr has no assignment statement, so the engine recognizes
// "name = expression" itself: the right-hand side is evaluated and the
// result stored under name for later snippets.
type ExprEngine struct {
	env map[string]any
}

// NewExprEngine creates an expr engine with an empty environment.
func NewExprEngine() *ExprEngine {
	return &ExprEngine{env: make(map[string]any)}
}

// Name identifies the engine.
func (e *ExprEngine) Name() string {
	return "expr"
}

// CommentPrefix returns the expr line-comment marker.
func (e *ExprEngine) CommentPrefix() string {
	return "//"
}

// Set binds a value into the environment.
func (e *ExprEngine) Set(name string, value any) error {
	e.env[name] = value
	return nil
}

// Setup evaluates the setup code line by line. Blank lines and comment
// lines are skipped; results of non-assignment lines are discarded.
func (e *ExprEngine) Setup(code string) error {
	for _, line := range strings.Split(code, "\n") {
		line = stripComment(line, e.CommentPrefix())
		if strings.TrimSpace(line) == "" {
			continue
		}
		if _, err := e.Eval(line); err != nil {
			return err
		}
	}
	return nil
}

// Eval evaluates one snippet. An assignment evaluates its right-hand side,
// stores the result, and returns it; anything else evaluates as an
// expression against the environment.
func (e *ExprEngine) Eval(snippet string) (any, error) {
	snippet = strings.TrimSpace(snippet)
	if snippet == "" {
		return nil, ErrEmptySnippet
	}

	if m := assignPattern.FindStringSubmatch(snippet); m != nil {
		value, err := e.eval(m[2])
		if err != nil {
			return nil, err
		}
		e.env[m[1]] = value
		return value, nil
	}
	return e.eval(snippet)
}

func (e *ExprEngine) eval(expression string) (any, error) {
	result, err := exprlang.Eval(expression, e.env)
	if err != nil {
		return nil, &EvalError{Engine: e.Name(), Snippet: expression, Err: err}
	}
	return result, nil
}
