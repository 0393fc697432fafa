// Package template provides variable expansion for demo texts.
//
// Intro banners, help texts, and prompts loaded from configuration may
// contain ${var} and $var placeholders ("Welcome to ${name}!"). Expand
// substitutes them from a variable map before the text is printed.
//
// The dollar style uses word boundary detection to avoid partial matches:
// $name won't match inside $nameSuffix. Missing variables are kept as-is
// by default; configure with Strict or WithFallback.
package template

import (
	"fmt"
	"regexp"
)

// pattern matches ${varname} or $varname. Variable names start with a
// letter or underscore and continue with word characters.
var pattern = regexp.MustCompile(`\$(?:\{([a-zA-Z_][a-zA-Z0-9_]*)\}|([a-zA-Z_][a-zA-Z0-9_]*)\b)`)

// UndefinedVariableError reports placeholders with no value in strict mode.
type UndefinedVariableError struct {
	// Names are the variable names that had no value, in order of appearance.
	Names []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("undefined variable: %s", e.Names[0])
	}
	return fmt.Sprintf("undefined variables: %v", e.Names)
}

// expandConfig holds expansion behavior.
type expandConfig struct {
	strict   bool
	fallback string
	useFall  bool
}

// Option configures an expansion.
type Option func(*expandConfig)

// Strict returns an error for any placeholder with no value.
// Without it, unknown placeholders are kept as-is.
func Strict() Option {
	return func(c *expandConfig) {
		c.strict = true
	}
}

// WithFallback substitutes fallback for any placeholder with no value.
func WithFallback(fallback string) Option {
	return func(c *expandConfig) {
		c.fallback = fallback
		c.useFall = true
	}
}

// Expand substitutes ${var} and $var placeholders in s from vars.
//
// Example:
//
//	text, _ := template.Expand("Welcome to ${name}!", map[string]string{"name": "CodeDemo"})
//	// text: "Welcome to CodeDemo!"
func Expand(s string, vars map[string]string, opts ...Option) (string, error) {
	if s == "" {
		return "", nil
	}

	var cfg expandConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var missing []string
	result := pattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := pattern.FindStringSubmatch(match)
		name := groups[1]
		if name == "" {
			name = groups[2]
		}
		if val, ok := vars[name]; ok {
			return val
		}
		if cfg.useFall {
			return cfg.fallback
		}
		if cfg.strict {
			missing = append(missing, name)
		}
		return match
	})

	if len(missing) > 0 {
		return result, &UndefinedVariableError{Names: missing}
	}
	return result, nil
}

// MustExpand substitutes placeholders and panics on error.
// Use when all variables are known to be present or strict mode is off.
func MustExpand(s string, vars map[string]string, opts ...Option) string {
	result, err := Expand(s, vars, opts...)
	if err != nil {
		panic(fmt.Sprintf("template: %v", err))
	}
	return result
}
