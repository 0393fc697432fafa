// Package config loads demo configuration: intro banners, help texts, site
// prompts, and code-demo snippets. YAML and JSON files are supported, with
// format detection by file extension.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Default texts applied when a field is absent.
const (
	// DefaultIntro is the banner printed once at session start.
	DefaultIntro = "Welcome to ${name}!"

	// DefaultPrompt is the prompt used for sites with no configured text.
	DefaultPrompt = "Select an option, or type something random: "

	// DefaultRetryText is printed before re-prompting after an invalid response.
	DefaultRetryText = "Please try again."

	// DefaultQuitText is printed when the session ends.
	DefaultQuitText = "Goodbye!"

	// DefaultRestartText is printed when the session rewinds.
	DefaultRestartText = "Restarting."
)

// Sentinel errors for config validation.
var (
	// ErrNoName indicates a config without a demo name.
	ErrNoName = errors.New("demo name is required")

	// ErrEmptySite indicates a prompt keyed by an empty site identifier.
	ErrEmptySite = errors.New("prompt site must not be empty")

	// ErrEmptyCommand indicates a blank entry in the command snippet list.
	ErrEmptyCommand = errors.New("command snippet must not be empty")
)

// Config describes one demo: its display texts and, for code demos, the
// setup code and command snippets. The zero value is not usable; start from
// Default() or a loaded file.
type Config struct {
	// Name is the demo's display name, substituted for ${name} in texts.
	Name string `yaml:"name" json:"name"`

	// Intro is the banner printed once at session start.
	Intro string `yaml:"intro" json:"intro"`

	// Help is the text printed by the help option.
	Help string `yaml:"help" json:"help"`

	// Prompts maps site identifiers to prompt texts.
	Prompts map[string]string `yaml:"prompts" json:"prompts"`

	// RetryText is printed before re-prompting after an invalid response.
	RetryText string `yaml:"retry_text" json:"retry_text"`

	// QuitText is printed when the session ends.
	QuitText string `yaml:"quit_text" json:"quit_text"`

	// RestartText is printed when the session rewinds to the first site.
	RestartText string `yaml:"restart_text" json:"restart_text"`

	// Setup is the code evaluated before a code demo starts (optional).
	Setup string `yaml:"setup" json:"setup"`

	// Commands are the code snippets a code demo offers (optional).
	Commands []string `yaml:"commands" json:"commands"`

	// Vars are extra template variables substituted into texts.
	Vars map[string]string `yaml:"vars" json:"vars"`
}

// Default returns a Config with all display texts set to their defaults.
func Default(name string) Config {
	return Config{
		Name:        name,
		Intro:       DefaultIntro,
		RetryText:   DefaultRetryText,
		QuitText:    DefaultQuitText,
		RestartText: DefaultRestartText,
	}
}

// ApplyDefaults fills empty display texts with their defaults.
// The name is left alone; Validate rejects a missing name.
func (c Config) ApplyDefaults() Config {
	if c.Intro == "" {
		c.Intro = DefaultIntro
	}
	if c.RetryText == "" {
		c.RetryText = DefaultRetryText
	}
	if c.QuitText == "" {
		c.QuitText = DefaultQuitText
	}
	if c.RestartText == "" {
		c.RestartText = DefaultRestartText
	}
	return c
}

// Prompt returns the prompt text configured for site, or DefaultPrompt.
func (c Config) Prompt(site string) string {
	if text, ok := c.Prompts[site]; ok && text != "" {
		return text
	}
	return DefaultPrompt
}

// TemplateVars returns the variable map for text expansion: the configured
// Vars plus the demo name under "name".
func (c Config) TemplateVars() map[string]string {
	vars := make(map[string]string, len(c.Vars)+1)
	for k, v := range c.Vars {
		vars[k] = v
	}
	vars["name"] = c.Name
	return vars
}

// Validate checks the config for structural problems.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNoName
	}
	for site := range c.Prompts {
		if strings.TrimSpace(site) == "" {
			return ErrEmptySite
		}
	}
	for i, cmd := range c.Commands {
		if strings.TrimSpace(cmd) == "" {
			return fmt.Errorf("command %d: %w", i, ErrEmptyCommand)
		}
	}
	return nil
}
