// Package prompts holds the prompt registry. Prompts live in an embedded
// TOML file so wording changes never touch Go code.
package prompts

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed prompts.toml
var promptsTOML []byte

// ErrNotFound indicates an unknown prompt stage.
var ErrNotFound = errors.New("prompt not found")

type prompt struct {
	System   string `toml:"system"`
	Template string `toml:"template"`
}

// Registry resolves prompt stages to their system message and template.
type Registry struct {
	prompts map[string]prompt
}

// Load parses the embedded prompt file.
func Load() (*Registry, error) {
	var prompts map[string]prompt
	if err := toml.Unmarshal(promptsTOML, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompts: %w", err)
	}
	return &Registry{prompts: prompts}, nil
}

// System returns the system message for a stage.
func (r *Registry) System(stage string) (string, error) {
	p, ok := r.prompts[stage]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, stage)
	}
	return p.System, nil
}

// Template returns the raw template for a stage, placeholders intact.
func (r *Registry) Template(stage string) (string, error) {
	p, ok := r.prompts[stage]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, stage)
	}
	return p.Template, nil
}

// Render fills the stage's template with the given placeholder values.
// Keys are placeholder names without braces.
func (r *Registry) Render(stage string, values map[string]string) (string, error) {
	p, ok := r.prompts[stage]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, stage)
	}
	out := p.Template
	for key, value := range values {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}
	return out, nil
}
