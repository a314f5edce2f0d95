// Package prompts owns the template registry and builds the prompt text sent
// to the text generator for every feature.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"promptagent/internal/domain"
)

//go:embed default_templates.json
var defaultTemplates []byte

// Registry is an immutable set of templates. It is safe for concurrent use.
type Registry struct {
	ordered []domain.Template
	byID    map[string]domain.Template
}

// LoadRegistry reads templates from path, or the embedded defaults when path is empty.
func LoadRegistry(path string) (*Registry, error) {
	raw := defaultTemplates
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read templates: %w", err)
		}
		raw = b
	}
	return ParseRegistry(raw)
}

// ParseRegistry decodes a JSON array of templates and rejects empty or duplicate ids.
func ParseRegistry(raw []byte) (*Registry, error) {
	var items []domain.Template
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	r := &Registry{byID: make(map[string]domain.Template, len(items))}
	for i, t := range items {
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			return nil, fmt.Errorf("template %d: id is required", i)
		}
		if strings.TrimSpace(t.Body) == "" {
			return nil, fmt.Errorf("template %q: prompt is required", t.ID)
		}
		if _, dup := r.byID[t.ID]; dup {
			return nil, fmt.Errorf("template %q: duplicate id", t.ID)
		}
		r.byID[t.ID] = t
		r.ordered = append(r.ordered, t)
	}
	return r, nil
}

// Get looks up a template by id.
func (r *Registry) Get(id string) (domain.Template, bool) {
	t, ok := r.byID[strings.TrimSpace(id)]
	return t, ok
}

// All returns the templates in file order. The slice is a copy.
func (r *Registry) All() []domain.Template {
	out := make([]domain.Template, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len returns the number of templates.
func (r *Registry) Len() int {
	return len(r.ordered)
}
