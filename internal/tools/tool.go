// Package tools provides literature search adapters used to ground
// generated metrics in real sources. Each adapter wraps one public
// search API and normalizes results to domain.Source values.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hefgen/metricgen/internal/domain"
)

// Common tool errors.
var (
	// ErrUnknownTool indicates a lookup for a tool name that is not registered.
	ErrUnknownTool = errors.New("unknown search tool")

	// ErrNoResults indicates the query matched nothing. Callers treat this
	// as a soft failure and move on to the next query or tool.
	ErrNoResults = errors.New("no search results")
)

// Tool is one literature search backend.
type Tool interface {
	// Name returns the stable identifier used in prompts and query logs.
	Name() string

	// Search runs one query and returns normalized sources, newest or
	// most relevant first per the backend's own ordering.
	Search(ctx context.Context, query string) ([]domain.Source, error)
}

// Registry holds the search tools available to a generation run.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry builds a registry from the given tools. Later tools with a
// duplicate name replace earlier ones.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return r
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return t, nil
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the registered tools in name order.
func (r *Registry) All() []Tool {
	all := make([]Tool, 0, len(r.tools))
	for _, name := range r.Names() {
		all = append(all, r.tools[name])
	}
	return all
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.tools) }
