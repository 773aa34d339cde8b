package scanner

import (
	"fmt"
	"sort"
)

// Item is one raw feed entry; PubDate is left as the string found in the feed.
type Item struct {
	Title       string
	Link        string
	PubDate     string
	Description string
}

// Parser extracts entries from a raw RSS or Atom document.
type Parser interface {
	Name() string
	Parse(xml string) ([]Item, error)
}

// Registry keeps a mapping from parser names to their implementations.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: map[string]Parser{}}
}

// Register adds or replaces a parser implementation.
func (r *Registry) Register(parser Parser) {
	if r.parsers == nil {
		r.parsers = map[string]Parser{}
	}
	r.parsers[parser.Name()] = parser
}

// Resolve returns a parser by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Parser, error) {
	if parser, ok := r.parsers[name]; ok {
		return parser, nil
	}
	return nil, fmt.Errorf("parser %s is not registered (known: %v)", name, r.Names())
}

// Names lists the registered parser names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
