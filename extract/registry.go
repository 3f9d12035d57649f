package extract

import (
	"fmt"
	"sort"

	"github.com/PuerkitoBio/goquery"
)

// Strategy recovers article text from a parsed page.
type Strategy interface {
	Extract(doc *goquery.Document) string
}

// Registry resolves a host to its Strategy.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds a registry from a host -> rule table, validating every
// rule.
func NewRegistry(rules map[string]Rule) (*Registry, error) {
	r := &Registry{strategies: make(map[string]Strategy, len(rules))}
	for host, rule := range rules {
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("invalid rule for %s: %w", host, err)
		}
		r.strategies[host] = rule
	}
	return r, nil
}

// DefaultRegistry returns a registry of PublisherRules.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(PublisherRules)
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds or replaces the strategy for host.
func (r *Registry) Register(host string, s Strategy) {
	r.strategies[host] = s
}

// Resolve returns the strategy for host. Matching is exact.
func (r *Registry) Resolve(host string) (Strategy, bool) {
	s, ok := r.strategies[host]
	return s, ok
}

// Hosts returns the registered hosts in lexical order.
func (r *Registry) Hosts() []string {
	hosts := make([]string, 0, len(r.strategies))
	for h := range r.strategies {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}
