// Package extract recovers article body text from publisher pages using
// per-publisher structural rules.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Selector matches elements by tag name plus at most one of class, id or
// data-component attribute.
type Selector struct {
	Tag           string `yaml:"tag" json:"tag"`
	Class         string `yaml:"class,omitempty" json:"class,omitempty"`
	ID            string `yaml:"id,omitempty" json:"id,omitempty"`
	DataComponent string `yaml:"data_component,omitempty" json:"data_component,omitempty"`
}

var (
	// tagName is an HTML element name.
	tagName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)
	// ident is a CSS identifier that needs no escaping.
	ident = regexp.MustCompile(`^-?[A-Za-z_][A-Za-z0-9_-]*$`)
	// attrValue is a value that can sit inside a double-quoted attribute
	// selector without escaping.
	attrValue = regexp.MustCompile(`^[^"\\\x00-\x1f]+$`)
)

// Validate checks the tag is set, that filters are mutually exclusive and
// that every value renders to a selector matching it literally.
func (s Selector) Validate() error {
	if strings.TrimSpace(s.Tag) == "" {
		return errors.New("selector tag is required")
	}
	if !tagName.MatchString(s.Tag) {
		return fmt.Errorf("selector tag %q is not an element name", s.Tag)
	}
	filters := 0
	for _, f := range []string{s.Class, s.ID, s.DataComponent} {
		if f != "" {
			filters++
		}
	}
	if filters > 1 {
		return fmt.Errorf("selector %q: class, id and data_component are mutually exclusive", s.Tag)
	}
	if s.Class != "" && !ident.MatchString(s.Class) {
		return fmt.Errorf("selector %q: class %q is not a single css identifier", s.Tag, s.Class)
	}
	if s.ID != "" && !ident.MatchString(s.ID) {
		return fmt.Errorf("selector %q: id %q is not a css identifier", s.Tag, s.ID)
	}
	if s.DataComponent != "" && !attrValue.MatchString(s.DataComponent) {
		return fmt.Errorf("selector %q: data_component %q contains quotes, backslashes or control characters", s.Tag, s.DataComponent)
	}
	return nil
}

// CSS renders the selector for goquery.
func (s Selector) CSS() string {
	switch {
	case s.ID != "":
		return s.Tag + "#" + s.ID
	case s.Class != "":
		return s.Tag + "." + s.Class
	case s.DataComponent != "":
		return s.Tag + `[data-component="` + s.DataComponent + `"]`
	default:
		return s.Tag
	}
}

func (s Selector) String() string { return s.CSS() }

// Rule is the extraction strategy for one publisher.
//
// If Require is set and matches nothing in the document the result is
// empty. If Scope is set, containers are searched only inside the first
// element it matches (and the result is empty when it matches nothing).
// Every element matching Container contributes its Child elements, either
// direct children only or, with Descendants, any depth below it.
type Rule struct {
	Require     *Selector `yaml:"require,omitempty" json:"require,omitempty"`
	Scope       *Selector `yaml:"scope,omitempty" json:"scope,omitempty"`
	Container   Selector  `yaml:"container" json:"container"`
	Child       string    `yaml:"child,omitempty" json:"child,omitempty"` // Default: "p"
	Descendants bool      `yaml:"descendants,omitempty" json:"descendants,omitempty"`
}

// Validate checks every selector in the rule.
func (r Rule) Validate() error {
	if r.Require != nil {
		if err := r.Require.Validate(); err != nil {
			return fmt.Errorf("require: %w", err)
		}
	}
	if r.Scope != nil {
		if err := r.Scope.Validate(); err != nil {
			return fmt.Errorf("scope: %w", err)
		}
	}
	if err := r.Container.Validate(); err != nil {
		return fmt.Errorf("container: %w", err)
	}
	if r.Child != "" && !tagName.MatchString(r.Child) {
		return fmt.Errorf("child %q is not an element name", r.Child)
	}
	return nil
}

func (r Rule) child() string {
	if r.Child == "" {
		return "p"
	}
	return r.Child
}

// Extract returns the space-joined text of every collected child element.
// Missing structure yields an empty string.
func (r Rule) Extract(doc *goquery.Document) string {
	if r.Require != nil && doc.Find(r.Require.CSS()).Length() == 0 {
		return ""
	}

	root := doc.Selection
	if r.Scope != nil {
		root = doc.Find(r.Scope.CSS()).First()
		if root.Length() == 0 {
			return ""
		}
	}

	var parts []string
	root.Find(r.Container.CSS()).Each(func(_ int, container *goquery.Selection) {
		var children *goquery.Selection
		if r.Descendants {
			children = container.Find(r.child())
		} else {
			children = container.ChildrenFiltered(r.child())
		}
		children.Each(func(_ int, child *goquery.Selection) {
			if text := visibleText(child); text != "" {
				parts = append(parts, text)
			}
		})
	})

	return strings.Join(parts, " ")
}

// visibleText joins the trimmed text nodes under s with single spaces,
// skipping script, style and template content.
func visibleText(s *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "template", "noscript":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}
