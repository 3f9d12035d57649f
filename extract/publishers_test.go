package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPublisherRules_Valid verifies the static table builds a registry of
// all eight publishers
func TestPublisherRules_Valid(t *testing.T) {
	registry, err := NewRegistry(PublisherRules)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"e360.yale.edu",
		"earth911.com",
		"grist.org",
		"news.climate.columbia.edu",
		"www.bbc.com",
		"www.greenpeace.org",
		"www.independent.co.uk",
		"www.theguardian.com",
	}, registry.Hosts())
}

// TestPublisherRules_Pages verifies each publisher rule against a page in
// that publisher's markup
func TestPublisherRules_Pages(t *testing.T) {
	cases := []struct {
		host string
		page string
		want string
	}{
		{
			host: "www.theguardian.com",
			page: `<div id="maincontent"><div><p>First para.</p><p>Second <a href="/x">link</a> text.</p></div><aside><p>Related</p></aside></div><div><p>Footer</p></div>`,
			want: "First para. Second link text.",
		},
		{
			host: "www.theguardian.com",
			page: `<div id="other"><div><p>No main content</p></div></div>`,
			want: "",
		},
		{
			host: "www.bbc.com",
			page: `<article><h1>Headline</h1></article><div data-component="text-block"><p>A</p></div><div data-component="image-block"><p>Caption</p></div><div data-component="text-block"><p>B</p></div>`,
			want: "A B",
		},
		{
			host: "www.bbc.com",
			page: `<div data-component="text-block"><p>No article wrapper</p></div>`,
			want: "",
		},
		{
			host: "grist.org",
			page: `<div class="article-body wide"><p>G1</p><figure><p>caption</p></figure><p>G2</p></div>`,
			want: "G1 G2",
		},
		{
			host: "earth911.com",
			page: `<article><p>E1</p><div><p>share</p></div><p>E2</p></article>`,
			want: "E1 E2",
		},
		{
			host: "news.climate.columbia.edu",
			page: `<main><div class="entry-content"><p>C1</p><p>C2</p></div></main><div class="entry-content"><p>Outside main</p></div>`,
			want: "C1 C2",
		},
		{
			host: "news.climate.columbia.edu",
			page: `<div class="entry-content"><p>No main</p></div>`,
			want: "",
		},
		{
			host: "www.independent.co.uk",
			page: `<div id="main"><p>I1</p><div><p>ad</p></div><p>I2</p></div>`,
			want: "I1 I2",
		},
		{
			host: "e360.yale.edu",
			page: `<section class="article__body"><div>Y1</div><p>not a div</p><div>Y2 <em>glacier</em></div></section>`,
			want: "Y1 Y2 glacier",
		},
		{
			host: "www.greenpeace.org",
			page: `<div id="content"><article><p>P1</p></article><article><p>P2</p></article></div><article><p>Outside content</p></article>`,
			want: "P1 P2",
		},
	}

	registry := DefaultRegistry()
	for _, c := range cases {
		t.Run(c.host, func(t *testing.T) {
			strategy, ok := registry.Resolve(c.host)
			require.True(t, ok)
			assert.Equal(t, c.want, strategy.Extract(docFrom(t, c.page)))
		})
	}
}

// TestRegistry_ExactMatch verifies hosts are matched exactly
func TestRegistry_ExactMatch(t *testing.T) {
	registry := DefaultRegistry()

	_, ok := registry.Resolve("theguardian.com")
	assert.False(t, ok, "bare domain should not match www host")

	_, ok = registry.Resolve("www.bbc.co.uk")
	assert.False(t, ok)

	_, ok = registry.Resolve("grist.org")
	assert.True(t, ok)
}

// TestNewRegistry_InvalidRule verifies invalid rules are rejected
func TestNewRegistry_InvalidRule(t *testing.T) {
	_, err := NewRegistry(map[string]Rule{
		"example.com": {Container: Selector{Tag: "div", ID: "a", Class: "b"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "example.com")
}

// TestRegistry_Register verifies strategies can be added at runtime
func TestRegistry_Register(t *testing.T) {
	registry := DefaultRegistry()
	registry.Register("example.com", Rule{Container: Selector{Tag: "article"}})

	_, ok := registry.Resolve("example.com")
	assert.True(t, ok)
}
