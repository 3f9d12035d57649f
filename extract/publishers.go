package extract

// PublisherRules maps each supported publisher host to its extraction rule.
// Hosts are matched exactly against the article URL's host.
var PublisherRules = map[string]Rule{
	// The Guardian: paragraphs sit directly under the divs inside #maincontent.
	"www.theguardian.com": {
		Scope:     &Selector{Tag: "div", ID: "maincontent"},
		Container: Selector{Tag: "div"},
	},
	// BBC: text blocks are marked up outside the <article> wrapper, which
	// must still be present.
	"www.bbc.com": {
		Require:   &Selector{Tag: "article"},
		Container: Selector{Tag: "div", DataComponent: "text-block"},
	},
	"grist.org": {
		Container: Selector{Tag: "div", Class: "article-body"},
	},
	"earth911.com": {
		Container: Selector{Tag: "article"},
	},
	"news.climate.columbia.edu": {
		Scope:     &Selector{Tag: "main"},
		Container: Selector{Tag: "div", Class: "entry-content"},
	},
	"www.independent.co.uk": {
		Container: Selector{Tag: "div", ID: "main"},
	},
	// Yale E360 wraps each paragraph in a div.
	"e360.yale.edu": {
		Container: Selector{Tag: "section", Class: "article__body"},
		Child:     "div",
	},
	"www.greenpeace.org": {
		Scope:     &Selector{Tag: "div", ID: "content"},
		Container: Selector{Tag: "article"},
	},
}
