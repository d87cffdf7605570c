package expopdf

import (
	"fmt"
	"strings"
)

// statusPlaceholder is reported for status elements absent from the page.
const statusPlaceholder = "(not present)"

// Snapshot is a one-time capture of page state used to explain success or
// failure. It is read-only after extraction.
type Snapshot struct {
	Title    string   // document title
	Cards    int      // elements matching the card selector
	Pages    int      // elements matching the page selector
	Statuses []string // text of the optional status elements, or placeholders
	Excerpt  string   // truncated body HTML
}

// String renders the snapshot as a human-readable diagnostics block.
func (s *Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- diagnostics ---\n")
	fmt.Fprintf(&b, "title:    %s\n", s.Title)
	fmt.Fprintf(&b, "cards:    %d\n", s.Cards)
	fmt.Fprintf(&b, "pages:    %d\n", s.Pages)
	for i, st := range s.Statuses {
		fmt.Fprintf(&b, "status %d: %s\n", i+1, st)
	}
	fmt.Fprintf(&b, "excerpt:  %s\n", s.Excerpt)
	b.WriteString("-------------------")
	return b.String()
}

// diagnosticsQuery carries the selectors the driver needs to extract a
// Snapshot from the live page.
type diagnosticsQuery struct {
	CardSelector    string
	PageSelector    string
	StatusSelectors []string
	ExcerptLimit    int
}

func (c *Config) diagnosticsQuery() diagnosticsQuery {
	return diagnosticsQuery{
		CardSelector:    c.CardSelector,
		PageSelector:    c.PageSelector,
		StatusSelectors: c.StatusSelectors,
		ExcerptLimit:    c.ExcerptLimit,
	}
}

// diagnosticsJS extracts the snapshot in a single evaluation. Every lookup
// is guarded so the script cannot throw on a partially rendered page;
// missing status elements yield the placeholder string.
const diagnosticsJS = `(cardSel, pageSel, statusSels, limit, placeholder) => {
	const count = (sel) => {
		try { return document.querySelectorAll(sel).length; } catch (e) { return 0; }
	};
	const text = (sel) => {
		try {
			const el = document.querySelector(sel);
			return el && el.textContent ? el.textContent.trim() : placeholder;
		} catch (e) {
			return placeholder;
		}
	};
	return {
		title: document.title || "",
		cards: count(cardSel),
		pages: count(pageSel),
		statuses: (statusSels || []).map(text),
		excerpt: document.body ? document.body.innerHTML.slice(0, limit) : "",
	};
}`

// countJS counts elements matching a selector; used by the render wait.
const countJS = `(sel) => document.querySelectorAll(sel).length`

// failureCauses enumerates the likely reasons for a run that timed out or
// rendered zero cards, printed alongside the diagnostics block.
var failureCauses = []string{
	"the published spreadsheet endpoint is unreachable or returned no rows",
	"the page's data-loading script threw before rendering (check page errors above)",
	"the card selector does not match the markup the page actually produces",
	"the data is still loading; consider raising the render timeout",
}
