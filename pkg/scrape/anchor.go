package scrape

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Anchor is an <a> element of a fetched page.
type Anchor struct {
	// Href is the raw value of the href attribute.
	Href    string
	HasHref bool
	// HTML is the serialized element, attributes and children included.
	HTML string
	Text string

	sel *goquery.Selection
}

func newAnchor(s *goquery.Selection) Anchor {
	href, ok := s.Attr("href")
	html, err := goquery.OuterHtml(s)
	if err != nil {
		html = s.Text()
	}
	return Anchor{
		Href:    href,
		HasHref: ok,
		HTML:    html,
		Text:    strings.TrimSpace(s.Text()),
		sel:     s,
	}
}

// Is reports whether the anchor matches a CSS selector.
func (a Anchor) Is(selector string) bool {
	if a.sel == nil {
		return false
	}
	return a.sel.Is(selector)
}

// Predicate selects the anchors of a listing page that lead to resource pages.
type Predicate func(Anchor) bool

// ContainsFlag matches anchors whose serialized HTML contains flag, case-sensitive.
func ContainsFlag(flag string) Predicate {
	return func(a Anchor) bool {
		return strings.Contains(a.HTML, flag)
	}
}

// MatchRegexp matches anchors whose serialized HTML matches re.
func MatchRegexp(re *regexp.Regexp) Predicate {
	return func(a Anchor) bool {
		return re.MatchString(a.HTML)
	}
}

// MatchSelector matches anchors selected by a CSS selector, e.g. "a[href*='/resources/']".
func MatchSelector(selector string) Predicate {
	return func(a Anchor) bool {
		return a.Is(selector)
	}
}

const (
	MatchKindSubstring = "substring"
	MatchKindRegexp    = "regexp"
	MatchKindSelector  = "selector"
)

// NewPredicate builds a predicate by kind; an empty kind means substring.
func NewPredicate(kind, value string) (Predicate, error) {
	switch kind {
	case "", MatchKindSubstring:
		if value == "" {
			return nil, fmt.Errorf("empty anchor flag would match every link")
		}
		return ContainsFlag(value), nil
	case MatchKindRegexp:
		re, err := regexp.Compile(value)
		if err != nil {
			return nil, fmt.Errorf("invalid anchor pattern: %w", err)
		}
		return MatchRegexp(re), nil
	case MatchKindSelector:
		if _, err := cascadia.Compile(value); err != nil {
			return nil, fmt.Errorf("invalid anchor selector: %w", err)
		}
		return MatchSelector(value), nil
	default:
		return nil, fmt.Errorf("unknown match kind: %s", kind)
	}
}
