package parser

import (
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"DailyDigest/internal/scanner"
)

// GofeedParser delegates to a conforming RSS/Atom/JSON Feed parser. Unlike
// PatternParser it rejects documents it cannot parse.
type GofeedParser struct{}

var _ scanner.Parser = (*GofeedParser)(nil)

// NewGofeedParser builds the gofeed-backed strategy.
func NewGofeedParser() *GofeedParser {
	return &GofeedParser{}
}

// Name identifies the strategy inside the registry.
func (g *GofeedParser) Name() string {
	return "gofeed"
}

// Parse implements scanner.Parser.
func (g *GofeedParser) Parse(xml string) ([]scanner.Item, error) {
	feed, err := gofeed.NewParser().ParseString(xml)
	if err != nil {
		return nil, fmt.Errorf("gofeed parse: %w", err)
	}

	items := make([]scanner.Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}

		link := strings.TrimSpace(it.Link)
		if link == "" && len(it.Links) > 0 {
			link = strings.TrimSpace(it.Links[0])
		}
		if link == "" {
			link = strings.TrimSpace(it.GUID)
		}

		items = appendItem(items,
			stripHTML(it.Title),
			link,
			firstNonEmpty(it.Published, it.Updated),
			stripHTML(firstNonEmpty(it.Description, it.Content)),
		)
	}
	return items, nil
}
