package parser

import (
	"regexp"
	"strings"
	"sync"

	"DailyDigest/internal/scanner"
)

var (
	atomRootExpr = regexp.MustCompile(`(?is)<(?:[\w.-]+:)?feed\b[^>]*\sxmlns(?::[\w.-]+)?\s*=\s*["']http://www\.w3\.org/2005/Atom["']`)
	feedRootExpr = regexp.MustCompile(`(?i)<(?:[\w.-]+:)?feed[\s>]`)
	rssRootExpr  = regexp.MustCompile(`(?i)<(?:rss|channel|rdf:RDF)[\s>]`)
	linkTagExpr  = regexp.MustCompile(`(?is)<(?:[\w.-]+:)?link\b[^>]*>`)
	attrExpr     = regexp.MustCompile(`(?s)([\w:.-]+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

	entryExpr = blockPattern("entry")
	itemExpr  = blockPattern("item")

	tagPatterns sync.Map
)

// PatternParser extracts RSS 2.0 and Atom entries with permissive regular
// expressions. It never fails on malformed input.
type PatternParser struct{}

var _ scanner.Parser = (*PatternParser)(nil)

// NewPatternParser builds the default feed parser.
func NewPatternParser() *PatternParser {
	return &PatternParser{}
}

// Name identifies the strategy inside the registry.
func (p *PatternParser) Name() string {
	return "pattern"
}

// Parse implements scanner.Parser.
func (p *PatternParser) Parse(xml string) ([]scanner.Item, error) {
	return ParseFeedItems(xml), nil
}

// ParseFeedItems returns every entry that has a title or a link.
func ParseFeedItems(xml string) []scanner.Item {
	if isAtom(xml) {
		return parseAtom(xml)
	}
	return parseRSS(xml)
}

func isAtom(xml string) bool {
	if atomRootExpr.MatchString(xml) {
		return true
	}
	return feedRootExpr.MatchString(xml) && !rssRootExpr.MatchString(xml)
}

func parseAtom(xml string) []scanner.Item {
	var items []scanner.Item
	for _, m := range entryExpr.FindAllStringSubmatch(xml, -1) {
		entry := m[1]

		title := cleanText(tagContent(entry, "title"))
		link := atomLink(entry)
		pubDate := firstNonEmpty(tagContent(entry, "published"), tagContent(entry, "updated"))
		description := cleanText(firstNonEmpty(tagContent(entry, "summary"), tagContent(entry, "content")))

		items = appendItem(items, title, link, pubDate, description)
	}
	return items
}

func parseRSS(xml string) []scanner.Item {
	var items []scanner.Item
	for _, m := range itemExpr.FindAllStringSubmatch(xml, -1) {
		item := m[1]

		title := cleanText(tagContent(item, "title"))
		link := plainText(firstNonEmpty(tagContent(item, "link"), tagContent(item, "guid")))
		pubDate := firstNonEmpty(
			tagContent(item, "pubDate"),
			tagContent(item, "dc:date"),
			tagContent(item, "date"),
		)
		description := cleanText(firstNonEmpty(tagContent(item, "description"), tagContent(item, "content:encoded")))

		items = appendItem(items, title, link, pubDate, description)
	}
	return items
}

func appendItem(items []scanner.Item, title, link, pubDate, description string) []scanner.Item {
	if title == "" && link == "" {
		return items
	}
	return append(items, scanner.Item{
		Title:       title,
		Link:        link,
		PubDate:     plainText(pubDate),
		Description: Truncate(description, DescriptionLimit),
	})
}

// atomLink prefers rel="alternate" and falls back to the first link with an href.
func atomLink(entry string) string {
	var fallback string
	for _, tag := range linkTagExpr.FindAllString(entry, -1) {
		attrs := attributes(tag)
		href := strings.TrimSpace(attrs["href"])
		if href == "" {
			continue
		}
		if strings.EqualFold(attrs["rel"], "alternate") {
			return href
		}
		if fallback == "" {
			fallback = href
		}
	}
	if fallback != "" {
		return fallback
	}
	return plainText(tagContent(entry, "link"))
}

func attributes(tag string) map[string]string {
	attrs := map[string]string{}
	for _, m := range attrExpr.FindAllStringSubmatch(tag, -1) {
		name := strings.ToLower(m[1])
		if _, seen := attrs[name]; seen {
			continue
		}
		value := m[2]
		if value == "" {
			value = m[3]
		}
		attrs[name] = decodeEntities(value)
	}
	return attrs
}

// tagContent returns the raw inner text of the first matching element, or ""
// when it is missing or self-closing. An exact tag name match wins over a
// namespace-prefixed one.
func tagContent(xml, tag string) string {
	if m := tagPattern(tag, false).FindStringSubmatch(xml); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1])
	}
	if strings.Contains(tag, ":") {
		return ""
	}
	if m := tagPattern(tag, true).FindStringSubmatch(xml); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func tagPattern(tag string, prefixed bool) *regexp.Regexp {
	key := tag
	if prefixed {
		key = "*:" + tag
	}
	if cached, ok := tagPatterns.Load(key); ok {
		return cached.(*regexp.Regexp)
	}

	name := regexp.QuoteMeta(tag)
	prefix := ""
	if prefixed {
		prefix = `[\w.-]+:`
	}
	expr := regexp.MustCompile(`(?is)<` + prefix + name + `(?:\s(?:[^>]*[^/>])?)?>(.*?)</` + prefix + name + `\s*>`)
	actual, _ := tagPatterns.LoadOrStore(key, expr)
	return actual.(*regexp.Regexp)
}

func blockPattern(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)<(?:[\w.-]+:)?` + tag + `(?:\s(?:[^>]*[^/>])?)?>(.*?)</(?:[\w.-]+:)?` + tag + `\s*>`)
}

// plainText unwraps CDATA and decodes entities without touching markup.
func plainText(raw string) string {
	return strings.TrimSpace(unwrapCDATA(raw))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
