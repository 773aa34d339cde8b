package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// DescriptionLimit caps description length in runes.
const DescriptionLimit = 500

var (
	cdataExpr  = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	entityExpr = regexp.MustCompile(`&(?:#[0-9]{1,7}|#[xX][0-9a-fA-F]{1,6}|amp|lt|gt|quot|apos|nbsp);`)
	tagExpr    = regexp.MustCompile(`<[^>]*>`)
)

// cleanText unwraps CDATA, decodes XML entities outside CDATA sections and
// strips markup from the result.
func cleanText(raw string) string {
	return stripHTML(unwrapCDATA(raw))
}

// unwrapCDATA replaces every CDATA section with its literal content. Text
// outside the sections is entity-decoded once.
func unwrapCDATA(raw string) string {
	matches := cdataExpr.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return decodeEntities(raw)
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(decodeEntities(raw[last:m[0]]))
		b.WriteString(raw[m[2]:m[3]])
		last = m[1]
	}
	b.WriteString(decodeEntities(raw[last:]))
	return b.String()
}

// decodeEntities resolves the predefined XML entities, &nbsp; and numeric
// character references in a single pass.
func decodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}

	return entityExpr.ReplaceAllStringFunc(s, func(ref string) string {
		switch ref {
		case "&amp;":
			return "&"
		case "&lt;":
			return "<"
		case "&gt;":
			return ">"
		case "&quot;":
			return `"`
		case "&apos;":
			return "'"
		case "&nbsp;":
			return " "
		}

		body := ref[2 : len(ref)-1]
		base := 10
		if body[0] == 'x' || body[0] == 'X' {
			base = 16
			body = body[1:]
		}
		code, err := strconv.ParseInt(body, base, 32)
		if err != nil || code == 0 || !utf8.ValidRune(rune(code)) {
			return ref
		}
		return string(rune(code))
	})
}

// stripHTML drops tags (and script/style bodies) and resolves HTML entities.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(tagExpr.ReplaceAllString(s, ""))
	}
	doc.Find("script, style").Remove()

	text := strings.ReplaceAll(doc.Text(), "\u00a0", " ")
	return strings.TrimSpace(text)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
