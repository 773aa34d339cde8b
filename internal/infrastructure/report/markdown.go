// Package report renders a finished digest as markdown or HTML.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	mdparser "github.com/gomarkdown/markdown/parser"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/ports"
)

var medals = [3]string{"🥇", "🥈", "🥉"}

// Format selects the output document type.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Renderer implements ports.Renderer.
type Renderer struct {
	format Format
	now    func() time.Time
}

var _ ports.Renderer = (*Renderer)(nil)

// NewRenderer returns a renderer for the given format; unknown means markdown.
func NewRenderer(format string) *Renderer {
	f := Format(strings.ToLower(strings.TrimSpace(format)))
	if f != FormatHTML {
		f = FormatMarkdown
	}
	return &Renderer{format: f, now: time.Now}
}

// Extension is the file suffix matching the format.
func (r *Renderer) Extension() string {
	if r.format == FormatHTML {
		return ".html"
	}
	return ".md"
}

// Render produces the document bytes.
func (r *Renderer) Render(d domain.Digest) ([]byte, error) {
	md := r.Markdown(d)
	if r.format == FormatMarkdown {
		return []byte(md), nil
	}

	p := mdparser.NewWithExtensions(mdparser.CommonExtensions | mdparser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: labelsFor(d.Stats.Lang).title,
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank,
	})
	return markdown.ToHTML([]byte(md), p, renderer), nil
}

// Markdown renders the digest as a markdown document.
func (r *Renderer) Markdown(d domain.Digest) string {
	lang := d.Stats.Lang
	l := labelsFor(lang)
	now := r.now()
	generated := d.Generated
	if generated.IsZero() {
		generated = now
	}
	date := generated.UTC().Format("2006-01-02")

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s — %s\n\n", l.title, date)
	sb.WriteString("> " + fmt.Sprintf(l.subtitle, d.Stats.TotalFeeds, len(d.Articles)) + "\n\n")

	if d.Highlights != "" {
		fmt.Fprintf(&sb, "## %s\n\n%s\n\n---\n\n", l.highlights, d.Highlights)
	}

	if len(d.Articles) >= len(medals) {
		fmt.Fprintf(&sb, "## %s\n\n", l.mustRead)
		for i, medal := range medals {
			a := d.Articles[i]
			info := a.Category.Info()
			fmt.Fprintf(&sb, "%s **%s**\n\n", medal, a.DisplayTitle())
			fmt.Fprintf(&sb, "[%s](%s) — %s · %s · %s %s\n\n",
				a.Title, a.Link, a.SourceName, Humanize(a.PubDate, now, lang), info.Emoji, info.Label(lang))
			fmt.Fprintf(&sb, "> %s\n\n", a.Summary)
			if a.Reason != "" {
				fmt.Fprintf(&sb, "%s: %s\n\n", l.whyRead, a.Reason)
			}
			if len(a.Keywords) > 0 {
				fmt.Fprintf(&sb, "🏷️ %s\n\n", strings.Join(a.Keywords, ", "))
			}
		}
		sb.WriteString("---\n\n")
	}

	r.writeOverview(&sb, d, l)

	groups := groupByCategory(d.Articles)
	n := 0
	for _, g := range groups {
		info := g.category.Info()
		fmt.Fprintf(&sb, "## %s %s\n\n", info.Emoji, info.Label(lang))
		for _, a := range g.articles {
			n++
			fmt.Fprintf(&sb, "### %d. %s\n\n", n, a.DisplayTitle())
			fmt.Fprintf(&sb, "[%s](%s) — **%s** · %s · ⭐ %d/30\n\n",
				a.Title, a.Link, a.SourceName, Humanize(a.PubDate, now, lang), a.Score())
			fmt.Fprintf(&sb, "> %s\n\n", a.Summary)
			if len(a.Keywords) > 0 {
				fmt.Fprintf(&sb, "🏷️ %s\n\n", strings.Join(a.Keywords, ", "))
			}
			sb.WriteString("---\n\n")
		}
	}

	fmt.Fprintf(&sb, l.footer+"\n", date, generated.UTC().Format("15:04"),
		d.Stats.SuccessFeeds, d.Stats.TotalArticles, len(d.Articles))

	return sb.String()
}

func (r *Renderer) writeOverview(sb *strings.Builder, d domain.Digest, l labels) {
	lang := d.Stats.Lang
	s := d.Stats

	fmt.Fprintf(sb, "## %s\n\n", l.overview)
	sb.WriteString(l.tableHeader + "\n")
	sb.WriteString("|:---:|:---:|:---:|:---:|\n")
	fmt.Fprintf(sb, "| %d/%d | %d%s → %d%s | %dh | **%d%s** |\n\n",
		s.SuccessFeeds, s.TotalFeeds,
		s.TotalArticles, l.articleUnit, s.FilteredArticles, l.articleUnit,
		s.Hours,
		len(d.Articles), l.articleUnit)

	if pie := categoryPie(groupByCategory(d.Articles), l, lang); pie != "" {
		fmt.Fprintf(sb, "### %s\n\n%s\n", l.categoryDist, pie)
	}

	counts := countKeywords(d.Articles)
	if bar := keywordBarChart(counts, l); bar != "" {
		fmt.Fprintf(sb, "### %s\n\n%s\n", l.keywords, bar)
	}
	if ascii := asciiBarChart(counts); ascii != "" {
		fmt.Fprintf(sb, "<details>\n<summary>%s</summary>\n\n%s\n</details>\n\n", l.asciiSummary, ascii)
	}
	if cloud := tagCloud(counts); cloud != "" {
		fmt.Fprintf(sb, "### %s\n\n%s\n\n", l.tags, cloud)
	}

	sb.WriteString("---\n\n")
}
