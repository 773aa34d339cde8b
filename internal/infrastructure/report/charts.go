package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"DailyDigest/internal/domain"
)

const (
	barChartKeywords   = 12
	asciiChartKeywords = 10
	asciiBarWidth      = 20
	tagCloudKeywords   = 20
	tagCloudBold       = 3
)

type keywordCount struct {
	word  string
	count int
}

// countKeywords tallies case-folded keywords, most frequent first; ties keep
// first-seen order.
func countKeywords(articles []domain.ScoredArticle) []keywordCount {
	var order []keywordCount
	pos := map[string]int{}
	folder := cases.Lower(language.Und)

	for _, a := range articles {
		for _, kw := range a.Keywords {
			word := folder.String(norm.NFC.String(strings.TrimSpace(kw)))
			if word == "" {
				continue
			}
			if i, ok := pos[word]; ok {
				order[i].count++
				continue
			}
			pos[word] = len(order)
			order = append(order, keywordCount{word: word, count: 1})
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return order[i].count > order[j].count })
	return order
}

type categoryGroup struct {
	category domain.Category
	articles []domain.ScoredArticle
}

// groupByCategory buckets articles, largest group first; ties keep
// first-seen order.
func groupByCategory(articles []domain.ScoredArticle) []categoryGroup {
	var groups []categoryGroup
	pos := map[domain.Category]int{}
	for _, a := range articles {
		i, ok := pos[a.Category]
		if !ok {
			i = len(groups)
			pos[a.Category] = i
			groups = append(groups, categoryGroup{category: a.Category})
		}
		groups[i].articles = append(groups[i].articles, a)
	}
	sort.SliceStable(groups, func(i, j int) bool { return len(groups[i].articles) > len(groups[j].articles) })
	return groups
}

func categoryPie(groups []categoryGroup, l labels, lang string) string {
	if len(groups) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("```mermaid\npie showData\n")
	fmt.Fprintf(&sb, "    title %q\n", l.categoryDist)
	for _, g := range groups {
		info := g.category.Info()
		fmt.Fprintf(&sb, "    \"%s %s\" : %d\n", info.Emoji, info.Label(lang), len(g.articles))
	}
	sb.WriteString("```\n")
	return sb.String()
}

func keywordBarChart(counts []keywordCount, l labels) string {
	if len(counts) == 0 {
		return ""
	}
	top := counts[:min(barChartKeywords, len(counts))]

	names := make([]string, len(top))
	values := make([]string, len(top))
	for i, kc := range top {
		names[i] = `"` + strings.ReplaceAll(kc.word, `"`, "'") + `"`
		values[i] = fmt.Sprintf("%d", kc.count)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\nxychart-beta horizontal\n")
	fmt.Fprintf(&sb, "    title %q\n", l.keywords)
	fmt.Fprintf(&sb, "    x-axis [%s]\n", strings.Join(names, ", "))
	fmt.Fprintf(&sb, "    y-axis %q 0 --> %d\n", l.keywordAxis, top[0].count+2)
	fmt.Fprintf(&sb, "    bar [%s]\n", strings.Join(values, ", "))
	sb.WriteString("```\n")
	return sb.String()
}

func asciiBarChart(counts []keywordCount) string {
	if len(counts) == 0 {
		return ""
	}
	top := counts[:min(asciiChartKeywords, len(counts))]
	maxVal := top[0].count

	labelWidth := 0
	for _, kc := range top {
		labelWidth = max(labelWidth, displayWidth(kc.word))
	}

	var sb strings.Builder
	sb.WriteString("```\n")
	for _, kc := range top {
		barLen := max(1, int(math.Round(float64(kc.count)/float64(maxVal)*asciiBarWidth)))
		bar := strings.Repeat("█", barLen) + strings.Repeat("░", asciiBarWidth-barLen)
		pad := strings.Repeat(" ", labelWidth-displayWidth(kc.word))
		fmt.Fprintf(&sb, "%s%s │ %s %d\n", kc.word, pad, bar, kc.count)
	}
	sb.WriteString("```\n")
	return sb.String()
}

func tagCloud(counts []keywordCount) string {
	top := counts[:min(tagCloudKeywords, len(counts))]
	parts := make([]string, len(top))
	for i, kc := range top {
		if i < tagCloudBold {
			parts[i] = fmt.Sprintf("**%s**(%d)", kc.word, kc.count)
		} else {
			parts[i] = fmt.Sprintf("%s(%d)", kc.word, kc.count)
		}
	}
	return strings.Join(parts, " · ")
}

// displayWidth counts East Asian wide and fullwidth runes as two columns.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}
