package usecase

import (
	"fmt"
	"strings"

	"DailyDigest/internal/batch"
	"DailyDigest/internal/domain"
	"DailyDigest/internal/infrastructure/parser"
)

const (
	scoreDescriptionLimit   = 300
	summaryDescriptionLimit = 800
	highlightSummaryLimit   = 100
	articleSeparator        = "\n\n---\n\n"
)

const scoringInstructions = `You curate a daily digest of technical articles for engineers and technology enthusiasts.

Score every article below on three axes with integers from 1 to 10 (10 is best), assign exactly one category and extract 2 to 4 keywords.

## Axes

relevance: value to people working in software, AI or the internet industry.
10 = everyone in tech should know this; 7-9 = useful to most practitioners; 4-6 = useful to a niche; 1-3 = barely related to tech.

quality: depth and writing of the article itself.
10 = deep original analysis with evidence; 7-9 = insightful; 4-6 = accurate and clear; 1-3 = shallow or a rehash.

timeliness: whether it is worth reading right now.
10 = major event happening now or an important release; 7-9 = tied to a current topic; 4-6 = evergreen; 1-3 = outdated.

## Categories (pick one)
- ai-ml: AI, machine learning, LLMs, deep learning
- security: security, privacy, vulnerabilities, cryptography
- engineering: software engineering, architecture, languages, system design
- tools: developer tools, open source projects, new libraries or frameworks
- opinion: industry views, personal essays, careers, culture
- other: none of the above

## Keywords
2 to 4 short English keywords that best represent the topic, e.g. "Rust", "LLM", "database", "performance".

## Articles

`

const scoringSchema = `

Return strict JSON only, with no markdown fences and no extra text, following this schema:
{
  "results": [
    {
      "index": 0,
      "relevance": 8,
      "quality": 7,
      "timeliness": 9,
      "category": "engineering",
      "keywords": ["Rust", "compiler", "performance"]
    }
  ]
}`

const summaryInstructions = `You write summaries of technical articles. For each article below produce:

1. titleZh: a natural Chinese translation of the title; keep it unchanged if it is already Chinese.
2. summary: a structured summary of 4 to 6 sentences so a reader understands the article without opening it. Cover the core question, the key arguments or findings, and the conclusion.
3. reason: one sentence on why it is worth reading, distinct from the summary.

Get to the point without openers such as "This article discusses". Keep concrete names, numbers and versions. If the article compares options, name them and the verdict.

`

const summarySchema = `

Return strict JSON following this schema:
{
  "results": [
    {
      "index": 0,
      "titleZh": "translated title",
      "summary": "summary text",
      "reason": "why read it"
    }
  ]
}`

func summaryLanguage(lang string) string {
	if lang == "en" {
		return "Write summaries, reasons and title translations in English."
	}
	return "Write the summary and the reason in Chinese, translating from English where needed. The title translation is Chinese too."
}

func highlightsLanguage(lang string) string {
	if lang == "en" {
		return "Write in English."
	}
	return "Answer in Chinese."
}

func buildScoringPrompt(b batch.Batch[domain.Article]) string {
	entries := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		a := item.Value
		entries = append(entries, fmt.Sprintf("Index %d: [%s] %s\n%s",
			item.Index, a.SourceName, a.Title, parser.Truncate(a.Description, scoreDescriptionLimit)))
	}
	return scoringInstructions + strings.Join(entries, articleSeparator) + scoringSchema
}

func buildSummaryPrompt(b batch.Batch[domain.Article], lang string) string {
	entries := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		a := item.Value
		entries = append(entries, fmt.Sprintf("Index %d: [%s] %s\nURL: %s\n%s",
			item.Index, a.SourceName, a.Title, a.Link, parser.Truncate(a.Description, summaryDescriptionLimit)))
	}

	var sb strings.Builder
	sb.WriteString(summaryInstructions)
	sb.WriteString(summaryLanguage(lang))
	sb.WriteString("\n\n## Articles\n\n")
	sb.WriteString(strings.Join(entries, articleSeparator))
	sb.WriteString(summarySchema)
	return sb.String()
}

func buildHighlightsPrompt(articles []domain.ScoredArticle, lang string) string {
	var list strings.Builder
	for i, a := range articles {
		fmt.Fprintf(&list, "%d. [%s] %s — %s\n",
			i+1, a.Category, a.DisplayTitle(), parser.Truncate(a.Summary, highlightSummaryLimit))
	}

	return fmt.Sprintf(`Write a 3 to 5 sentence "today's highlights" overview of the curated technical articles below.
- Identify the 2 or 3 main trends or topics of the day.
- Generalize instead of listing articles one by one.
- Keep it crisp, like a news lede.
%s

Articles:
%s
Return plain text only, no JSON and no markdown.`, highlightsLanguage(lang), list.String())
}
