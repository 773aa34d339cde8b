package domain

import "time"

// FeedSource is a named RSS or Atom endpoint plus its human-facing page.
type FeedSource struct {
	Name    string `yaml:"name" json:"name"`
	XMLURL  string `yaml:"xmlUrl" json:"xmlUrl"`
	HTMLURL string `yaml:"htmlUrl" json:"htmlUrl"`
}

// Article is a single feed entry after parsing.
type Article struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PubDate     time.Time `json:"pubDate"`
	Description string    `json:"description"`
	SourceName  string    `json:"sourceName"`
	SourceURL   string    `json:"sourceUrl"`
}

// ScoreResult is the normalized scoring output for one article.
type ScoreResult struct {
	Relevance  int
	Quality    int
	Timeliness int
	Category   Category
	Keywords   []string
}

// Total sums the three score dimensions.
func (s ScoreResult) Total() int {
	return s.Relevance + s.Quality + s.Timeliness
}

// NeutralScore is substituted when a scoring batch fails.
func NeutralScore() ScoreResult {
	return ScoreResult{
		Relevance:  5,
		Quality:    5,
		Timeliness: 5,
		Category:   CategoryOther,
		Keywords:   []string{},
	}
}

// SummaryResult is the normalized summarization output for one article.
type SummaryResult struct {
	TitleZh string
	Summary string
	Reason  string
}

// ScoredArticle is the fully enriched article handed to the report renderer.
type ScoredArticle struct {
	Article
	ScoreResult
	SummaryResult
}

// Score is relevance+quality+timeliness, in [3,30].
func (a ScoredArticle) Score() int {
	return a.ScoreResult.Total()
}

// DisplayTitle prefers the translated title.
func (a ScoredArticle) DisplayTitle() string {
	if a.TitleZh != "" {
		return a.TitleZh
	}
	return a.Title
}

// FetchStats aggregates per-source outcomes of one fetch pass.
type FetchStats struct {
	Total     int
	Succeeded int
	Failed    int
	Empty     int
	Articles  int
}

// RunStats describes one digest run for the report footer and stats table.
type RunStats struct {
	TotalFeeds       int
	SuccessFeeds     int
	TotalArticles    int
	FilteredArticles int
	Hours            int
	Lang             string
}

// Digest is the outcome of a pipeline run.
type Digest struct {
	RunID      string
	Articles   []ScoredArticle
	Highlights string
	Stats      RunStats
	Generated  time.Time
}
