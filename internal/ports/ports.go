package ports

import (
	"context"
	"time"

	"DailyDigest/internal/domain"
)

// ArticleSource pulls articles from every configured feed.
type ArticleSource interface {
	FetchAll(ctx context.Context, sources []domain.FeedSource) ([]domain.Article, domain.FetchStats)
}

// ChatClient sends one prompt to an LLM chat-completion API and returns the text.
type ChatClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// FeedCache keeps recently fetched articles to skip refetching.
type FeedCache interface {
	Read(ctx context.Context) ([]domain.Article, bool, error)
	Write(ctx context.Context, articles []domain.Article, sourceCount int) error
	Clear(ctx context.Context) error
}

// Renderer turns a finished digest into a document.
type Renderer interface {
	Render(digest domain.Digest) ([]byte, error)
}

// Notifier streams selected digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
