package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/infrastructure/parser"
	"DailyDigest/internal/logging"
	"DailyDigest/internal/metrics"
)

func rssBody(title string) string {
	return fmt.Sprintf(`<?xml version="1.0"?><rss version="2.0"><channel>
<item><title>%s</title><link>https://example.com/%s</link><pubDate>Mon, 01 Jan 2024 00:00:00 GMT</pubDate></item>
<item><title>%s second</title><link>https://example.com/%s/2</link><pubDate>whenever</pubDate></item>
</channel></rss>`, title, title, title, title)
}

func TestFetchAllBoundsInFlightRequests(t *testing.T) {
	t.Parallel()

	var current, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := current.Add(1)
		defer current.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		_, _ = w.Write([]byte(rssBody(r.URL.Path[1:])))
	}))
	defer srv.Close()

	sources := make([]domain.FeedSource, 25)
	for i := range sources {
		sources[i] = domain.FeedSource{Name: fmt.Sprintf("s%02d", i), XMLURL: fmt.Sprintf("%s/f%02d", srv.URL, i)}
	}

	f := NewFetcher(parser.NewPatternParser(), Options{Concurrency: 10}, logging.Discard(), nil)
	articles, stats := f.FetchAll(context.Background(), sources)

	assert.LessOrEqual(t, peak.Load(), int32(10))
	assert.Equal(t, 25, stats.Succeeded)
	require.Len(t, articles, 50)
	for i := range sources {
		assert.Equal(t, sources[i].Name, articles[2*i].SourceName, "source order is preserved")
		assert.Equal(t, fmt.Sprintf("f%02d", i), articles[2*i].Title)
	}
}

func TestFetchAllIsolatesFailures(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		gotAccept.Store(r.Header.Get("Accept"))
		_, _ = w.Write([]byte(rssBody("ok")))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<rss><channel></channel></rss>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rec := metrics.New()
	f := NewFetcher(nil, Options{Timeout: 200 * time.Millisecond}, logging.Discard(), rec)
	articles, stats := f.FetchAll(context.Background(), []domain.FeedSource{
		{Name: "slow", XMLURL: srv.URL + "/slow"},
		{Name: "missing", XMLURL: srv.URL + "/missing"},
		{Name: "ok", XMLURL: srv.URL + "/ok", HTMLURL: "https://ok.example.com"},
		{Name: "empty", XMLURL: srv.URL + "/empty"},
	})

	assert.Equal(t, domain.FetchStats{Total: 4, Succeeded: 2, Failed: 2, Empty: 1, Articles: 2}, stats)
	require.Len(t, articles, 2)
	assert.Equal(t, "ok", articles[0].SourceName)
	assert.Equal(t, "https://ok.example.com", articles[0].SourceURL)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), articles[0].PubDate.UTC())
	assert.Equal(t, time.Unix(0, 0).UTC(), articles[1].PubDate, "unparseable date becomes epoch")

	assert.Equal(t, defaultUserAgent, gotUA.Load())
	assert.Equal(t, acceptHeader, gotAccept.Load())
}

func TestHostRateLimiterRejectsHostlessURL(t *testing.T) {
	t.Parallel()

	l := NewHostRateLimiter(time.Millisecond)
	assert.Error(t, l.WaitForHost(context.Background(), "/relative/path"))
	assert.NoError(t, l.WaitForHost(context.Background(), "https://example.com/feed"))
}

func TestHostRateLimiterSpacesSameHost(t *testing.T) {
	t.Parallel()

	l := NewHostRateLimiter(50 * time.Millisecond)
	ctx := context.Background()
	start := time.Now()
	require.NoError(t, l.WaitForHost(ctx, "https://a.example.com/1"))
	require.NoError(t, l.WaitForHost(ctx, "https://b.example.com/1"))
	assert.Less(t, time.Since(start), 40*time.Millisecond, "different hosts do not wait")
	require.NoError(t, l.WaitForHost(ctx, "https://a.example.com/2"))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}
