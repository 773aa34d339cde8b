package parser

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const atomFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Blog</title>
  <link href="https://blog.example.com/"/>
  <entry>
    <title>First post</title>
    <link rel="self" href="https://blog.example.com/first.atom"/>
    <link rel="alternate" type="text/html" href="https://blog.example.com/first"/>
    <published>2024-05-01T10:00:00Z</published>
    <updated>2024-05-03T10:00:00Z</updated>
    <summary type="html">Short &lt;em&gt;summary&lt;/em&gt;</summary>
  </entry>
  <entry>
    <title>Second post</title>
    <link href="https://blog.example.com/second"/>
    <updated>2024-05-02T10:00:00Z</updated>
    <content type="html">&lt;p&gt;Body text&lt;/p&gt;</content>
  </entry>
</feed>`

const rssFeed = `<?xml version="1.0"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">
<channel>
  <title>Example RSS</title>
  <atom:link href="https://rss.example.com/feed" rel="self" type="application/rss+xml"/>
  <item>
    <title><![CDATA[Hello & World]]></title>
    <link>https://rss.example.com/hello</link>
    <pubDate>Mon, 01 Jan 2024 00:00:00 GMT</pubDate>
    <description>&lt;p&gt;Hello &lt;b&gt;world&lt;/b&gt; &amp;amp; friends&lt;/p&gt;</description>
  </item>
  <item>
    <title>Guid only</title>
    <guid isPermaLink="true">https://rss.example.com/guid</guid>
    <dc:date>2024-01-02T03:04:05Z</dc:date>
    <content:encoded><![CDATA[<div>Encoded <i>body</i></div>]]></content:encoded>
  </item>
  <item>
    <title></title>
    <description>no title, no link</description>
  </item>
  <item>
    <link>https://rss.example.com/untitled</link>
  </item>
</channel>
</rss>`

func TestParseFeedItemsAtom(t *testing.T) {
	t.Parallel()

	items := ParseFeedItems(atomFeed)
	require.Len(t, items, 2)

	assert.Equal(t, "First post", items[0].Title)
	assert.Equal(t, "https://blog.example.com/first", items[0].Link)
	assert.Equal(t, "2024-05-01T10:00:00Z", items[0].PubDate)
	assert.Equal(t, "Short summary", items[0].Description)

	assert.Equal(t, "Second post", items[1].Title)
	assert.Equal(t, "https://blog.example.com/second", items[1].Link)
	assert.Equal(t, "2024-05-02T10:00:00Z", items[1].PubDate)
	assert.Equal(t, "Body text", items[1].Description)
}

func TestParseFeedItemsRSS(t *testing.T) {
	t.Parallel()

	items := ParseFeedItems(rssFeed)
	require.Len(t, items, 3)

	assert.Equal(t, "Hello & World", items[0].Title)
	assert.Equal(t, "https://rss.example.com/hello", items[0].Link)
	assert.Equal(t, "Mon, 01 Jan 2024 00:00:00 GMT", items[0].PubDate)
	assert.Equal(t, "Hello world & friends", items[0].Description)

	assert.Equal(t, "Guid only", items[1].Title)
	assert.Equal(t, "https://rss.example.com/guid", items[1].Link)
	assert.Equal(t, "2024-01-02T03:04:05Z", items[1].PubDate)
	assert.Equal(t, "Encoded body", items[1].Description)

	assert.Equal(t, "", items[2].Title)
	assert.Equal(t, "https://rss.example.com/untitled", items[2].Link)
}

func TestParseFeedItemsNamespacedAtom(t *testing.T) {
	t.Parallel()

	xml := `<atom:feed xmlns:atom="http://www.w3.org/2005/Atom">
	<atom:entry><atom:title>Prefixed</atom:title><atom:link href="https://p.example.com/1"/></atom:entry>
	</atom:feed>`

	items := ParseFeedItems(xml)
	require.Len(t, items, 1)
	assert.Equal(t, "Prefixed", items[0].Title)
	assert.Equal(t, "https://p.example.com/1", items[0].Link)
}

func TestParseFeedItemsMalformed(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ParseFeedItems(""))
	assert.Empty(t, ParseFeedItems("<rss><channel><item><title>never closed"))

	partial := `<rss><channel>
	<item><title>Good</title><link>https://ok.example.com</link></item>
	<item><title>Broken <link>https://broken.example.com`
	items := ParseFeedItems(partial)
	require.Len(t, items, 1)
	assert.Equal(t, "Good", items[0].Title)
}

func TestParseFeedItemsSelfClosingAndEntities(t *testing.T) {
	t.Parallel()

	xml := `<rss><channel><item>
	<title>It&#8217;s &#x27;quoted&#x27; &quot;text&quot;</title>
	<link>https://e.example.com/?a=1&amp;b=2</link>
	<description/>
	</item></channel></rss>`

	items := ParseFeedItems(xml)
	require.Len(t, items, 1)
	assert.Equal(t, "It’s 'quoted' \"text\"", items[0].Title)
	assert.Equal(t, "https://e.example.com/?a=1&b=2", items[0].Link)
	assert.Equal(t, "", items[0].Description)
}

func TestParseFeedItemsTruncatesDescription(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("字", DescriptionLimit+50)
	xml := `<rss><channel><item><title>Long</title><description>` + long + `</description></item></channel></rss>`

	items := ParseFeedItems(xml)
	require.Len(t, items, 1)
	assert.Equal(t, DescriptionLimit, utf8.RuneCountInString(items[0].Description))
}

func TestPatternParserStrategy(t *testing.T) {
	t.Parallel()

	p := NewPatternParser()
	assert.Equal(t, "pattern", p.Name())

	items, err := p.Parse(atomFeed)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestDecodeEntities(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"a &amp; b":       "a & b",
		"&lt;tag&gt;":     "<tag>",
		"&amp;lt;":        "&lt;",
		"&#65;&#x42;":     "AB",
		"&apos;x&apos;":   "'x'",
		"&bogus; &#0;":    "&bogus; &#0;",
		"no entities":     "no entities",
		"non&nbsp;break":  "non break",
		"&#x1F600; smile": "😀 smile",
	}
	for in, want := range cases {
		assert.Equal(t, want, decodeEntities(in), "input %q", in)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "héllo", Truncate("héllo wörld", 5))
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "", Truncate("anything", 0))
}
