package stages

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/filetree"
)

type rssDoc struct {
	Channel struct {
		Title string `xml:"title"`
		Link  string `xml:"link"`
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			Description string `xml:"description"`
		} `xml:"item"`
	} `xml:"channel"`
}

func TestFeed_FromCollection(t *testing.T) {
	bc := newTestContext(t,
		entry{path: "new/index.html", contents: "<h1>x</h1><p>First <em>para</em>.</p><p>Second</p>",
			attrs: map[string]any{"title": "New", "date": "2015-06-01", "permalink": "/new/"}},
		entry{path: "old/index.html", contents: "<p>ignored</p>",
			attrs: map[string]any{"title": "Old", "date": "2014-01-01", "permalink": "/old/", "excerpt": "Old excerpt"}},
	)
	bc.Site.Collections["posts"] = []*filetree.File{
		mustGet(t, bc, "new/index.html"),
		mustGet(t, bc, "old/index.html"),
	}

	st, err := NewFeed(FeedOptions{Path: "feed.rss", Collection: "posts"})
	require.NoError(t, err)
	require.NoError(t, st.Transform(bc))

	var doc rssDoc
	require.NoError(t, xml.Unmarshal(mustGet(t, bc, "feed.rss").Contents, &doc))
	assert.Equal(t, "Test Site", doc.Channel.Title)
	require.Len(t, doc.Channel.Items, 2)
	assert.Equal(t, "New", doc.Channel.Items[0].Title)
	assert.Equal(t, "https://example.com/new/", doc.Channel.Items[0].Link)
	assert.Equal(t, "First para.", doc.Channel.Items[0].Description)
	assert.Equal(t, "Old excerpt", doc.Channel.Items[1].Description)
}

func TestFeed_UnknownCollection(t *testing.T) {
	bc := newTestContext(t)

	st, err := NewFeed(FeedOptions{Path: "feed.rss", Collection: "posts"})
	require.NoError(t, err)
	assert.Error(t, st.Transform(bc))
}

func TestFeed_LimitAndAtom(t *testing.T) {
	bc := newTestContext(t,
		entry{path: "a/index.html", attrs: map[string]any{"title": "A", "permalink": "/a/"}},
		entry{path: "b/index.html", attrs: map[string]any{"title": "B", "permalink": "/b/"}},
	)
	bc.Site.Collections["posts"] = []*filetree.File{mustGet(t, bc, "a/index.html"), mustGet(t, bc, "b/index.html")}

	st, err := NewFeed(FeedOptions{Path: "feed.atom", Collection: "posts", Limit: 1})
	require.NoError(t, err)
	require.NoError(t, st.Transform(bc))

	out := string(mustGet(t, bc, "feed.atom").Contents)
	assert.Contains(t, out, "<feed")
	assert.Contains(t, out, "https://example.com/a/")
	assert.NotContains(t, out, "https://example.com/b/")
}

func TestNewFeed_Validation(t *testing.T) {
	_, err := NewFeed(FeedOptions{Collection: "posts"})
	assert.Error(t, err)
	_, err = NewFeed(FeedOptions{Path: "feed.rss"})
	assert.Error(t, err)
	_, err = NewFeed(FeedOptions{Path: "feed.txt", Collection: "posts"})
	assert.Error(t, err)
}

func TestFirstParagraph(t *testing.T) {
	assert.Equal(t, "", firstParagraph([]byte("<h1>no paragraphs</h1>")))
	assert.Equal(t, "a b", firstParagraph([]byte("<div><p> a <strong>b</strong> </p></div>")))
}
