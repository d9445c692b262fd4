package views

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubsite"
)

var testSite = pubsite.SiteMetadata{
	Title:       "Notes",
	Description: "A blog",
	Author:      "Jo",
	URL:         "https://example.com",
	Icon:        "/favicon.svg",
}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, c.Render(context.Background(), &b))
	return b.String()
}

func post(slug, title string, day int, tags ...string) pubsite.ContentRecord {
	return pubsite.ContentRecord{
		ID:   slug,
		Slug: slug,
		Frontmatter: pubsite.Frontmatter{
			Title: title,
			Date:  time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
			Tags:  tags,
		},
		Body: []byte("# Heading\n\nSome *text*."),
	}
}

func testImages() *pubsite.ImageVariantSet {
	return &pubsite.ImageVariantSet{
		Key: "k",
		Variants: []pubsite.Variant{
			{Width: 200, Height: 100, Format: pubsite.FormatJPEG, URL: "/images/a-200w.jpg"},
			{Width: 400, Height: 200, Format: pubsite.FormatJPEG, URL: "/images/a-400w.jpg"},
			{Width: 200, Height: 100, Format: pubsite.FormatPNG, URL: "/images/a-200w.png"},
		},
		Placeholder: pubsite.Placeholder{Width: 20, Height: 10, DataURI: "data:image/jpeg;base64,AAAA"},
	}
}

func TestDefault(t *testing.T) {
	v := Default()
	assert.NotNil(t, v.Home)
	assert.NotNil(t, v.About)
	assert.NotNil(t, v.BlogIndex)
	assert.NotNil(t, v.BlogDetail)
	assert.NotNil(t, v.NotFound)
}

func TestBlogDetail(t *testing.T) {
	p := post("hello", "Hello <World>", 5, "go")
	p.Frontmatter.ImageAlt = `A "hero"`
	p.Derived.ReadingTimeLabel = "3 min read"
	related := post("other", "Other", 4, "go")
	page := pubsite.PageDescriptor{
		RoutePath: pubsite.DetailRoute("hello"),
		Kind:      pubsite.KindBlogDetail,
		Post:      &p,
		Posts:     []pubsite.ContentRecord{related},
		Images:    testImages(),
		Seo:       pubsite.BuildSeo(testSite, pubsite.PageContext{Title: p.Frontmatter.Title, Path: "/blog/hello/", Post: &p}),
	}

	out := render(t, BlogDetail(testSite, page))
	assert.Contains(t, out, "<h1>Hello &lt;World&gt;</h1>")
	assert.Contains(t, out, "March 5, 2024 · 3 min read")
	assert.Contains(t, out, `<h1 id="heading">Heading</h1>`)
	assert.Contains(t, out, "<em>text</em>")
	assert.Contains(t, out, "<span>#go</span>")
	assert.Contains(t, out, `<a href="/blog/other/">Other</a>`)

	assert.Contains(t, out, "<picture>")
	assert.Contains(t, out, `<source type="image/png" srcset="/images/a-200w.png 200w"`)
	assert.Contains(t, out, `src="/images/a-400w.jpg"`)
	assert.Contains(t, out, `srcset="/images/a-200w.jpg 200w, /images/a-400w.jpg 400w"`)
	assert.Contains(t, out, `width="400" height="200"`)
	assert.Contains(t, out, `alt="A &#34;hero&#34;"`)
	assert.Contains(t, out, "background-image: url('data:image/jpeg;base64,AAAA')")
}

func TestBlogDetailWithoutImage(t *testing.T) {
	p := post("hello", "Hello", 5)
	page := pubsite.PageDescriptor{Kind: pubsite.KindBlogDetail, Post: &p}
	out := render(t, BlogDetail(testSite, page))
	assert.NotContains(t, out, "<picture>")
	assert.NotContains(t, out, "Related posts")
	assert.Contains(t, out, `<p class="post-meta">March 5, 2024</p>`)
}

func TestBlogIndexPreservesOrder(t *testing.T) {
	page := pubsite.PageDescriptor{
		Kind: pubsite.KindBlogIndex,
		Posts: []pubsite.ContentRecord{
			post("b", "Beta", 1),
			post("c", "Gamma", 9),
			post("a", "Alpha", 5),
		},
	}
	out := render(t, BlogIndex(testSite, page))
	b, c, a := strings.Index(out, "Beta"), strings.Index(out, "Gamma"), strings.Index(out, "Alpha")
	require.True(t, b > 0 && c > 0 && a > 0)
	assert.Less(t, b, c)
	assert.Less(t, c, a)
}

func TestBlogIndexEmpty(t *testing.T) {
	out := render(t, BlogIndex(testSite, pubsite.PageDescriptor{Kind: pubsite.KindBlogIndex}))
	assert.Contains(t, out, "No posts yet.")
}

func TestHomeListsRecentPosts(t *testing.T) {
	var posts []pubsite.ContentRecord
	for i := 1; i <= 7; i++ {
		posts = append(posts, post(string(rune('a'+i)), "Post "+string(rune('A'+i)), i))
	}
	out := render(t, Home(testSite, pubsite.PageDescriptor{Kind: pubsite.KindHome, Posts: posts}))
	assert.Equal(t, recentPosts, strings.Count(out, "<li>"))
	assert.Contains(t, out, "All posts")
}

func TestLayoutHead(t *testing.T) {
	site := testSite
	site.Title = `Fish & "Chips"`
	seo := pubsite.BuildSeo(site, pubsite.PageContext{Title: "<About>", Path: "/about/"})

	out := render(t, Layout(site, seo, templ.Raw("<p>body</p>")))
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>&lt;About&gt; | Fish &amp; &#34;Chips&#34;</title>")
	assert.Contains(t, out, `<meta property="og:title" content="&lt;About&gt;">`)
	assert.Contains(t, out, `<meta name="description" content="A blog">`)
	assert.Contains(t, out, `<link rel="canonical" href="https://example.com/about/">`)
	assert.Contains(t, out, `<link rel="shortcut icon" type="image/svg+xml" href="/favicon.svg">`)
	assert.Contains(t, out, `<script type="application/ld+json">`)
	assert.Contains(t, out, "<main><p>body</p></main>")
	assert.Contains(t, out, "© Jo")
}

func TestPictureEmpty(t *testing.T) {
	assert.Empty(t, Picture(&pubsite.ImageVariantSet{}, "alt"))
}

func TestSummarizeEscapesRoutes(t *testing.T) {
	got := Summarize([]pubsite.ContentRecord{post("2021/мир", "Мир", 1), post("hello", "Hello", 2)})
	require.Len(t, got, 2)
	assert.Equal(t, "/blog/2021/%D0%BC%D0%B8%D1%80/", got[0].URL)
	assert.Equal(t, "/blog/hello/", got[1].URL)
	assert.Equal(t, "March 1, 2024", got[0].Date)
}
