package pubsite

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Hello World", "hello-world"},
		{"Crème Brûlée", "creme-brulee"},
		{"  --Go 1.22!-- ", "go-1-22"},
		{"First_Post", "first-post"},
		{"", ""},
		{"!!!", ""},
		{"Привет, Мир", "привет-мир"},
		{"日本語", "日本語"},
		{"Ελληνικά 2", "ελληνικα-2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.input), "Slugify(%q)", tt.input)
	}
}

func TestSlugFromPath(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"hello-world.md", "hello-world"},
		{"2021/Hello World/index.mdx", "2021/hello-world"},
		{"Posts/First_Post.markdown", "posts/first-post"},
		{"index.md", ""},
		{`win\style\post.md`, "win/style/post"},
		{"2021/Привет.md", "2021/привет"},
		{"2021/Мир.md", "2021/мир"},
		{"日本語.md", "日本語"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SlugFromPath(tt.input), "SlugFromPath(%q)", tt.input)
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://example.com", nil, "https://example.com"},
		{"https://example.com", []string{"/"}, "https://example.com/"},
		{"https://example.com", []string{"/blog/x/"}, "https://example.com/blog/x/"},
		{"https://example.com", []string{"blog", "x"}, "https://example.com/blog/x/"},
		{"https://example.com", []string{"/404.html"}, "https://example.com/404.html"},
		{"https://example.com/sub", []string{"about"}, "https://example.com/sub/about/"},
		{"https://example.com", []string{"/blog/мир/"}, "https://example.com/blog/%D0%BC%D0%B8%D1%80/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BuildURL(tt.base, tt.segments...), "BuildURL(%q, %v)", tt.base, tt.segments)
	}
}

func TestRelatedPosts(t *testing.T) {
	current := ContentRecord{ID: "1", Frontmatter: Frontmatter{Tags: []string{"go", "web"}}}
	posts := []ContentRecord{
		current,
		{ID: "2", Frontmatter: Frontmatter{Tags: []string{"web"}}},
		{ID: "3", Frontmatter: Frontmatter{Tags: []string{"cooking"}}},
		{ID: "4", Frontmatter: Frontmatter{Tags: []string{"go", "web"}}},
	}
	related := RelatedPosts(current, posts)
	require.Len(t, related, 2)
	assert.Equal(t, "2", related[0].ID)
	assert.Equal(t, "4", related[1].ID)

	assert.Nil(t, RelatedPosts(ContentRecord{ID: "5"}, posts))
}

func TestBlogPostingJsonLD(t *testing.T) {
	post := ContentRecord{
		Slug: "hello",
		Frontmatter: Frontmatter{
			Title: "Hello",
			Date:  time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
			Tags:  []string{"go", "web"},
		},
	}
	site := SiteMetadata{Title: "Site", Author: "Ann", URL: "https://example.com"}

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(BlogPostingJsonLD(post, site, "desc")), &data))
	assert.Equal(t, "BlogPosting", data["@type"])
	assert.Equal(t, "Hello", data["headline"])
	assert.Equal(t, "2024-03-09", data["datePublished"])
	assert.Equal(t, "https://example.com/blog/hello/", data["url"])
	assert.Equal(t, "go, web", data["keywords"])
}

func TestWebsiteJsonLD(t *testing.T) {
	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(WebsiteJsonLD(SiteMetadata{Title: "Site", Description: "d"})), &data))
	assert.Equal(t, "WebSite", data["@type"])
	assert.Equal(t, "Site", data["name"])
	assert.NotContains(t, data, "url")
}
