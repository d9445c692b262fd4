// Package views is the default set of page components for pubsite.
package views

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/markdown"
)

// recentPosts is how many posts the home page lists.
const recentPosts = 5

// Default returns a ViewFuncs wired to the components in this package.
func Default() pubsite.ViewFuncs {
	return pubsite.ViewFuncs{
		Home:       Home,
		About:      About,
		BlogIndex:  BlogIndex,
		BlogDetail: BlogDetail,
		NotFound:   NotFound,
	}
}

func Home(site pubsite.SiteMetadata, page pubsite.PageDescriptor) templ.Component {
	posts := page.Posts
	if len(posts) > recentPosts {
		posts = posts[:recentPosts]
	}
	return Layout(site, page.Seo, html(func(b *strings.Builder) {
		b.WriteString(`<section class="intro"><h1>Hello There</h1>`)
		if site.Description != "" {
			b.WriteString("<p>" + templ.EscapeString(site.Description) + "</p>")
		}
		b.WriteString("</section>")
		if len(posts) > 0 {
			b.WriteString("<h2>Recent posts</h2>")
			writePostList(b, Summarize(posts))
			b.WriteString(`<p><a href="/blog/">All posts</a></p>`)
		}
	}))
}

func About(site pubsite.SiteMetadata, page pubsite.PageDescriptor) templ.Component {
	return Layout(site, page.Seo, html(func(b *strings.Builder) {
		b.WriteString("<h1>About</h1>")
		if site.Description != "" {
			b.WriteString("<p>" + templ.EscapeString(site.Description) + "</p>")
		} else {
			b.WriteString("<p>Nothing to see here yet.</p>")
		}
	}))
}

// BlogIndex lists every post, newest first.
func BlogIndex(site pubsite.SiteMetadata, page pubsite.PageDescriptor) templ.Component {
	return Layout(site, page.Seo, html(func(b *strings.Builder) {
		b.WriteString("<h1>Blog</h1>")
		if len(page.Posts) == 0 {
			b.WriteString("<p>No posts yet.</p>")
			return
		}
		writePostList(b, Summarize(page.Posts))
	}))
}

// BlogDetail renders one article: hero image when resolved, title, date,
// reading time, body, and related posts.
func BlogDetail(site pubsite.SiteMetadata, page pubsite.PageDescriptor) templ.Component {
	post := page.Post
	head := html(func(b *strings.Builder) {
		b.WriteString("<article>")
		if page.Images != nil {
			b.WriteString(Picture(page.Images, post.Frontmatter.ImageAlt))
		}
		b.WriteString("<h1>" + templ.EscapeString(post.Frontmatter.Title) + "</h1>")
		writeMeta(b, FormatDate(post.Frontmatter.Date), post.Derived.ReadingTimeLabel)
		if len(post.Frontmatter.Tags) > 0 {
			b.WriteString(`<p class="tags">`)
			for _, t := range post.Frontmatter.Tags {
				b.WriteString("<span>#" + templ.EscapeString(t) + "</span> ")
			}
			b.WriteString("</p>")
		}
		b.WriteString(`<div class="post-body">`)
	})
	tail := html(func(b *strings.Builder) {
		b.WriteString("</div></article>")
		if len(page.Posts) > 0 {
			b.WriteString("<aside><h2>Related posts</h2>")
			writePostList(b, Summarize(page.Posts))
			b.WriteString("</aside>")
		}
	})
	return Layout(site, page.Seo, templ.Join(head, markdown.Markdown(post.Body), tail))
}

func NotFound(site pubsite.SiteMetadata, page pubsite.PageDescriptor) templ.Component {
	return Layout(site, page.Seo, html(func(b *strings.Builder) {
		b.WriteString("<h1>Page not found</h1>")
		b.WriteString(`<p>Nothing to see here. <a href="/">Go home</a>.</p>`)
	}))
}

func writePostList(b *strings.Builder, posts []PostSummary) {
	b.WriteString(`<ul class="post-list">`)
	for _, p := range posts {
		b.WriteString(`<li><a href="` + templ.EscapeString(p.URL) + `">` + templ.EscapeString(p.Title) + "</a>")
		writeMeta(b, p.Date, p.ReadingTime)
		if p.Description != "" {
			b.WriteString("<p>" + templ.EscapeString(p.Description) + "</p>")
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
}

func writeMeta(b *strings.Builder, date, readingTime string) {
	b.WriteString(`<p class="post-meta">` + templ.EscapeString(date))
	if readingTime != "" {
		b.WriteString(" · " + templ.EscapeString(readingTime))
	}
	b.WriteString("</p>")
}
