package views

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite"
)

// Layout wraps body in the shared chrome: head metadata, header navigation,
// and footer.
func Layout(site pubsite.SiteMetadata, seo pubsite.SeoMetadata, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.WriteString("<title>" + templ.EscapeString(seo.TitleText) + "</title>")
		for _, tag := range seo.SocialTags {
			if tag.Property != "" {
				b.WriteString(`<meta property="` + templ.EscapeString(tag.Property) + `"`)
			} else {
				b.WriteString(`<meta name="` + templ.EscapeString(tag.Name) + `"`)
			}
			b.WriteString(` content="` + templ.EscapeString(tag.Content) + `">`)
		}
		if seo.Icon.Href != "" {
			b.WriteString(`<link rel="` + seo.Icon.Rel + `" type="` + templ.EscapeString(seo.Icon.Type) + `" href="` + templ.EscapeString(seo.Icon.Href) + `">`)
		}
		if seo.CanonicalURL != "" {
			b.WriteString(`<link rel="canonical" href="` + templ.EscapeString(seo.CanonicalURL) + `">`)
		}
		if site.URL != "" {
			b.WriteString(`<link rel="alternate" type="application/rss+xml" title="` + templ.EscapeString(site.Title) + `" href="/feed.xml">`)
		}
		b.WriteString(`<link rel="stylesheet" href="/style.css">`)
		if seo.JSONLD != "" {
			// json.Marshal escapes '<', so the payload cannot close the script.
			b.WriteString(`<script type="application/ld+json">` + seo.JSONLD + `</script>`)
		}
		b.WriteString(`</head><body><div class="site"><header class="site-header">`)
		b.WriteString(`<a class="site-title" href="/">` + templ.EscapeString(site.Title) + `</a>`)
		b.WriteString(`<nav><a href="/blog/">Blog</a><a href="/about/">About</a></nav></header><main>`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}

		if err := body.Render(ctx, w); err != nil {
			return err
		}

		b.Reset()
		b.WriteString(`</main><footer class="site-footer">© ` + templ.EscapeString(footerName(site)))
		b.WriteString("</footer></div></body></html>\n")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func footerName(site pubsite.SiteMetadata) string {
	if site.Author != "" {
		return site.Author
	}
	return site.Title
}

// html adapts a string-building function to a templ component.
func html(build func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		build(&b)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
