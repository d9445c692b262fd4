package pubsite

import (
	"mime"
	"path"
	"strings"
)

// ogType is declared on every page, articles included.
const ogType = "website"

// BuildSeo assembles the head metadata for one page. It is pure: the same
// site and page always produce the same result.
func BuildSeo(site SiteMetadata, page PageContext) SeoMetadata {
	title := page.Title
	titleText := site.Title
	if title != "" {
		titleText = title + " | " + site.Title
	} else {
		title = site.Title
	}

	description := page.Description
	if description == "" {
		description = site.Description
	}

	tags := []MetaTag{
		{Name: "description", Content: description},
		{Property: "og:title", Content: title},
		{Property: "og:description", Content: description},
		{Property: "og:type", Content: ogType},
	}

	var canonical string
	if site.URL != "" {
		canonical = BuildURL(site.URL, page.Path)
		tags = append(tags, MetaTag{Property: "og:url", Content: canonical})
	}

	if handle := strings.TrimPrefix(strings.TrimSpace(site.SocialHandle), "@"); handle != "" {
		tags = append(tags,
			MetaTag{Name: "twitter:card", Content: "summary"},
			MetaTag{Name: "twitter:creator", Content: "@" + handle},
			MetaTag{Name: "twitter:title", Content: title},
			MetaTag{Name: "twitter:description", Content: description},
		)
	}

	jsonLD := WebsiteJsonLD(site)
	if page.Post != nil {
		jsonLD = BlogPostingJsonLD(*page.Post, site, description)
	}

	return SeoMetadata{
		TitleText:       titleText,
		DescriptionText: description,
		SocialTags:      tags,
		Icon:            iconReference(site.Icon),
		CanonicalURL:    canonical,
		JSONLD:          jsonLD,
	}
}

func iconReference(href string) IconReference {
	typ := mime.TypeByExtension(path.Ext(href))
	if i := strings.IndexByte(typ, ';'); i >= 0 {
		typ = typ[:i]
	}
	if typ == "" {
		typ = "image/png"
	}
	return IconReference{Rel: "shortcut icon", Type: typ, Href: href}
}
