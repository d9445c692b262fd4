package pubsite

import (
	"encoding/xml"
	"io"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// writeSitemap lists every routable page; the not-found page is left out.
func writeSitemap(w io.Writer, base string, pages []PageDescriptor) error {
	urls := make([]sitemapURL, 0, len(pages))
	for _, p := range pages {
		if p.Kind == KindNotFound {
			continue
		}
		u := sitemapURL{Loc: BuildURL(base, p.RoutePath)}
		if p.Post != nil {
			u.LastMod = p.Post.Frontmatter.Date.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(sitemap)
}
