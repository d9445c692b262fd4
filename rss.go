package pubsite

import (
	"encoding/xml"
	"io"
	"time"

	"github.com/eringen/pubsite/markdown"
)

// feedExcerptWords bounds the item description of posts without one.
const feedExcerptWords = 40

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category"`
}

// writeFeed writes an RSS 2.0 feed of posts, which are expected newest first.
func writeFeed(w io.Writer, site SiteMetadata, posts []ContentRecord, now time.Time) error {
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := BuildURL(site.URL, DetailRoute(p.Slug))
		description := p.Frontmatter.Description
		if description == "" {
			description = markdown.Excerpt(p.Body, feedExcerptWords)
		}
		items = append(items, rssItem{
			Title:       p.Frontmatter.Title,
			Link:        postURL,
			Description: description,
			PubDate:     p.Frontmatter.Date.Format(time.RFC1123Z),
			GUID:        postURL,
			Categories:  p.Frontmatter.Tags,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:         site.Title,
			Link:          BuildURL(site.URL, RouteHome),
			Description:   site.Description,
			LastBuildDate: now.UTC().Format(time.RFC1123Z),
			Items:         items,
		},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(feed)
}
