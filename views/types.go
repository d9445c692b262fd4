package views

import (
	"github.com/eringen/pubsite"
)

// PostSummary is what a listing shows for one post.
type PostSummary struct {
	Title       string
	URL         string
	Date        string
	ReadingTime string // empty when the post is too short for a badge
	Description string
	Tags        []string
}

// Summarize converts records to listing entries, preserving order.
func Summarize(posts []pubsite.ContentRecord) []PostSummary {
	out := make([]PostSummary, 0, len(posts))
	for _, p := range posts {
		out = append(out, PostSummary{
			Title:       p.Frontmatter.Title,
			URL:         PathEscape(pubsite.DetailRoute(p.Slug)),
			Date:        FormatDate(p.Frontmatter.Date),
			ReadingTime: p.Derived.ReadingTimeLabel,
			Description: p.Frontmatter.Description,
			Tags:        p.Frontmatter.Tags,
		})
	}
	return out
}
