package pubsite

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify converts a string to a slug. Accents are folded
// ("Crème Brûlée" -> "creme-brulee"), letters and digits of any script are
// kept lower-cased ("Привет" -> "привет"), and every run of separators or
// punctuation collapses to a single '-'. Callers percent-encode at the URL
// boundary.
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err == nil {
		s = folded
	}
	var b strings.Builder
	prev := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// SlugFromPath derives a route slug from a source path relative to the content
// directory. The extension and a trailing "index" segment are dropped and every
// remaining segment is slugified, so "2021/Hello World/index.mdx" becomes
// "2021/hello-world".
func SlugFromPath(rel string) string {
	rel = strings.ReplaceAll(rel, "\\", "/")
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	segments := strings.Split(rel, "/")
	if n := len(segments); n > 0 && strings.EqualFold(segments[n-1], "index") {
		segments = segments[:n-1]
	}
	var out []string
	for _, seg := range segments {
		if s := Slugify(seg); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "/")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") && path.Ext(u.Path) == "" {
		u.Path += "/"
	}
	return u.String()
}

// RelatedPosts finds posts that share at least one tag with current.
func RelatedPosts(current ContentRecord, posts []ContentRecord) []ContentRecord {
	tagSet := make(map[string]struct{})
	for _, t := range current.Frontmatter.Tags {
		tagSet[t] = struct{}{}
	}
	if len(tagSet) == 0 {
		return nil
	}
	var related []ContentRecord
	for _, p := range posts {
		if p.ID == current.ID {
			continue
		}
		for _, t := range p.Frontmatter.Tags {
			if _, ok := tagSet[t]; ok {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema.
func WebsiteJsonLD(site SiteMetadata) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        site.Title,
		"description": site.Description,
	}
	if site.URL != "" {
		data["url"] = BuildURL(site.URL)
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post ContentRecord, site SiteMetadata, description string) string {
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Frontmatter.Title,
		"description":   description,
		"datePublished": post.Frontmatter.Date.Format("2006-01-02"),
	}
	if site.URL != "" {
		postURL := BuildURL(site.URL, blogPrefix, post.Slug)
		data["url"] = postURL
		data["mainEntityOfPage"] = map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		}
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	if site.Title != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  site.Title,
		}
	}
	if len(post.Frontmatter.Tags) > 0 {
		data["keywords"] = strings.Join(post.Frontmatter.Tags, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
