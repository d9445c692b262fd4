package views

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite"
)

// FormatDate renders a post date the way listings show it: "January 2, 2006".
func FormatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

// PathEscape percent-encodes a route path for an href, keeping its slashes.
func PathEscape(route string) string {
	return (&url.URL{Path: route}).EscapedPath()
}

// JoinTags formats a tag slice as a comma-separated string.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// imageSizes tells the browser how wide the constrained image is displayed.
func imageSizes(set *pubsite.ImageVariantSet) string {
	w := set.Fallback().Width
	return "(min-width: " + strconv.Itoa(w) + "px) " + strconv.Itoa(w) + "px, 100vw"
}

// Picture renders a responsive <picture> for set, with one <source> per
// extra format and the blur placeholder as background while loading.
func Picture(set *pubsite.ImageVariantSet, alt string) string {
	formats := set.Formats()
	if len(formats) == 0 {
		return ""
	}
	var b strings.Builder
	fallback := set.Fallback()
	sizes := imageSizes(set)

	b.WriteString("<picture>")
	for _, f := range formats[1:] {
		b.WriteString(`<source type="image/` + string(f) + `" srcset="` + templ.EscapeString(set.SrcSet(f)) + `" sizes="` + sizes + `">`)
	}
	b.WriteString(`<img class="post-hero" src="` + templ.EscapeString(fallback.URL) + `"`)
	b.WriteString(` srcset="` + templ.EscapeString(set.SrcSet(formats[0])) + `" sizes="` + sizes + `"`)
	b.WriteString(` width="` + strconv.Itoa(fallback.Width) + `" height="` + strconv.Itoa(fallback.Height) + `"`)
	b.WriteString(` alt="` + templ.EscapeString(alt) + `" decoding="async"`)
	if set.Placeholder.DataURI != "" {
		b.WriteString(` style="background-image: url('` + set.Placeholder.DataURI + `')"`)
	}
	b.WriteString("></picture>")
	return b.String()
}
