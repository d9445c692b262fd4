package pubsite

import "time"

// Frontmatter is the validated metadata block of one article.
type Frontmatter struct {
	Title       string
	Date        time.Time // calendar date, midnight UTC
	Image       string    // reference as authored; empty when absent
	ImageAlt    string
	Description string
	Tags        []string
	Draft       bool

	// Extra holds fields the schema does not know about, untouched.
	Extra map[string]any
}

// DerivedFields are computed at ingestion, never authored.
type DerivedFields struct {
	WordCount               int
	EstimatedReadingMinutes float64
	ReadingTimeLabel        string // empty when no badge should render
	ImageSource             string // resolved filesystem path of Frontmatter.Image
}

// HasReadingTime reports whether a reading-time badge should render.
func (d DerivedFields) HasReadingTime() bool {
	return d.ReadingTimeLabel != ""
}

// ContentRecord is one article. It is immutable once the indexer returns it.
type ContentRecord struct {
	ID          string
	Slug        string
	SourcePath  string // relative to the content directory, slash-separated
	Frontmatter Frontmatter
	Body        []byte
	Derived     DerivedFields
}

// RenderKind tags a page with the shell the renderer should use.
type RenderKind string

const (
	KindHome       RenderKind = "home"
	KindAbout      RenderKind = "about"
	KindBlogIndex  RenderKind = "blogIndex"
	KindBlogDetail RenderKind = "blogDetail"
	KindNotFound   RenderKind = "notFound"
)

// PageDescriptor is one output route.
type PageDescriptor struct {
	RoutePath string
	Kind      RenderKind

	// Post is set for blogDetail pages, Posts for blogIndex pages.
	Post   *ContentRecord
	Posts  []ContentRecord
	Images *ImageVariantSet // blogDetail only, nil when the post has no usable image

	Seo SeoMetadata
}

// SiteMetadata is the process-wide identity of the site.
type SiteMetadata struct {
	Title        string
	Description  string
	SocialHandle string
	Author       string
	URL          string
	Icon         string
}

// PageContext is what a single page contributes to its SEO metadata.
type PageContext struct {
	Title       string
	Description string
	Path        string
	Post        *ContentRecord
}

// MetaTag is a single <meta> element. Exactly one of Name or Property is set.
type MetaTag struct {
	Name     string
	Property string
	Content  string
}

// IconReference is the favicon <link>.
type IconReference struct {
	Rel  string
	Type string
	Href string
}

// SeoMetadata carries per-page discovery metadata into the <head> template.
type SeoMetadata struct {
	TitleText       string
	DescriptionText string
	SocialTags      []MetaTag
	Icon            IconReference
	CanonicalURL    string
	JSONLD          string
}
