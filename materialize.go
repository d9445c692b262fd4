package pubsite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const blogPrefix = "blog"

// Fixed routes.
const (
	RouteHome      = "/"
	RouteAbout     = "/about/"
	RouteBlogIndex = "/" + blogPrefix + "/"
	RouteNotFound  = "/404.html"
)

// DetailRoute returns the route of the detail page for slug.
func DetailRoute(slug string) string {
	return "/" + blogPrefix + "/" + slug + "/"
}

// Materializer maps a ContentIndex to the full set of output pages.
type Materializer struct {
	Site     SiteMetadata
	Resolver ImageResolver // nil disables image resolution
	Layout   Layout
	Workers  int
	Logger   *slog.Logger
}

// Materialize returns every page of the site: home, about, the blog index,
// one detail page per record in date-descending order, and the not-found
// page. Any two pages sharing a route is a *RouteCollisionError.
func (m *Materializer) Materialize(ctx context.Context, ix *ContentIndex) ([]PageDescriptor, error) {
	posts := ix.ListPosts(DateDescending)

	images, err := m.resolveImages(ctx, posts)
	if err != nil {
		return nil, err
	}

	pages := []PageDescriptor{
		{RoutePath: RouteHome, Kind: KindHome, Posts: posts},
		{RoutePath: RouteAbout, Kind: KindAbout},
		{RoutePath: RouteBlogIndex, Kind: KindBlogIndex, Posts: posts},
	}
	for i := range posts {
		pages = append(pages, PageDescriptor{
			RoutePath: DetailRoute(posts[i].Slug),
			Kind:      KindBlogDetail,
			Post:      &posts[i],
			Posts:     RelatedPosts(posts[i], posts),
			Images:    images[i],
		})
	}
	pages = append(pages, PageDescriptor{RoutePath: RouteNotFound, Kind: KindNotFound})

	owners := make(map[string]RenderKind, len(pages))
	for i := range pages {
		p := &pages[i]
		if first, ok := owners[p.RoutePath]; ok {
			return nil, &RouteCollisionError{Route: p.RoutePath, First: first, Second: p.Kind}
		}
		owners[p.RoutePath] = p.Kind
		p.Seo = BuildSeo(m.Site, pageContext(p))
	}
	return pages, nil
}

// resolveImages resolves every post image in parallel. The result is indexed
// like posts; a nil entry means the post renders without an image.
func (m *Materializer) resolveImages(ctx context.Context, posts []ContentRecord) ([]*ImageVariantSet, error) {
	images := make([]*ImageVariantSet, len(posts))
	if m.Resolver == nil {
		return images, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers())
	for i, post := range posts {
		if post.Derived.ImageSource == "" {
			continue
		}
		g.Go(func() error {
			set, err := m.Resolver.Resolve(gctx, post.Derived.ImageSource, m.Layout)
			var resErr *ImageResolutionError
			switch {
			case errors.As(err, &resErr):
				m.logger().Warn("image unavailable, rendering without it",
					"post", post.SourcePath, "image", post.Frontmatter.Image, "err", resErr.Err)
				return nil
			case err != nil:
				return fmt.Errorf("resolve image for %s: %w", post.SourcePath, err)
			}
			images[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func pageContext(p *PageDescriptor) PageContext {
	ctx := PageContext{Path: p.RoutePath}
	switch p.Kind {
	case KindAbout:
		ctx.Title = "About"
	case KindBlogIndex:
		ctx.Title = "Blog"
	case KindNotFound:
		ctx.Title = "404 Page"
	case KindBlogDetail:
		ctx.Title = p.Post.Frontmatter.Title
		ctx.Description = p.Post.Frontmatter.Description
		ctx.Post = p.Post
	}
	return ctx
}

func (m *Materializer) workers() int {
	if m.Workers > 0 {
		return m.Workers
	}
	return runtime.NumCPU()
}

func (m *Materializer) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}
