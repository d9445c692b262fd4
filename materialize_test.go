package pubsite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubsite/logging"
)

func newTestMaterializer(r ImageResolver) *Materializer {
	return &Materializer{
		Site:     SiteMetadata{Title: "Site", Description: "Default description"},
		Resolver: r,
		Layout:   ConstrainedLayout(800),
		Workers:  4,
		Logger:   logging.Discard(),
	}
}

func routes(pages []PageDescriptor) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.RoutePath
	}
	return out
}

func threePosts() []ContentRecord {
	return []ContentRecord{
		record("1", "first", "First", day(1)),
		record("2", "second", "Second", day(2)),
		record("3", "third", "Third", day(3)),
	}
}

func TestMaterializePages(t *testing.T) {
	pages, err := newTestMaterializer(nil).Materialize(context.Background(), NewContentIndex(threePosts()...))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/", "/about/", "/blog/",
		"/blog/third/", "/blog/second/", "/blog/first/",
		"/404.html",
	}, routes(pages))

	kinds := map[RenderKind]int{}
	seen := map[string]bool{}
	for _, p := range pages {
		kinds[p.Kind]++
		assert.False(t, seen[p.RoutePath], "duplicate route %s", p.RoutePath)
		seen[p.RoutePath] = true
		assert.NotEmpty(t, p.Seo.TitleText, p.RoutePath)
	}
	assert.Equal(t, map[RenderKind]int{KindHome: 1, KindAbout: 1, KindBlogIndex: 1, KindBlogDetail: 3, KindNotFound: 1}, kinds)

	index := pages[2]
	assert.Equal(t, KindBlogIndex, index.Kind)
	assert.Equal(t, []string{"3", "2", "1"}, ids(index.Posts))
	assert.Equal(t, "Blog | Site", index.Seo.TitleText)

	detail := pages[3]
	require.NotNil(t, detail.Post)
	assert.Equal(t, "3", detail.Post.ID)
	assert.Nil(t, detail.Images)
	assert.Equal(t, "Third | Site", detail.Seo.TitleText)
	assert.Equal(t, "Default description", detail.Seo.DescriptionText)

	assert.Equal(t, "Site", pages[0].Seo.TitleText)
	assert.Equal(t, "404 Page | Site", pages[6].Seo.TitleText)
}

func TestMaterializeRemovingPost(t *testing.T) {
	posts := threePosts()
	m := newTestMaterializer(nil)
	before, err := m.Materialize(context.Background(), NewContentIndex(posts...))
	require.NoError(t, err)
	after, err := m.Materialize(context.Background(), NewContentIndex(posts[0], posts[2]))
	require.NoError(t, err)

	var removed []string
	afterRoutes := map[string]bool{}
	for _, r := range routes(after) {
		afterRoutes[r] = true
	}
	for _, r := range routes(before) {
		if !afterRoutes[r] {
			removed = append(removed, r)
		}
	}
	assert.Equal(t, []string{"/blog/second/"}, removed)
	assert.Len(t, after, len(before)-1)
	assert.Equal(t, []string{"3", "1"}, ids(after[2].Posts))
}

func TestMaterializeRouteCollision(t *testing.T) {
	ix := NewContentIndex(record("1", "same", "A", day(1)), record("2", "same", "B", day(2)))
	_, err := newTestMaterializer(nil).Materialize(context.Background(), ix)
	require.ErrorIs(t, err, ErrRouteCollision)

	var rc *RouteCollisionError
	require.ErrorAs(t, err, &rc)
	assert.Equal(t, "/blog/same/", rc.Route)
}

func TestMaterializeImages(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	writePNG(t, good, 400, 300)

	posts := threePosts()
	posts[0].Derived.ImageSource = good
	posts[1].Derived.ImageSource = filepath.Join(dir, "missing.png")
	posts[2].Derived.ImageSource = good

	r := newTestResolver(t, t.TempDir(), nil)
	pages, err := newTestMaterializer(r).Materialize(context.Background(), NewContentIndex(posts...))
	require.NoError(t, err, "a missing image is not fatal")

	byRoute := map[string]PageDescriptor{}
	for _, p := range pages {
		byRoute[p.RoutePath] = p
	}
	require.NotNil(t, byRoute["/blog/first/"].Images)
	require.NotNil(t, byRoute["/blog/third/"].Images)
	assert.Nil(t, byRoute["/blog/second/"].Images)
	assert.Same(t, byRoute["/blog/first/"].Images, byRoute["/blog/third/"].Images)
	assert.Equal(t, int64(1), r.Computed())
}

type failingResolver struct{ err error }

func (f failingResolver) Resolve(context.Context, string, Layout) (*ImageVariantSet, error) {
	return nil, f.err
}

func TestMaterializeResolverFailureIsFatal(t *testing.T) {
	posts := threePosts()
	posts[1].Derived.ImageSource = "/whatever.png"
	boom := errors.New("disk full")

	_, err := newTestMaterializer(failingResolver{err: boom}).Materialize(context.Background(), NewContentIndex(posts...))
	assert.ErrorIs(t, err, boom)

	pages, err := newTestMaterializer(failingResolver{err: &ImageResolutionError{Source: "x", Err: boom}}).
		Materialize(context.Background(), NewContentIndex(posts...))
	require.NoError(t, err)
	assert.Len(t, pages, 7)
}

func TestDetailRoute(t *testing.T) {
	assert.Equal(t, "/blog/2021/hello/", DetailRoute("2021/hello"))
}
