// Package pubsite builds a static personal blog from a directory of Markdown
// articles. It validates and indexes the articles, derives reading times and
// responsive image variants, materializes every page with its SEO metadata,
// and renders the pages through user-provided templ components.
//
// Users provide their own templ components via the ViewFuncs struct; the
// views package ships a default set.
package pubsite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

// imagesURLPrefix is where image variants are published in the output.
const imagesURLPrefix = "/images/"

// PageView renders one page inside the site chrome.
type PageView func(site SiteMetadata, page PageDescriptor) templ.Component

// ViewFuncs holds one component per render kind. The builder calls the
// matching view for every materialized page.
type ViewFuncs struct {
	Home       PageView
	About      PageView
	BlogIndex  PageView
	BlogDetail PageView
	NotFound   PageView
}

// Builder runs the content pipeline and writes the site to Config.OutputDir.
// Builds are serialized; a Builder can be reused for repeated builds.
type Builder struct {
	Config SiteConfig
	Views  ViewFuncs
	Store  *Store

	logger   *slog.Logger
	resolver ImageResolver
	images   *Resolver // the default resolver, nil when WithResolver was used
	now      func() time.Time

	mu sync.Mutex
}

// BuildResult summarizes a successful build.
type BuildResult struct {
	OutputDir      string
	Pages          []PageDescriptor
	Posts          int
	ImagesComputed int64
	Bytes          int64
	Duration       time.Duration
}

// Summary is a one-line human description of the build.
func (r *BuildResult) Summary() string {
	return fmt.Sprintf("%d pages (%d posts), %s in %s, %d images processed",
		len(r.Pages), r.Posts, humanize.Bytes(uint64(r.Bytes)), r.Duration.Round(time.Millisecond), r.ImagesComputed)
}

// New creates a Builder with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *Builder {
	cfg.setDefaults()

	b := &Builder{
		Config: cfg,
		Views:  views,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// open lazily creates the manifest store and default resolver.
func (b *Builder) open() error {
	if b.resolver != nil {
		return nil
	}
	store, err := NewStore(filepath.Join(b.Config.CacheDir, "manifest.db"))
	if err != nil {
		return fmt.Errorf("pubsite: init store: %w", err)
	}
	b.Store = store
	b.images = NewResolver(b.Config.CacheDir, imagesURLPrefix, store, b.logger)
	b.resolver = b.images
	return nil
}

// Build runs the whole pipeline. The new site is assembled in a staging
// directory next to OutputDir and swapped in only when every stage succeeds;
// on failure the previous output is left untouched.
func (b *Builder) Build(ctx context.Context) (*BuildResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	if err := b.open(); err != nil {
		return nil, err
	}
	var computedBefore int64
	if b.images != nil {
		b.images.beginBuild()
		computedBefore = b.images.Computed()
	}

	ix, err := NewIndexer(b.Config, b.logger).Build(ctx, b.Config.ContentDir)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}

	m := &Materializer{
		Site:     b.Config.Metadata(),
		Resolver: b.resolver,
		Layout:   b.Config.ImageLayout(),
		Workers:  b.Config.Workers,
		Logger:   b.logger,
	}
	pages, err := m.Materialize(ctx, ix)
	if err != nil {
		return nil, fmt.Errorf("materialize: %w", err)
	}
	b.logger.Info("materialized pages", "pages", len(pages), "posts", ix.Len())

	out, err := filepath.Abs(b.Config.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, err
	}
	staging, err := os.MkdirTemp(filepath.Dir(out), "."+filepath.Base(out)+"-staging-")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging) // no-op once swapped
	if err := os.Chmod(staging, 0o755); err != nil {
		return nil, err
	}

	if err := b.writeSite(ctx, staging, pages, ix); err != nil {
		return nil, err
	}
	size, err := dirSize(staging)
	if err != nil {
		return nil, err
	}
	if err := swapDir(staging, out); err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}

	if b.images != nil {
		if n, err := b.images.Prune(); err != nil {
			b.logger.Warn("pruning image cache failed", "err", err)
		} else if n > 0 {
			kept, _ := b.Store.CountDerivatives()
			b.logger.Info("pruned image cache", "removed", n, "kept", kept)
		}
	}

	res := &BuildResult{
		OutputDir: out,
		Pages:     pages,
		Posts:     ix.Len(),
		Bytes:     size,
		Duration:  time.Since(start),
	}
	if b.images != nil {
		res.ImagesComputed = b.images.Computed() - computedBefore
	}
	b.logger.Info("build complete", "output", out, "summary", res.Summary())
	return res, nil
}

func (b *Builder) writeSite(ctx context.Context, root string, pages []PageDescriptor, ix *ContentIndex) error {
	embedded, _ := fs.Sub(EmbeddedAssets, "embedded")
	if err := copyTree(embedded, root); err != nil {
		return fmt.Errorf("copy embedded assets: %w", err)
	}
	if _, err := os.Stat(b.Config.StaticDir); err == nil {
		if err := copyTree(os.DirFS(b.Config.StaticDir), root); err != nil {
			return fmt.Errorf("copy static: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := b.copyVariants(root, pages); err != nil {
		return fmt.Errorf("copy image variants: %w", err)
	}

	site := b.Config.Metadata()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.Config.Workers)
	for _, page := range pages {
		g.Go(func() error {
			if err := renderPage(gctx, root, site, b.Views, page); err != nil {
				return fmt.Errorf("render %s: %w", page.RoutePath, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	b.logger.Debug("rendered pages", "count", len(pages))

	if site.URL == "" {
		b.logger.Warn("url is not configured, skipping sitemap.xml and feed.xml")
		return nil
	}
	if err := writeOutput(root, "sitemap.xml", func(w io.Writer) error {
		return writeSitemap(w, site.URL, pages)
	}); err != nil {
		return err
	}
	return writeOutput(root, "feed.xml", func(w io.Writer) error {
		return writeFeed(w, site, ix.ListPosts(DateDescending), b.now())
	})
}

// copyVariants publishes the variant files referenced by pages. Only the
// default resolver's files are known; a custom resolver publishes its own.
func (b *Builder) copyVariants(root string, pages []PageDescriptor) error {
	if b.images == nil {
		return nil
	}
	src := os.DirFS(b.images.Dir())
	dst := filepath.Join(root, filepath.FromSlash(imagesURLPrefix))
	copied := make(map[string]bool)
	for _, p := range pages {
		if p.Images == nil {
			continue
		}
		for _, v := range p.Images.Variants {
			if copied[v.File] {
				continue
			}
			copied[v.File] = true
			if err := copyFile(src, v.File, filepath.Join(dst, v.File)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clean removes the output and cache directories.
func (b *Builder) Clean() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Store != nil {
		b.Store.Close()
		b.Store = nil
		b.resolver, b.images = nil, nil
	}
	for _, dir := range []string{b.Config.OutputDir, b.Config.CacheDir} {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
		b.logger.Info("removed", "dir", dir)
	}
	return nil
}

// Close cleans up resources. Call this when the builder is no longer needed.
func (b *Builder) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Store != nil {
		return b.Store.Close()
	}
	return nil
}

// swapDir replaces dst with src. The old tree is moved aside first so dst is
// never observed half-written.
func swapDir(src, dst string) error {
	old := ""
	if _, err := os.Stat(dst); err == nil {
		old = dst + ".old-" + strconv.FormatInt(time.Now().UnixNano(), 36)
		if err := os.Rename(dst, old); err != nil {
			return err
		}
	}
	if err := os.Rename(src, dst); err != nil {
		if old != "" {
			_ = os.Rename(old, dst)
		}
		return err
	}
	if old != "" {
		return os.RemoveAll(old)
	}
	return nil
}

func dirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}
