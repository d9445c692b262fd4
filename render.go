package pubsite

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"
)

// OutputPath maps a route to a file path relative to the output root:
// "/" is index.html, "/x/" is x/index.html, and "/404.html" stays 404.html.
func OutputPath(route string) string {
	route = strings.TrimPrefix(route, "/")
	if route == "" || strings.HasSuffix(route, "/") {
		route += "index.html"
	}
	return filepath.FromSlash(route)
}

// component picks the view for the page's kind.
func (v ViewFuncs) component(site SiteMetadata, page PageDescriptor) (templ.Component, error) {
	var view PageView
	switch page.Kind {
	case KindHome:
		view = v.Home
	case KindAbout:
		view = v.About
	case KindBlogIndex:
		view = v.BlogIndex
	case KindBlogDetail:
		view = v.BlogDetail
	case KindNotFound:
		view = v.NotFound
	}
	if view == nil {
		return nil, fmt.Errorf("no view for %s pages", page.Kind)
	}
	return view(site, page), nil
}

// Render writes a templ component to w.
func Render(ctx context.Context, w io.Writer, cmp templ.Component) error {
	bw := bufio.NewWriter(w)
	if err := cmp.Render(ctx, bw); err != nil {
		return err
	}
	return bw.Flush()
}

// renderPage writes one page under root.
func renderPage(ctx context.Context, root string, site SiteMetadata, views ViewFuncs, page PageDescriptor) error {
	cmp, err := views.component(site, page)
	if err != nil {
		return err
	}
	return writeOutput(root, OutputPath(page.RoutePath), func(w io.Writer) error {
		return Render(ctx, w, cmp)
	})
}

// writeOutput creates root/rel and fills it through write.
func writeOutput(root, rel string, write func(io.Writer) error) error {
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return f.Close()
}

// copyTree copies every file of src into dst, creating directories as needed.
func copyTree(src fs.FS, dst string) error {
	return fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(src, p, target)
	})
}

func copyFile(src fs.FS, name, target string) error {
	in, err := src.Open(name)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", name, err)
	}
	return out.Close()
}
