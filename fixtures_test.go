package pubsite

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFile creates dir/rel with content, making parent directories.
func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writePNG writes a w x h gradient PNG to path.
func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

// article renders a YAML-frontmatter source file. extra lines are added to
// the metadata block verbatim.
func article(title, date, body string, extra ...string) string {
	var b strings.Builder
	b.WriteString("---\n")
	if title != "" {
		b.WriteString("title: " + title + "\n")
	}
	if date != "" {
		b.WriteString("date: " + date + "\n")
	}
	for _, line := range extra {
		b.WriteString(line + "\n")
	}
	b.WriteString("---\n")
	b.WriteString(body)
	return b.String()
}

// words returns n space-separated words.
func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}
