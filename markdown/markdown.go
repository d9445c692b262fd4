// Package markdown renders article bodies to HTML and measures their length.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	stdhtml "html"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
		parser.WithASTTransformers(util.Prioritized(mediaTransformer{}, 100)),
	),
	goldmark.WithRendererOptions(
		renderer.WithNodeRenderers(util.Prioritized(codeBlockRenderer{}, 100)),
	),
)

// Markdown returns a templ.Component that renders src as HTML.
func Markdown(src []byte) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Render(w, src)
	})
}

// Render writes the HTML representation of src to w. Raw HTML in the
// source is omitted.
func Render(w io.Writer, src []byte) error {
	return md.Convert(src, w)
}

// PlainText returns the readable text of src with markup removed and
// whitespace collapsed. Code blocks are included; raw HTML is not.
func PlainText(src []byte) string {
	doc := md.Parser().Parse(text.NewReader(src))
	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				buf.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Text:
			buf.Write(n.Segment.Value(src))
			if n.SoftLineBreak() || n.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(n.Value)
		case *ast.AutoLink:
			buf.Write(n.Label(src))
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(buf.String()), " ")
}

// WordCount counts the whitespace-separated words of PlainText(src).
func WordCount(src []byte) int {
	return len(strings.Fields(PlainText(src)))
}

// Excerpt returns the first n words of the body, with an ellipsis when cut.
func Excerpt(src []byte, n int) string {
	words := strings.Fields(PlainText(src))
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "…"
}

// mediaTransformer loads the first image eagerly and the rest lazily, and
// opens external links in a new tab.
type mediaTransformer struct{}

func (mediaTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	images := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Image:
			if images == 0 {
				n.SetAttributeString("loading", []byte("eager"))
			} else {
				n.SetAttributeString("loading", []byte("lazy"))
			}
			n.SetAttributeString("decoding", []byte("async"))
			images++
		case *ast.Link:
			if isExternal(string(n.Destination)) {
				n.SetAttributeString("target", []byte("_blank"))
				n.SetAttributeString("rel", []byte("noopener noreferrer"))
			}
		}
		return ast.WalkContinue, nil
	})
}

func isExternal(dest string) bool {
	return strings.HasPrefix(dest, "http://") || strings.HasPrefix(dest, "https://")
}

// codeBlockRenderer wraps fenced code with a language badge.
type codeBlockRenderer struct{}

func (r codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	lang := stdhtml.EscapeString(string(n.Language(source)))
	if lang != "" {
		fmt.Fprintf(w, `<div class="code-block-wrapper"><span class="code-lang code-lang-%s">%s</span><pre><code class="language-%s">`, lang, lang, lang)
	} else {
		_, _ = w.WriteString("<pre><code>")
	}
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		html.DefaultWriter.RawWrite(w, seg.Value(source))
	}
	_, _ = w.WriteString("</code></pre>")
	if lang != "" {
		_, _ = w.WriteString("</div>")
	}
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}
