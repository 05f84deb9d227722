// internal/markdown/markdown.go

// Package markdown converts post and page bodies to HTML. A Converter is an
// ordinary value built with New and handed to whatever renders templates.
package markdown

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// HighlightClass is the CSS class of the element wrapping highlighted code blocks.
const HighlightClass = "highlight"

type options struct {
	sanitize bool
	style    string
	resolve  LinkResolver
}

// Option configures a Converter.
type Option func(*options)

// WithSanitize runs the rendered HTML through a user-generated-content policy.
func WithSanitize(on bool) Option {
	return func(o *options) { o.sanitize = on }
}

// WithStyle selects the chroma style name used for code highlighting.
func WithStyle(name string) Option {
	return func(o *options) { o.style = name }
}

// WithLinkResolver rewrites link destinations that name other source files.
func WithLinkResolver(r LinkResolver) Option {
	return func(o *options) { o.resolve = r }
}

// Converter renders markdown to HTML.
type Converter struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// New builds a Converter. Raw HTML in the source passes through untouched
// unless sanitizing is enabled.
func New(opts ...Option) *Converter {
	o := options{style: "friendly"}
	for _, opt := range opts {
		opt(&o)
	}

	parserOpts := []parser.Option{parser.WithAutoHeadingID()}
	if o.resolve != nil {
		parserOpts = append(parserOpts, parser.WithASTTransformers(
			util.Prioritized(newLinkTransformer(o.resolve), 100),
		))
	}

	c := &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Footnote,
				extension.Typographer,
				highlighting.NewHighlighting(
					highlighting.WithStyle(o.style),
					highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
					highlighting.WithWrapperRenderer(wrapHighlighted),
				),
			),
			goldmark.WithParserOptions(parserOpts...),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
	if o.sanitize {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Globally()
		policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
		c.sanitizer = policy
	}
	return c
}

// Convert renders markdown source to an HTML string.
func (c *Converter) Convert(source string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	if c.sanitizer != nil {
		return string(c.sanitizer.SanitizeBytes(buf.Bytes())), nil
	}
	return buf.String(), nil
}

func wrapHighlighted(w util.BufWriter, _ highlighting.CodeBlockContext, entering bool) {
	if entering {
		_, _ = w.WriteString(`<div class="` + HighlightClass + `">`)
		return
	}
	_, _ = w.WriteString("</div>")
}
