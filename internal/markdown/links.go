// internal/markdown/links.go
package markdown

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// LinkResolver maps a link destination written in a source file to the URL it
// should point at in the built site. It returns false to leave the link alone.
type LinkResolver func(dest string) (string, bool)

// linkTransformer walks the document AST and rewrites link destinations that
// the resolver knows about, so "[next](second-post.txt)" points at the
// permalink of that post.
type linkTransformer struct {
	resolve LinkResolver
}

func newLinkTransformer(resolve LinkResolver) parser.ASTTransformer {
	return &linkTransformer{resolve: resolve}
}

func (t *linkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		if dest, ok := t.resolve(string(link.Destination)); ok {
			link.Destination = []byte(dest)
		}
		return ast.WalkContinue, nil
	})
}
