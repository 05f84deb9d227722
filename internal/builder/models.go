// internal/builder/models.go
package builder

import (
	"strings"
	"time"

	"inkwell/internal/content"
)

// Blog is the site object handed to every template. Posts are sorted newest
// first; Pages holds the pages built so far in the current pass.
type Blog struct {
	Name       string
	Tagline    string
	RootURL    string
	Permalinks string
	Posts      []*content.Item
	Pages      []*content.Item
	BuiltAt    time.Time
}

// Recent returns at most n posts, newest first.
func (b *Blog) Recent(n int) []*content.Item {
	if n < 0 || n >= len(b.Posts) {
		return b.Posts
	}
	return b.Posts[:n]
}

// Permalink returns the absolute URL of an item under the site's root URL.
func (b *Blog) Permalink(item *content.Item) string {
	return strings.TrimRight(b.RootURL, "/") + "/" + item.URL
}

// Context is the data passed to templates. Post is nil while a page body is
// rendered, since the page does not exist yet at that point.
type Context struct {
	Blog    *Blog
	Post    *content.Item
	RelRoot string
}
