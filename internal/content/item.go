// internal/content/item.go
package content

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/araddon/dateparse"

	ierrors "inkwell/internal/errors"
	"inkwell/internal/logfields"
	"inkwell/internal/util"
)

// Kind tells the two content variants apart.
type Kind int

const (
	KindPost Kind = iota
	KindPage
)

func (k Kind) String() string {
	if k == KindPage {
		return "page"
	}
	return "post"
}

// Header keys with a dedicated Item field. Every other key lands in Extra.
const (
	KeyTitle    = "title"
	KeySlug     = "slug"
	KeyDate     = "date"
	KeyTemplate = "template"
)

// Item is a page or a post. Items are built fresh on every build pass and
// dropped once written.
type Item struct {
	Kind     Kind
	Title    string
	Slug     string
	URL      string
	Date     time.Time
	Template string
	// Content is the raw body for posts and the already rendered body for pages.
	Content string
	Source  string
	Extra   map[string]string
}

// PageRenderer renders a page body as a template source string. It is called
// before the page exists, so it only sees the site.
type PageRenderer func(name, source string) (string, error)

// NewPost builds a post from a file in the posts directory. A missing slug is
// derived from the title, and the URL is resolved once from the pattern.
func NewPost(path, pattern string) (*Item, error) {
	item, err := load(path, KindPost)
	if err != nil {
		return nil, err
	}
	if item.Slug == "" {
		item.Slug = util.Slugify(item.Title)
	}
	item.URL = Resolve(pattern, item.Date, item.Slug)
	return item, nil
}

// NewPage builds a page from a file in the pages directory. Slug and URL are
// the file name; the body is rendered straight away through render.
func NewPage(path string, render PageRenderer) (*Item, error) {
	item, err := load(path, KindPage)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	item.Slug = name
	item.URL = name
	rendered, err := render(name, item.Content)
	if err != nil {
		return nil, err
	}
	item.Content = rendered
	return item, nil
}

// Param looks a header value up by key, core fields included, so templates
// get one flat lookup for every key a file may set.
func (it *Item) Param(key string) string {
	switch key {
	case KeyTitle:
		return it.Title
	case KeySlug:
		return it.Slug
	case KeyTemplate:
		return it.Template
	case KeyDate:
		return it.Date.Format(time.RFC3339)
	case "url":
		return it.URL
	}
	return it.Extra[key]
}

func (it *Item) IsPost() bool { return it.Kind == KindPost }

func (it *Item) String() string {
	return it.Kind.String() + "(" + it.Slug + ")"
}

func load(path string, kind Kind) (*Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ierrors.IO("read content file", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, ierrors.IO("stat content file", path, err)
	}

	meta, body, err := Parse(string(raw))
	if err != nil {
		if e, ok := err.(*ierrors.Error); ok {
			return nil, e.At(path)
		}
		return nil, err
	}

	item := &Item{
		Kind:    kind,
		Content: body,
		Source:  path,
		Date:    info.ModTime(),
		Extra:   map[string]string{},
	}
	for key, value := range meta {
		switch key {
		case KeyTitle:
			item.Title = value
		case KeySlug:
			item.Slug = value
		case KeyTemplate:
			item.Template = value
		case KeyDate:
			date, err := dateparse.ParseIn(value, time.Local)
			if err != nil {
				slog.Warn("Unparseable date, using file modification time",
					logfields.Path(path), slog.String("date", value), logfields.Error(err))
				continue
			}
			item.Date = date
		default:
			item.Extra[key] = value
		}
	}
	return item, nil
}
