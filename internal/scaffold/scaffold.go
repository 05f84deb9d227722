// internal/scaffold/scaffold.go
package scaffold

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/content"
	ierrors "inkwell/internal/errors"
	"inkwell/internal/logfields"
	"inkwell/internal/util"
)

// PostTemplate is the template new posts are rendered with.
const PostTemplate = "post.html"

// dateLayout is written into Date headers; it reads back exactly.
const dateLayout = "2006-01-02 15:04:05"

// CreateNewSite lays out a ready-to-build blog in path and returns its
// absolute location. An existing config file is never overwritten.
func CreateNewSite(path string) (string, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return "", ierrors.IO("resolve site path", path, err)
	}
	if _, err := os.Stat(filepath.Join(root, config.DefaultConfigFile)); err == nil {
		return "", ierrors.New(ierrors.CategoryIO, "a site already exists here").At(root)
	}

	for _, dir := range []string{config.PostsDir, config.PagesDir, config.StaticDir, config.TemplatesDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return "", ierrors.IO("create directory", filepath.Join(root, dir), err)
		}
	}

	files := map[string]string{
		config.DefaultConfigFile:                          defaultConfig,
		filepath.Join(config.TemplatesDir, "layout.html"): layoutTemplate,
		filepath.Join(config.TemplatesDir, PostTemplate):  postTemplate,
		filepath.Join(config.PagesDir, "index.html"):      indexPage,
		filepath.Join(config.PagesDir, "feed.xml"):        feedPage,
		filepath.Join(config.StaticDir, "style.css"):      stylesheet,
	}
	for name, body := range files {
		if err := writeNew(filepath.Join(root, name), body); err != nil {
			return "", err
		}
	}
	if _, err := CreatePost(root, "Hello, inkwell", PostTemplate, welcomeBody); err != nil {
		return "", err
	}
	slog.Info("Created new site", logfields.Path(root))
	return root, nil
}

// CreatePost writes a new post to <source>/_posts/<slug>.txt, dated now, and
// returns its path. It refuses to replace an existing post.
func CreatePost(source, title, template, body string) (string, error) {
	slug := util.Slugify(title)
	if slug == "" {
		return "", ierrors.New(ierrors.CategoryParse, fmt.Sprintf("title %q has no usable characters for a file name", title))
	}
	meta := content.Metadata{
		content.KeyTitle: title,
		content.KeyDate:  time.Now().Format(dateLayout),
	}
	if template != "" {
		meta[content.KeyTemplate] = template
	}
	path := filepath.Join(source, config.PostsDir, slug+".txt")
	if err := writeNew(path, content.FormatHeaders(meta)+"\n"+body); err != nil {
		return "", err
	}
	slog.Info("Created post", logfields.Path(path))
	return path, nil
}

func writeNew(path, body string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ierrors.IO("create directory", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return ierrors.IO("create file", path, err)
	}
	if _, err := f.WriteString(body); err != nil {
		f.Close()
		return ierrors.IO("write file", path, err)
	}
	if err := f.Close(); err != nil {
		return ierrors.IO("write file", path, err)
	}
	return nil
}
