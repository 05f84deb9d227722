// internal/builder/render.go
package builder

import (
	"bytes"
	"io/fs"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"inkwell/internal/content"
	ierrors "inkwell/internal/errors"
	"inkwell/internal/markdown"
	"inkwell/internal/util"
)

// Date layouts exposed as template functions.
const (
	ShortDate = "Jan 02"
	LongDate  = "Jan 02, 2006"
	RSSDate   = time.RFC1123Z
)

// templateFuncs returns the functions available in every template. md is the
// converter for the current build pass.
func templateFuncs(md *markdown.Converter) template.FuncMap {
	return template.FuncMap{
		"markdown": md.Convert,
		"shortdate": func(t time.Time) string {
			return t.Format(ShortDate)
		},
		"longdate": func(t time.Time) string {
			return t.Format(LongDate)
		},
		"rssdate": func(t time.Time) string {
			return t.Format(RSSDate)
		},
		"slugify": util.Slugify,
		"param": func(item *content.Item, key string) string {
			if item == nil {
				return ""
			}
			return item.Param(key)
		},
	}
}

// loadTemplates parses every non-hidden file under dir into one template set.
// Each template is named by its slash-separated path relative to dir, so
// "layouts/post.html" is the name a content file puts in its Template header.
func loadTemplates(dir string, funcs template.FuncMap) (*template.Template, error) {
	root := template.New("").Funcs(funcs)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return ierrors.IO("walk templates", path, err)
		}
		if isHidden(d.Name()) && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return ierrors.IO("resolve template name", path, err)
		}
		src, err := readFile(path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if _, err := root.New(name).Parse(src); err != nil {
			return ierrors.Wrap(err, ierrors.CategoryTemplate, "cannot parse template").At(path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return root, nil
}

// renderItem produces the output for an item: the named template executed
// against the context, or the content unchanged when no template is set.
func renderItem(env *template.Template, blog *Blog, item *content.Item) (string, error) {
	if item.Template == "" {
		return item.Content, nil
	}
	tmpl := env.Lookup(item.Template)
	if tmpl == nil {
		return "", ierrors.TemplateNotFound(item.Template).At(item.Source)
	}
	var buf bytes.Buffer
	ctx := Context{Blog: blog, Post: item, RelRoot: util.ComputeBaseHref(item.URL)}
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", ierrors.TemplateFailed(item.Template, err).At(item.Source)
	}
	return buf.String(), nil
}

// pageRenderer renders a page body as an inline template that can still call
// the named templates of env. Only the blog is in context.
func pageRenderer(env *template.Template, blog *Blog, dir string) content.PageRenderer {
	return func(name, body string) (string, error) {
		source := filepath.Join(dir, name)
		set, err := env.Clone()
		if err != nil {
			return "", ierrors.TemplateFailed(name, err).At(source)
		}
		tmpl, err := set.New("page:" + name).Parse(body)
		if err != nil {
			return "", ierrors.Wrap(err, ierrors.CategoryTemplate, "cannot parse page body").At(source)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, Context{Blog: blog, RelRoot: util.ComputeBaseHref(name)}); err != nil {
			return "", ierrors.TemplateFailed(name, err).At(source)
		}
		return buf.String(), nil
	}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
