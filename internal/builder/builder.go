// internal/builder/builder.go
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/config"
	"inkwell/internal/content"
	"inkwell/internal/logfields"
	"inkwell/internal/markdown"
	"inkwell/internal/metrics"
)

// PostExtensions are the file extensions read from the posts directory.
var PostExtensions = []string{".txt", ".md"}

// Build stages, reported in BuildError and logs.
const (
	StageStatic    = "static"
	StageTemplates = "templates"
	StagePosts     = "posts"
	StagePages     = "pages"
)

// Report summarizes a successful build pass.
type Report struct {
	ID       string
	Posts    int
	Pages    int
	Static   int
	Duration time.Duration
}

// BuildError is returned when a build pass aborts. Files in Written were
// already replaced on disk; nothing is rolled back.
type BuildError struct {
	ID      string
	Stage   string
	Written []string
	Err     error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s failed during %s after writing %d files: %v", e.ID, e.Stage, len(e.Written), e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Builder regenerates the whole output tree from the source tree. Build
// calls are serialized, so two passes never write the output at once.
type Builder struct {
	cfg     *config.Config
	metrics *metrics.Recorder
	logger  *slog.Logger

	mu sync.Mutex
}

type Option func(*Builder)

// WithMetrics records every build pass in r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(b *Builder) { b.metrics = r }
}

// WithLogger replaces slog.Default as the build logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

func New(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) Config() *config.Config {
	return b.cfg
}

// pass holds the state of one build.
type pass struct {
	id      string
	cfg     *config.Config
	blog    *Blog
	links   map[string]string
	written []string
	stage   string
	report  Report
}

// Build runs one full pass: static files, templates, posts, then pages. The
// context only carries request-scoped logging values; a started pass always
// runs to completion or to its first error.
func (b *Builder) Build(ctx context.Context) (Report, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	p := &pass{
		id:    uuid.NewString(),
		cfg:   b.cfg,
		links: map[string]string{},
		blog: &Blog{
			Name:       b.cfg.Name,
			Tagline:    b.cfg.Tagline,
			RootURL:    b.cfg.RootURL,
			Permalinks: b.cfg.Permalinks,
			BuiltAt:    start,
		},
	}
	log := b.logger.With(logfields.BuildID(p.id))
	log.DebugContext(ctx, "Build started", logfields.Path(b.cfg.SourceDir))

	err := p.run()
	elapsed := time.Since(start)
	if err != nil {
		b.metrics.BuildFailed(elapsed)
		buildErr := &BuildError{ID: p.id, Stage: p.stage, Written: p.written, Err: err}
		log.ErrorContext(ctx, "Build failed", logfields.Stage(p.stage), logfields.Count(len(p.written)), logfields.Error(err))
		return Report{}, buildErr
	}

	p.report.ID = p.id
	p.report.Duration = elapsed
	b.metrics.BuildSucceeded(elapsed, p.report.Posts, p.report.Pages, p.report.Static)
	log.InfoContext(ctx, "Build finished",
		slog.Int("posts", p.report.Posts),
		slog.Int("pages", p.report.Pages),
		slog.Int("static", p.report.Static),
		logfields.Duration(elapsed))
	return p.report, nil
}

func (p *pass) run() error {
	cfg := p.cfg
	p.stage = StageStatic
	if err := requireDirs(cfg.StaticDir, cfg.TemplatesDir, cfg.PostsDir, cfg.PagesDir); err != nil {
		return err
	}
	static, err := copyTree(cfg.StaticDir, cfg.OutputDir)
	p.written = append(p.written, static...)
	if err != nil {
		return err
	}
	p.report.Static = len(static)

	p.stage = StageTemplates
	md := markdown.New(markdown.WithSanitize(cfg.Sanitize), markdown.WithLinkResolver(p.resolveLink))
	env, err := loadTemplates(cfg.TemplatesDir, templateFuncs(md))
	if err != nil {
		return err
	}

	p.stage = StagePosts
	postFiles, err := listFiles(cfg.PostsDir, PostExtensions...)
	if err != nil {
		return err
	}
	pageFiles, err := listFiles(cfg.PagesDir)
	if err != nil {
		return err
	}
	posts := make([]*content.Item, 0, len(postFiles))
	for _, path := range postFiles {
		post, err := content.NewPost(path, cfg.Permalinks)
		if err != nil {
			return err
		}
		posts = append(posts, post)
		p.links[filepath.Base(path)] = post.URL
	}
	for _, path := range pageFiles {
		name := filepath.Base(path)
		p.links[name] = name
	}
	sortPosts(posts)
	p.blog.Posts = posts
	for _, post := range posts {
		if err := p.write(env, post); err != nil {
			return err
		}
		p.report.Posts++
	}

	p.stage = StagePages
	render := pageRenderer(env, p.blog, cfg.PagesDir)
	for _, path := range pageFiles {
		page, err := content.NewPage(path, render)
		if err != nil {
			return err
		}
		p.blog.Pages = append(p.blog.Pages, page)
		if err := p.write(env, page); err != nil {
			return err
		}
		p.report.Pages++
	}
	return nil
}

func (p *pass) write(env *template.Template, item *content.Item) error {
	dest, err := outputPath(p.cfg.OutputDir, item.URL)
	if err != nil {
		return err
	}
	out, err := renderItem(env, p.blog, item)
	if err != nil {
		return err
	}
	if err := writeAtomic(dest, strings.NewReader(out)); err != nil {
		return err
	}
	p.written = append(p.written, dest)
	return nil
}

// resolveLink maps a link to a source file name ("second-post.txt") onto the
// site-absolute URL of the item built from it.
func (p *pass) resolveLink(dest string) (string, bool) {
	if strings.Contains(dest, "/") || strings.Contains(dest, ":") {
		return "", false
	}
	name, fragment, _ := strings.Cut(dest, "#")
	url, ok := p.links[name]
	if !ok {
		return "", false
	}
	if fragment != "" {
		url += "#" + fragment
	}
	return "/" + url, true
}

// sortPosts orders posts newest first. Posts with equal dates keep their
// enumeration order.
func sortPosts(posts []*content.Item) {
	slices.SortStableFunc(posts, func(a, b *content.Item) int {
		return b.Date.Compare(a.Date)
	})
}
