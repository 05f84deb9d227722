package builder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"inkwell/internal/config"
	ierrors "inkwell/internal/errors"
	"inkwell/internal/metrics"
)

type site struct {
	t   *testing.T
	cfg *config.Config
}

func newSite(t *testing.T) *site {
	t.Helper()
	src := t.TempDir()
	cfg := &config.Config{
		Name:         "Notebook",
		Tagline:      "Things I wrote down",
		RootURL:      "https://example.com/",
		Permalinks:   "/@year/@month/@slug.html",
		SourceDir:    src,
		OutputDir:    filepath.Join(src, "out"),
		TemplatesDir: filepath.Join(src, config.TemplatesDir),
		StaticDir:    filepath.Join(src, config.StaticDir),
		PagesDir:     filepath.Join(src, config.PagesDir),
		PostsDir:     filepath.Join(src, config.PostsDir),
	}
	for _, dir := range []string{cfg.OutputDir, cfg.TemplatesDir, cfg.StaticDir, cfg.PagesDir, cfg.PostsDir} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	return &site{t: t, cfg: cfg}
}

func (s *site) file(dir, name, body string) string {
	s.t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(s.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(s.t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func (s *site) post(name, body string) string  { return s.file(s.cfg.PostsDir, name, body) }
func (s *site) page(name, body string) string  { return s.file(s.cfg.PagesDir, name, body) }
func (s *site) tmpl(name, body string) string  { return s.file(s.cfg.TemplatesDir, name, body) }
func (s *site) asset(name, body string) string { return s.file(s.cfg.StaticDir, name, body) }

func (s *site) output(url string) string {
	s.t.Helper()
	raw, err := os.ReadFile(filepath.Join(s.cfg.OutputDir, filepath.FromSlash(url)))
	require.NoError(s.t, err)
	return string(raw)
}

func (s *site) build() (Report, error) {
	return New(s.cfg).Build(context.Background())
}

func TestBuildWritesPostsPagesAndStatic(t *testing.T) {
	s := newSite(t)
	s.tmpl("post.html", "{{.Blog.Name}}|{{.Post.Title}}|{{shortdate .Post.Date}}|{{.RelRoot}}|{{markdown .Post.Content}}")
	s.post("hello.txt", "title: Hello World\ndate: 2024-03-09\ntemplate: post.html\n\nSome *body*.\n")
	s.page("index.html", "{{.Blog.Tagline}}:{{range .Blog.Posts}} {{.URL}}{{end}}")
	s.asset("css/site.css", "body{}")

	report, err := s.build()
	require.NoError(t, err)
	require.Equal(t, 1, report.Posts)
	require.Equal(t, 1, report.Pages)
	require.Equal(t, 1, report.Static)
	require.NotEmpty(t, report.ID)

	require.Equal(t, "Notebook|Hello World|Mar 09|../../|<p>Some <em>body</em>.</p>\n", s.output("2024/03/hello-world.html"))
	require.Equal(t, "Things I wrote down: 2024/03/hello-world.html", s.output("index.html"))
	require.Equal(t, "body{}", s.output("css/site.css"))
}

func TestBuildSortsPostsNewestFirst(t *testing.T) {
	s := newSite(t)
	s.post("a.txt", "title: A\ndate: 2020-01-01\n\na")
	s.post("b.txt", "title: B\ndate: 2023-05-05\n\nb")
	s.post("c.txt", "title: C\ndate: 2021-07-07\n\nc")
	s.page("list.txt", "{{range .Blog.Posts}}{{.Date.Format \"2006-01-02\"}} {{end}}")

	_, err := s.build()
	require.NoError(t, err)
	require.Equal(t, "2023-05-05 2021-07-07 2020-01-01 ", s.output("list.txt"))
}

func TestBuildKeepsEnumerationOrderForEqualDates(t *testing.T) {
	s := newSite(t)
	s.post("first.txt", "title: First\ndate: 2022-02-02\n\n1")
	s.post("second.txt", "title: Second\ndate: 2022-02-02\n\n2")
	s.post("third.txt", "title: Third\ndate: 2022-02-02\n\n3")
	s.page("list.txt", "{{range .Blog.Posts}}{{.Slug}} {{end}}")

	_, err := s.build()
	require.NoError(t, err)
	require.Equal(t, "first second third ", s.output("list.txt"))
}

func TestBuildWritesPostWithoutTemplateVerbatim(t *testing.T) {
	s := newSite(t)
	s.post("raw.md", "title: Raw\ndate: 2024-01-02\n\n# not converted {{.Blog.Name}}\n")

	_, err := s.build()
	require.NoError(t, err)
	require.Equal(t, "# not converted {{.Blog.Name}}\n", s.output("2024/01/raw.html"))
}

func TestBuildSkipsHiddenAndForeignFiles(t *testing.T) {
	s := newSite(t)
	s.post(".draft.txt", "title: Hidden\n\nx")
	s.post("notes.rst", "title: Other\n\nx")
	s.post("kept.md", "title: Kept\ndate: 2024-05-05\n\nx")

	report, err := s.build()
	require.NoError(t, err)
	require.Equal(t, 1, report.Posts)
	require.FileExists(t, filepath.Join(s.cfg.OutputDir, "2024", "05", "kept.html"))
}

func TestBuildFollowsFileSymlinks(t *testing.T) {
	s := newSite(t)
	shared := t.TempDir()
	post := filepath.Join(shared, "linked.txt")
	css := filepath.Join(shared, "shared.css")
	require.NoError(t, os.WriteFile(post, []byte("title: Linked\ndate: 2024-06-01\n\nfrom elsewhere"), 0o644))
	require.NoError(t, os.WriteFile(css, []byte("p{}"), 0o644))
	require.NoError(t, os.Symlink(post, filepath.Join(s.cfg.PostsDir, "linked.txt")))
	require.NoError(t, os.Symlink(css, filepath.Join(s.cfg.StaticDir, "shared.css")))
	require.NoError(t, os.Symlink(filepath.Join(shared, "gone.txt"), filepath.Join(s.cfg.PostsDir, "dangling.txt")))
	require.NoError(t, os.Symlink(shared, filepath.Join(s.cfg.PostsDir, "dir.txt")))

	report, err := s.build()
	require.NoError(t, err)
	require.Equal(t, 1, report.Posts)
	require.Equal(t, 1, report.Static)
	require.Equal(t, "from elsewhere", s.output("2024/06/linked.html"))
	require.Equal(t, "p{}", s.output("shared.css"))

	info, err := os.Lstat(filepath.Join(s.cfg.OutputDir, "shared.css"))
	require.NoError(t, err)
	require.True(t, info.Mode().IsRegular())
}

func TestBuildFailureKeepsEarlierOutput(t *testing.T) {
	s := newSite(t)
	s.tmpl("post.html", "{{.Post.Title}}")
	s.post("one.txt", "title: One\ndate: 2024-03-03\ntemplate: post.html\n\n1")
	s.post("two.txt", "title: Two\ndate: 2024-03-02\ntemplate: post.html\n\n2")
	s.post("three.txt", "title: Three\ndate: 2024-03-01\ntemplate: missing.html\n\n3")

	_, err := s.build()
	require.Error(t, err)

	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	require.Equal(t, StagePosts, buildErr.Stage)
	require.Len(t, buildErr.Written, 2)
	require.True(t, ierrors.IsCategory(err, ierrors.CategoryTemplate))
	require.Contains(t, err.Error(), "three.txt")

	require.Equal(t, "One", s.output("2024/03/one.html"))
	require.Equal(t, "Two", s.output("2024/03/two.html"))
	require.NoFileExists(t, filepath.Join(s.cfg.OutputDir, "2024", "03", "three.html"))
}

func TestBuildReportsMalformedHeaderWithLocation(t *testing.T) {
	s := newSite(t)
	path := s.post("bad.txt", "title: Bad\nno separator here\n\nbody")

	_, err := s.build()
	require.Error(t, err)
	require.True(t, ierrors.IsCategory(err, ierrors.CategoryParse))
	require.Contains(t, err.Error(), path+":2")
}

func TestBuildRequiresSourceDirectories(t *testing.T) {
	s := newSite(t)
	require.NoError(t, os.RemoveAll(s.cfg.PagesDir))

	_, err := s.build()
	require.Error(t, err)
	require.True(t, ierrors.IsCategory(err, ierrors.CategoryIO))
	require.Contains(t, err.Error(), s.cfg.PagesDir)
}

func TestBuildRejectsURLOutsideOutput(t *testing.T) {
	s := newSite(t)
	s.cfg.Permalinks = "@slug"
	s.post("escape.txt", "title: Escape\nslug: ../../escaped.html\n\nx")

	_, err := s.build()
	require.Error(t, err)
	require.True(t, ierrors.IsCategory(err, ierrors.CategoryIO))
	require.NoFileExists(t, filepath.Join(s.cfg.SourceDir, "..", "escaped.html"))
}

func TestBuildResolvesLinksToSourceFiles(t *testing.T) {
	s := newSite(t)
	s.tmpl("post.html", "{{markdown .Post.Content}}")
	s.post("first.txt", "title: First\ndate: 2024-01-01\ntemplate: post.html\n\nSee [the next one](second.txt#end) or [about](about.html).")
	s.post("second.txt", "title: Second\ndate: 2024-02-01\n\nx")
	s.page("about.html", "about")

	_, err := s.build()
	require.NoError(t, err)
	out := s.output("2024/01/first.html")
	require.Contains(t, out, `href="/2024/02/second.html#end"`)
	require.Contains(t, out, `href="/about.html"`)
}

func TestBuildPageSeesPostsButNoPost(t *testing.T) {
	s := newSite(t)
	s.tmpl("partials/title.html", "{{define \"title\"}}[{{.Blog.Name}}]{{end}}")
	s.post("p.txt", "title: Post\ndate: 2024-01-01\n\nx")
	s.page("feed.xml", `{{template "title" .}}{{if .Post}}post{{else}}nopost{{end}} {{len .Blog.Posts}} {{with index .Blog.Posts 0}}{{rssdate .Date}}{{end}}`)

	_, err := s.build()
	require.NoError(t, err)
	out := s.output("feed.xml")
	require.True(t, strings.HasPrefix(out, "[Notebook]nopost 1 "), out)
	require.Contains(t, out, "01 Jan 2024 00:00:00")
}

func TestBuildPageTemplateErrorIsReported(t *testing.T) {
	s := newSite(t)
	path := s.page("broken.html", "{{ .Blog.Name ")

	_, err := s.build()
	require.Error(t, err)

	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	require.Equal(t, StagePages, buildErr.Stage)
	require.True(t, ierrors.IsCategory(err, ierrors.CategoryTemplate))
	require.Contains(t, err.Error(), path)
}

func TestBuildOverwritesPreviousOutput(t *testing.T) {
	s := newSite(t)
	s.asset("robots.txt", "old")
	_, err := s.build()
	require.NoError(t, err)

	s.asset("robots.txt", "new")
	_, err = s.build()
	require.NoError(t, err)
	require.Equal(t, "new", s.output("robots.txt"))

	entries, err := os.ReadDir(s.cfg.OutputDir)
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.HasPrefix(e.Name(), ".inkwell-"), "temp file left behind: %s", e.Name())
	}
}

func TestConcurrentBuildsAreSerialized(t *testing.T) {
	s := newSite(t)
	s.post("p.txt", "title: P\ndate: 2024-01-01\n\nx")
	b := New(s.cfg, WithMetrics(metrics.NewRecorder()))

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = b.Build(context.Background())
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
}

func TestTemplateFuncs(t *testing.T) {
	date := time.Date(2024, 3, 9, 8, 30, 0, 0, time.FixedZone("CET", 3600))
	funcs := templateFuncs(nil)

	require.Equal(t, "Mar 09", funcs["shortdate"].(func(time.Time) string)(date))
	require.Equal(t, "Mar 09, 2024", funcs["longdate"].(func(time.Time) string)(date))
	require.Equal(t, "Sat, 09 Mar 2024 08:30:00 +0100", funcs["rssdate"].(func(time.Time) string)(date))
	require.Equal(t, "hello-world", funcs["slugify"].(func(string) string)("Hello, World!"))
}

func TestOutputPath(t *testing.T) {
	root := t.TempDir()
	dest, err := outputPath(root, "2024/03/hello.html")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "2024", "03", "hello.html"), dest)

	for _, url := range []string{"..", "../x.html", "a/../../x.html", ""} {
		_, err := outputPath(root, url)
		require.Error(t, err, url)
	}
}
