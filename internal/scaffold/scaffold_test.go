package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"inkwell/internal/builder"
	"inkwell/internal/config"
	"inkwell/internal/content"
	ierrors "inkwell/internal/errors"
)

func TestCreateNewSiteBuilds(t *testing.T) {
	root, err := CreateNewSite(filepath.Join(t.TempDir(), "blog"))
	require.NoError(t, err)

	for _, dir := range []string{config.PostsDir, config.PagesDir, config.StaticDir, config.TemplatesDir} {
		require.DirExists(t, filepath.Join(root, dir))
	}
	require.FileExists(t, filepath.Join(root, config.DefaultConfigFile))
	require.FileExists(t, filepath.Join(root, config.PostsDir, "hello-inkwell.txt"))

	cfg, err := config.Load(root, filepath.Join(root, "out"), "")
	require.NoError(t, err)
	require.Equal(t, "An inkwell blog", cfg.Name)

	report, err := builder.New(cfg).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Posts)
	require.Equal(t, 2, report.Pages)

	index, err := os.ReadFile(filepath.Join(cfg.OutputDir, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(index), "Hello, inkwell</a>")

	feed, err := os.ReadFile(filepath.Join(cfg.OutputDir, "feed.xml"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(feed), "<?xml"))
	require.Contains(t, string(feed), "<link>https://example.com/")
}

func TestCreateNewSiteRefusesExistingSite(t *testing.T) {
	dir := t.TempDir()
	_, err := CreateNewSite(dir)
	require.NoError(t, err)

	_, err = CreateNewSite(dir)
	require.Error(t, err)
	require.True(t, ierrors.IsCategory(err, ierrors.CategoryIO))
}

func TestCreatePost(t *testing.T) {
	dir := t.TempDir()
	path, err := CreatePost(dir, "Über Café Notes", PostTemplate, "Body.\n")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, config.PostsDir, "uber-cafe-notes.txt"), path)

	post, err := content.NewPost(path, content.DefaultPermalinks)
	require.NoError(t, err)
	require.Equal(t, "Über Café Notes", post.Title)
	require.Equal(t, PostTemplate, post.Template)
	require.Equal(t, "Body.\n", post.Content)
	require.Equal(t, "uber-cafe-notes", post.Slug)

	_, err = CreatePost(dir, "Über Café Notes", "", "again")
	require.Error(t, err)
	require.True(t, ierrors.IsCategory(err, ierrors.CategoryIO))
}

func TestCreatePostRejectsEmptySlug(t *testing.T) {
	_, err := CreatePost(t.TempDir(), "!!!", "", "")
	require.Error(t, err)
}
