// internal/builder/output.go
package builder

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	ierrors "inkwell/internal/errors"
)

// outputPath joins a site-relative URL onto the output root and refuses any
// URL that would land outside it.
func outputPath(root, url string) (string, error) {
	dest := filepath.Join(root, filepath.FromSlash(url))
	rel, err := filepath.Rel(root, dest)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ierrors.IO("url escapes output directory", url, err)
	}
	return dest, nil
}

// writeAtomic writes data next to dest and renames it into place, so a
// reader sees either the previous file or the complete new one.
func writeAtomic(dest string, data io.Reader) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ierrors.IO("create output directory", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".inkwell-*")
	if err != nil {
		return ierrors.IO("create temp file", dir, err)
	}
	name := tmp.Name()
	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		os.Remove(name)
		return ierrors.IO("write file", dest, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return ierrors.IO("write file", dest, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return ierrors.IO("chmod file", dest, err)
	}
	if err := os.Rename(name, dest); err != nil {
		os.Remove(name)
		return ierrors.IO("rename file", dest, err)
	}
	return nil
}

// copyTree copies every regular file under src into dst, following file
// symlinks and overwriting what is there. It returns the destination paths
// written, in walk order.
func copyTree(src, dst string) ([]string, error) {
	var written []string
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return ierrors.IO("walk static directory", path, err)
		}
		if d.IsDir() || !isRegular(path, d) {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return ierrors.IO("resolve static path", path, err)
		}
		dest := filepath.Join(dst, rel)
		in, err := os.Open(path)
		if err != nil {
			return ierrors.IO("open static file", path, err)
		}
		defer in.Close()
		if err := writeAtomic(dest, in); err != nil {
			return err
		}
		written = append(written, dest)
		return nil
	})
	return written, err
}

// isRegular reports whether the entry is a regular file, following symlinks.
// Dangling links and links to directories are not.
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// listFiles returns the regular, non-hidden files directly inside dir, sorted
// by name. With exts set only files with one of those extensions are kept.
func listFiles(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ierrors.IO("list directory", dir, err)
	}
	var files []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if isHidden(e.Name()) || !isRegular(path, e) {
			continue
		}
		if len(exts) > 0 && !slices.Contains(exts, filepath.Ext(e.Name())) {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}

// requireDirs reports the first path that is missing or not a directory.
func requireDirs(dirs ...string) error {
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return ierrors.IO("missing source directory", dir, err)
		}
		if !info.IsDir() {
			return ierrors.IO("not a directory", dir, nil)
		}
	}
	return nil
}

func readFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", ierrors.IO("read file", path, err)
	}
	return string(raw), nil
}
