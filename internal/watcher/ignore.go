// internal/watcher/ignore.go
package watcher

import (
	"path/filepath"
	"strings"
)

// Filter reports whether a changed path must be ignored.
type Filter func(path string) bool

// ignoredNames are matched against every path component below the root.
var ignoredNames = []string{".git*", ".hg*", ".svn*", ".DS_Store"}

// editorTempNames are matched against the base name only.
var editorTempNames = []string{"*~", ".#*", "#*#", "*.swp", "*.swx", "*.swo", "4913", ".inkwell-*"}

// IgnoreRules ignores the output directory and everything under it, version
// control metadata and editor scratch files. root is the watched source tree;
// components above it are never matched.
func IgnoreRules(root, outputDir string) Filter {
	root = filepath.Clean(root)
	out := filepath.Clean(outputDir)
	return func(path string) bool {
		path = filepath.Clean(path)
		if path == out || strings.HasPrefix(path, out+string(filepath.Separator)) {
			return true
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return false
		}
		parts := strings.Split(rel, string(filepath.Separator))
		for _, part := range parts {
			if matchAny(ignoredNames, part) {
				return true
			}
		}
		return matchAny(editorTempNames, parts[len(parts)-1])
	}
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}
