// internal/content/parser.go

// Package content parses source files into the pages and posts of a site.
//
// A content file is an optional block of "Key: Value" header lines, a blank
// line, and then the body:
//
//	title: Hello, World
//	date: 2024-03-09
//	template: post.html
//
//	The body of the post.
package content

import (
	"sort"
	"strings"

	ierrors "inkwell/internal/errors"
)

// Metadata is the flat key/value mapping read from a header block.
type Metadata map[string]string

const headerSeparator = ": "

// Parse splits raw file text on its first blank line. The part before it is
// parsed as header lines, the rest is the body. Text with no blank line is
// all body and yields empty metadata.
func Parse(text string) (Metadata, string, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	head, body, found := strings.Cut(text, "\n\n")
	if !found {
		return Metadata{}, text, nil
	}
	meta, err := ParseHeaders(head)
	if err != nil {
		return nil, "", err
	}
	return meta, body, nil
}

// ParseHeaders parses HTTP-header style lines. Empty lines are skipped; any
// other line without a ": " separator is an error carrying its line number.
func ParseHeaders(block string) (Metadata, error) {
	meta := Metadata{}
	for i, line := range strings.Split(block, "\n") {
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, headerSeparator)
		if !ok {
			return nil, ierrors.MalformedHeader(i+1, line)
		}
		meta[key] = value
	}
	return meta, nil
}

// FormatHeaders writes metadata back as header lines, keys sorted, so that
// ParseHeaders(FormatHeaders(m)) equals m for keys without ": " and values
// without newlines.
func FormatHeaders(meta Metadata) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(headerSeparator)
		b.WriteString(meta[k])
		b.WriteString("\n")
	}
	return b.String()
}
