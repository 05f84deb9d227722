package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"punctuation and digits", "Hello, World!! 2024", "hello-world-2024"},
		{"already a slug", "hello-world", "hello-world"},
		{"runs of separators collapse", "a -- b __ c", "a-b-c"},
		{"leading and trailing noise", "  ...Go!  ", "go"},
		{"accents folded", "Café Crème", "cafe-creme"},
		{"non latin becomes separator", "Go 言語 Tips", "go-tips"},
		{"empty", "", ""},
		{"only symbols", "!@#$%^&*()", ""},
		{"slashes", "Frontend/Backend", "frontend-backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

func TestSlugifyOutputIsStable(t *testing.T) {
	for _, in := range []string{"Hello, World!! 2024", "Über die Brücke", "x"} {
		once := Slugify(in)
		require.Equal(t, once, Slugify(once))
		require.Regexp(t, `^([a-z0-9]+(-[a-z0-9]+)*)?$`, once)
	}
}

func TestComputeBaseHref(t *testing.T) {
	require.Equal(t, "", ComputeBaseHref("index.html"))
	require.Equal(t, "../", ComputeBaseHref("2024/hello.html"))
	require.Equal(t, "../../../", ComputeBaseHref("2024/03/09/hello.html"))
	require.Equal(t, "../../", ComputeBaseHref("/2024/03/hello.html"))
}
