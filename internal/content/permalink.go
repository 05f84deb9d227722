// internal/content/permalink.go
package content

import (
	"fmt"
	"strings"
	"time"
)

// DefaultPermalinks is used when the config does not set "permalinks".
const DefaultPermalinks = "/@year/@month/@day/@slug.html"

// Resolve expands a permalink pattern for the given date and slug. Tokens are
// replaced in a single left-to-right pass, so a slug containing "@year" is
// copied literally. The result never starts or ends with '/'.
func Resolve(pattern string, date time.Time, slug string) string {
	r := strings.NewReplacer(
		"@year", fmt.Sprintf("%04d", date.Year()),
		"@month", fmt.Sprintf("%02d", int(date.Month())),
		"@day", fmt.Sprintf("%02d", date.Day()),
		"@slug", slug,
	)
	return strings.Trim(r.Replace(pattern), "/")
}
