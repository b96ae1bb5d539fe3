package scope

import (
	"strings"
)

// RewritePath swaps the company segment of a scoped path for the new code,
// keeping the rest of the location intact: /acme/users/edit/42 with code
// "globex" becomes /globex/users/edit/42. Paths with fewer than two
// segments fall back to the new company's landing page.
func RewritePath(current, code string) string {
	segments := strings.Split(current, "/")
	if len(segments) < 3 || segments[1] == "" {
		return LandingPath(code)
	}
	segments[1] = code
	return strings.Join(segments, "/")
}
