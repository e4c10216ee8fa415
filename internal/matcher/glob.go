package matcher

import (
	"path"
	"path/filepath"
	"strings"
)

// IsGlob reports whether pattern contains glob metacharacters
func IsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// Normalize converts a path to the slash-separated relative form that
// patterns are matched against
func Normalize(p string) string {
	p = filepath.ToSlash(p)
	return strings.TrimPrefix(p, "./")
}

// Match reports whether a slash-separated path matches pattern. Each
// pattern segment uses path.Match semantics, except that a segment of
// "**" matches any number of path segments including none.
func Match(pattern, p string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(p, "/"))
}

func matchSegments(pattern, segs []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			if matchSegments(pattern[1:], segs) {
				return true
			}
			if len(segs) == 0 {
				return false
			}
			segs = segs[1:]
			continue
		}
		if len(segs) == 0 {
			return false
		}
		if ok, err := path.Match(pattern[0], segs[0]); err != nil || !ok {
			return false
		}
		pattern = pattern[1:]
		segs = segs[1:]
	}
	return len(segs) == 0
}
