package export

import (
	"regexp"
	"strings"
)

// DefaultMaxFilename is the length cap used for exported file names.
const DefaultMaxFilename = 100

var (
	forbiddenRe = regexp.MustCompile(`[<>:"/\\|?*]`)
	// \w in the unicode sense plus whitespace and - . ( ) [ ]
	unsafeRe     = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s\-.()\[\]]`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
	underscoreRe = regexp.MustCompile(`_+`)
)

// SafeFilename turns arbitrary text (usually a course name or semester key)
// into a portable file name without extension. The result is never empty and
// at most maxLen runes long; a cut lands on the last underscore when there
// is one.
func SafeFilename(text string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxFilename
	}

	s := forbiddenRe.ReplaceAllString(text, "")
	s = unsafeRe.ReplaceAllString(s, "_")
	s = spaceRunRe.ReplaceAllString(strings.TrimSpace(s), "_")
	s = underscoreRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_.")

	if s == "" {
		return "unnamed_file"
	}

	if r := []rune(s); len(r) > maxLen {
		s = string(r[:maxLen])
		if i := strings.LastIndex(s, "_"); i >= 0 {
			s = s[:i]
		}
	}
	return s
}
