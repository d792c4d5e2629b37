// Package coursename extracts titles, years and semesters from free-text
// course names.
//
// Two strategies are offered. ParseSemester recognises the structured
// "(YYYY Semester ...)" suffix that course titles usually carry and is what
// the semester index is built from. ParseTitle is a best-effort heuristic for
// names that do not follow that convention.
//
// Every function in this package is pure and total: any string, including the
// empty one, yields a result and nothing panics.
package coursename

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"course-catalog/internal/domain"
)

var (
	// "(2025 Fall)", "(2025 Fall full term)"; the year must precede the word.
	semesterParenRegex = regexp.MustCompile(`(?i)\((\d{4})\s+(\w+)(?:\s+[^)]*)?\)`)

	// Word edges use Unicode classes; RE2's \b is ASCII-only. Group 1 holds
	// the word itself.
	yearRegex          = wholeWord(`20\d{2}`)
	trailingPunctRegex = regexp.MustCompile(`[(\[{,\-\s]+$`)

	// Checked in this order; the first one present wins regardless of position.
	semesterWords = []struct {
		label string
		re    *regexp.Regexp
	}{
		{"Fall", wholeWord(`(?i:fall)`)},
		{"Spring", wholeWord(`(?i:spring)`)},
		{"Summer", wholeWord(`(?i:summer)`)},
	}
)

const wordChar = `\p{L}\p{M}\p{N}_`

func wholeWord(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^` + wordChar + `])(` + expr + `)(?:[^` + wordChar + `]|$)`)
}

// ParseSemester extracts the year and semester from the first parenthesised
// "(YYYY Word ...)" group of name. The semester is returned exactly as written.
func ParseSemester(name string) (year, semester string, ok bool) {
	m := semesterParenRegex.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// SemesterKeyOf returns the aggregation key for name, if it has one.
func SemesterKeyOf(name string) (domain.SemesterKey, bool) {
	year, semester, ok := ParseSemester(name)
	if !ok {
		return "", false
	}
	return domain.NewSemesterKey(year, semester), true
}

// MatchesSemester reports whether name carries the given year and semester.
// The year must match exactly; the semester is compared without regard to case.
func MatchesSemester(name, year, semester string) bool {
	y, s, ok := ParseSemester(name)
	if !ok {
		return false
	}
	return y == year && EqualSemester(s, semester)
}

// EqualSemester compares two semester words using Unicode case folding.
func EqualSemester(a, b string) bool {
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

// ParseTitle splits a free-form course name into title, year and semester.
//
// The year is the first 20xx token. The semester is the first of Fall, Spring
// or Summer that appears as a whole word anywhere in the name. The title is
// everything before whichever of the two starts first, minus trailing
// brackets, commas, dashes and spaces.
func ParseTitle(name string) domain.ParsedTitle {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return domain.UnknownTitle()
	}

	out := domain.ParsedTitle{Year: domain.Unknown, Semester: domain.Unknown}
	end := len(name)

	if loc := yearRegex.FindStringSubmatchIndex(name); loc != nil {
		out.Year = name[loc[2]:loc[3]]
		end = min(end, loc[2])
	}

	for _, w := range semesterWords {
		if loc := w.re.FindStringSubmatchIndex(name); loc != nil {
			out.Semester = w.label
			end = min(end, loc[2])
			break
		}
	}

	if end == len(name) {
		out.Title = trimmed
		return out
	}

	title := strings.TrimSpace(name[:end])
	title = strings.TrimSpace(trailingPunctRegex.ReplaceAllString(title, ""))
	if title == "" {
		title = trimmed
	}
	out.Title = title
	return out
}
