package ingest

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	leadingTitle = regexp.MustCompile(`^(MR|MRS|MS|DR|MISS|M/S|M/M)\.?\s+`)
	nameJunk     = regexp.MustCompile(`[^\p{L}\p{N}_\s.]`)
	suffixToken  = regexp.MustCompile(`^(JR|SR|II|III|IV|V|ESQ)$`)
	upper        = cases.Upper(language.Und)
)

// CleanName upper-cases a name, drops a leading title and any punctuation
// other than periods, and collapses whitespace.
func CleanName(name string) string {
	name = upper.String(name)
	name = leadingTitle.ReplaceAllString(name, "")
	name = nameJunk.ReplaceAllString(name, " ")
	return strings.Join(strings.Fields(name), " ")
}

// NameParts is a full name split into its components.
type NameParts struct {
	First  string
	Middle string
	Last   string
	Suffix string
}

// SplitFullName splits a cleaned full name. A trailing generational suffix is
// peeled off first; one remaining word is a first name, two are first and
// last, and anything in between the first and last word is the middle name.
func SplitFullName(name string) NameParts {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return NameParts{}
	}

	var p NameParts
	if len(parts) > 1 {
		last := strings.Trim(parts[len(parts)-1], ".")
		if suffixToken.MatchString(last) {
			p.Suffix = last
			parts = parts[:len(parts)-1]
		}
	}

	switch len(parts) {
	case 1:
		p.First = parts[0]
	case 2:
		p.First, p.Last = parts[0], parts[1]
	default:
		p.First = parts[0]
		p.Middle = strings.Join(parts[1:len(parts)-1], " ")
		p.Last = parts[len(parts)-1]
	}
	return p
}
