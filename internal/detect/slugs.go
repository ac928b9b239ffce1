package detect

import (
	"regexp"
	"strings"
)

var (
	spacePattern  = regexp.MustCompile(`\s+`)
	suffixPattern = regexp.MustCompile(`(?i)\b(ai|io|inc|labs|hq|co|corp|ltd|llc|technologies|tech)\b`)
	schemePattern = regexp.MustCompile(`^https?://`)
)

// CandidateSlugs derives the ordered slug candidates for a company.
// Name-derived forms come before the website-derived one; order matters
// because the first validating candidate per provider wins.
func CandidateSlugs(name string, website *string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(s string) {
		if len(s) <= 1 {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	lower := strings.ToLower(strings.TrimSpace(name))

	add(spacePattern.ReplaceAllString(lower, ""))
	add(spacePattern.ReplaceAllString(lower, "-"))
	add(spacePattern.ReplaceAllString(lower, "_"))

	firstWord := spacePattern.Split(lower, -1)[0]
	if len(firstWord) > 2 {
		add(firstWord)
	}

	// Corporate suffixes ("BlueFlame AI" -> "blueflame") removed as whole
	// words.
	stripped := strings.TrimSpace(suffixPattern.ReplaceAllString(lower, ""))
	stripped = spacePattern.ReplaceAllString(stripped, " ")
	if stripped != "" && stripped != lower {
		add(spacePattern.ReplaceAllString(stripped, ""))
		add(spacePattern.ReplaceAllString(stripped, "-"))
	}

	if website != nil && *website != "" {
		domain := schemePattern.ReplaceAllString(*website, "")
		domain = strings.TrimPrefix(domain, "www.")
		domain = strings.SplitN(domain, "/", 2)[0]
		domain = strings.SplitN(domain, ".", 2)[0]
		if len(domain) > 2 {
			add(strings.ToLower(domain))
		}
	}

	return out
}
