package pipeline

import "strings"

// Implant lexicon. Item names or categories containing any of these mark
// the line item as an implant.
var implantKeywords = []string{
	"stent", "rod", "screw", "plate", "nail",
	"prosthesis", "graft", "pacemaker", "joint replacement",
}

var honorifics = map[string]struct{}{
	"dr":     {},
	"mr":     {},
	"mrs":    {},
	"ms":     {},
	"miss":   {},
	"prof":   {},
	"master": {},
	"shri":   {},
	"smt":    {},
}

// IsImplantItem checks the item name and category against the implant
// lexicon.
func IsImplantItem(name, category string) bool {
	haystack := strings.ToLower(name + " " + category)
	for _, keyword := range implantKeywords {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}

// normalizeName lowercases, strips honorifics and punctuation, and undoes
// "Last, First" ordering. The result is a space-joined token list.
func normalizeName(name string) []string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil
	}

	if before, after, found := strings.Cut(name, ","); found {
		name = strings.TrimSpace(after) + " " + strings.TrimSpace(before)
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	var tokens []string
	for _, tok := range strings.Fields(b.String()) {
		if _, ok := honorifics[tok]; ok {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// NamesEquivalent reports whether two person names plausibly refer to the
// same person. It tolerates honorifics, reversed ordering, and initials.
// Every full token on either side must find a counterpart that is equal to
// it or is its initial. Unmatched bare initials are ignored.
func NamesEquivalent(a, b string) bool {
	left, right := normalizeName(a), normalizeName(b)
	if len(left) == 0 || len(right) == 0 {
		return true
	}
	return tokensCovered(left, right) && tokensCovered(right, left)
}

func tokensCovered(tokens, other []string) bool {
	used := make([]bool, len(other))
	for _, tok := range tokens {
		if len(tok) == 1 {
			continue
		}
		found := false
		for i, candidate := range other {
			if used[i] {
				continue
			}
			if candidate == tok || (len(candidate) == 1 && candidate[0] == tok[0]) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
