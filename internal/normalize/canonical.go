// internal/normalize/canonical.go
package normalize

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FuzzyThreshold is the minimum similarity ratio for an approximate alias
// match to be accepted.
const FuzzyThreshold = 0.75

// stripMarks decomposes accented characters and removes the combining marks,
// so "Atlético" and "Atletico" normalize to the same key.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeKey reduces a team name to its lookup key: diacritics stripped,
// lower-cased, everything but letters and digits removed.
func NormalizeKey(name string) string {
	if name == "" {
		return ""
	}
	stripped, _, err := transform.String(stripMarks, name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Canonicalizer maps arbitrary team-name spellings to one canonical name per
// monitored team. The alias table is fixed at construction and never mutated.
type Canonicalizer struct {
	aliases map[string]string
	keys    []string
}

// NewCanonicalizer builds a canonicalizer from a raw-spelling to canonical-name
// table. Keys are normalized once up front; the sorted key list keeps the
// substring and fuzzy passes deterministic.
func NewCanonicalizer(aliases map[string]string) *Canonicalizer {
	normalized := make(map[string]string, len(aliases))
	for spelling, canonical := range aliases {
		key := NormalizeKey(spelling)
		if key == "" {
			continue
		}
		normalized[key] = canonical
	}

	keys := make([]string, 0, len(normalized))
	for key := range normalized {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return &Canonicalizer{aliases: normalized, keys: keys}
}

// Canonicalize resolves a scraped team name to its canonical form. Unrecognized
// names are returned trimmed, not rejected: a team outside the alias table is
// valid, just not one we monitor. The function is idempotent.
func (c *Canonicalizer) Canonicalize(name string) string {
	if strings.TrimSpace(name) == "" {
		return strings.TrimSpace(name)
	}

	key := NormalizeKey(name)
	if canonical, ok := c.aliases[key]; ok {
		return canonical
	}

	// Suffixed/prefixed variants: "Cruzeiro EC Sub-20" still contains the
	// alias key "cruzeiro".
	for _, aliasKey := range c.keys {
		if strings.Contains(key, aliasKey) {
			return c.aliases[aliasKey]
		}
	}

	best := ""
	bestRatio := 0.0
	for _, aliasKey := range c.keys {
		ratio := similarityRatio(key, aliasKey)
		if ratio > bestRatio {
			best = aliasKey
			bestRatio = ratio
		}
	}
	if bestRatio >= FuzzyThreshold {
		return c.aliases[best]
	}

	return strings.TrimSpace(name)
}

// Key returns the comparison key of a name after canonicalization, used for
// target-team membership checks.
func (c *Canonicalizer) Key(name string) string {
	return NormalizeKey(c.Canonicalize(name))
}

// similarityRatio computes 2*LCS/(len(a)+len(b)), the classic sequence-matcher
// ratio. Alias keys are short, so the quadratic table is cheap.
func similarityRatio(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}
