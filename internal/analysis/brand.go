package analysis

import (
	"regexp"
	"strings"
)

// BrandProfile holds the tracked brand name plus every alias the tenant has
// configured. Built once per analysis run and never mutated.
type BrandProfile struct {
	Name     string
	patterns []string
}

// NewBrandProfile builds a profile from the brand name and a comma-separated
// alias string (may be empty). The primary name is always the first pattern.
func NewBrandProfile(name string, aliases string) *BrandProfile {
	patterns := []string{strings.ToLower(name)}
	for _, alias := range strings.Split(aliases, ",") {
		alias = strings.ToLower(strings.TrimSpace(alias))
		if alias != "" && !containsString(patterns, alias) {
			patterns = append(patterns, alias)
		}
	}
	return &BrandProfile{Name: name, patterns: patterns}
}

// Patterns returns the lowercase name variations used for matching.
func (b *BrandProfile) Patterns() []string {
	return b.patterns
}

// MatchesText reports whether any brand pattern occurs as a case-insensitive
// substring of text. Substring match on purpose: this backs the whole-text
// mention check, the branded-query check, and the brand URL check.
func (b *BrandProfile) MatchesText(text string) bool {
	return containsAny(text, b.patterns)
}

// CompetitorProfile is one tenant-configured competitor: a canonical name and
// an optional comma-separated alias string.
type CompetitorProfile struct {
	Name    string
	Aliases string
}

// CompetitorRegistry maps every lowercase pattern (competitor name or alias)
// to its canonical competitor name. Built once per run; if two competitors
// share a pattern the last write wins, which is a configuration error rather
// than something the matcher papers over.
type CompetitorRegistry struct {
	names     []string
	canonical map[string]string
	patterns  []string
	re        *regexp.Regexp
}

// NewCompetitorRegistry builds the registry from the tenant's active
// competitor list. Pattern order follows configuration order so the compiled
// alternation is deterministic for overlapping patterns.
func NewCompetitorRegistry(competitors []CompetitorProfile) *CompetitorRegistry {
	r := &CompetitorRegistry{canonical: make(map[string]string)}

	for _, comp := range competitors {
		name := strings.TrimSpace(comp.Name)
		if name == "" {
			continue
		}
		r.names = append(r.names, name)
		r.add(strings.ToLower(name), name)
		for _, alias := range strings.Split(comp.Aliases, ",") {
			alias = strings.TrimSpace(alias)
			if alias != "" {
				r.add(strings.ToLower(alias), name)
			}
		}
	}

	if len(r.patterns) > 0 {
		escaped := make([]string, len(r.patterns))
		for i, p := range r.patterns {
			escaped[i] = regexp.QuoteMeta(p)
		}
		r.re = regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)
	}

	return r
}

func (r *CompetitorRegistry) add(pattern, canonicalName string) {
	if _, seen := r.canonical[pattern]; !seen {
		r.patterns = append(r.patterns, pattern)
	}
	r.canonical[pattern] = canonicalName
}

// Names returns the canonical competitor names in configuration order.
func (r *CompetitorRegistry) Names() []string {
	return r.names
}

// Empty reports whether the tenant has no competitor patterns configured.
func (r *CompetitorRegistry) Empty() bool {
	return len(r.patterns) == 0
}

// Canonical resolves a matched pattern to its canonical competitor name.
func (r *CompetitorRegistry) Canonical(pattern string) (string, bool) {
	name, ok := r.canonical[strings.ToLower(pattern)]
	return name, ok
}

// containsAny reports whether any pattern occurs as a case-insensitive
// substring of text. Not word-boundary restricted.
func containsAny(text string, patterns []string) bool {
	lower := strings.ToLower(text)
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
