// Package skills infers technology names from free text.
//
// The classifier is a literal keyword matcher: a vocabulary term counts as
// present when it appears in the text as a whole word, ignoring case. There is
// no stemming, no fuzzy matching and no weighting.
//
// WHOLE WORD:
// A match must not be immediately preceded or followed by a letter, digit or
// underscore. "Script" therefore does not match inside "Javascripter", while
// "C++" matches in "I use C++ and C#" even though "+" is not a word character.
// A plain \b on both sides would get the second case wrong, so the boundaries
// are written out as character classes instead.
package skills

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultVocabulary is the list of technologies recognised in README text.
var DefaultVocabulary = []string{
	"JavaScript", "React", "Node.js", "Express", "MongoDB", "Python",
	"Django", "Flask", "Java", "Spring", "C++", "C#", "PHP", "Laravel",
	"Ruby", "Rails", "HTML", "CSS", "SQL", "TypeScript", "GraphQL",
}

const wordChar = `\p{L}\p{N}_`

// Classifier matches text against a fixed vocabulary.
// Patterns are compiled once; a Classifier is safe for concurrent use.
type Classifier struct {
	terms    []string
	patterns []*regexp.Regexp
}

// New compiles a Classifier for vocabulary. Empty terms are ignored and
// duplicate terms (exact spelling) are kept once.
func New(vocabulary []string) *Classifier {
	c := &Classifier{}
	seen := make(map[string]struct{}, len(vocabulary))
	for _, term := range vocabulary {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		c.terms = append(c.terms, term)
		c.patterns = append(c.patterns, compileTerm(term))
	}
	return c
}

// compileTerm escapes term so metacharacters ("+", "#", ".") match literally.
func compileTerm(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^` + wordChar + `])` +
		regexp.QuoteMeta(term) +
		`(?:[^` + wordChar + `]|$)`)
}

// Vocabulary returns the terms this classifier tests, in order.
func (c *Classifier) Vocabulary() []string {
	out := make([]string, len(c.terms))
	copy(out, c.terms)
	return out
}

// Extract returns the vocabulary terms found in text, in vocabulary order.
// Empty text yields an empty (non-nil) slice.
func (c *Classifier) Extract(text string) []string {
	found := []string{}
	if text == "" {
		return found
	}
	for i, re := range c.patterns {
		if re.MatchString(text) {
			found = append(found, c.terms[i])
		}
	}
	return found
}

// Extract is a one-shot convenience over New(vocabulary).Extract(text).
func Extract(text string, vocabulary []string) []string {
	return New(vocabulary).Extract(text)
}

// Set is an insertion-independent union of skills, ordered by a vocabulary.
type Set struct {
	order map[string]int
	has   map[string]struct{}
}

// NewSet returns an empty Set whose List follows vocabulary order.
func NewSet(vocabulary []string) *Set {
	order := make(map[string]int, len(vocabulary))
	for i, term := range vocabulary {
		if _, ok := order[term]; !ok {
			order[term] = i
		}
	}
	return &Set{order: order, has: make(map[string]struct{})}
}

// Add merges skills into the set.
func (s *Set) Add(skills ...string) {
	for _, skill := range skills {
		s.has[skill] = struct{}{}
	}
}

// Len reports the number of distinct skills.
func (s *Set) Len() int { return len(s.has) }

// List returns the skills in vocabulary order. Skills unknown to the
// vocabulary sort last, alphabetically.
func (s *Set) List() []string {
	out := make([]string, 0, len(s.has))
	for skill := range s.has {
		out = append(out, skill)
	}
	sortByOrder(out, s.order)
	return out
}

func sortByOrder(terms []string, order map[string]int) {
	sort.Slice(terms, func(i, j int) bool {
		oi, iok := order[terms[i]]
		oj, jok := order[terms[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return terms[i] < terms[j]
		}
	})
}
