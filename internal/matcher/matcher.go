// Package matcher ranks catalog documents against a free-text query by
// case-insensitive trigger-phrase and keyword overlap. Matching is a
// pure function over an immutable catalog; "no match" is a normal,
// empty result, never an error.
package matcher

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/models"
)

// DefaultLimit caps the number of hits returned when the caller passes
// a non-positive limit.
const DefaultLimit = 10

// Hit is one ranked document.
type Hit struct {
	Document models.Document `json:"document"`
	Score    int             `json:"score"`
}

// Result is the outcome of matching a query against a catalog. Empty
// Hits means nothing scored above zero.
type Result struct {
	Query string `json:"query"`
	Hits  []Hit  `json:"hits"`
}

// TopSkill returns the owning skill of the best hit, or "" when the
// result is empty.
func (r Result) TopSkill() string {
	if len(r.Hits) == 0 {
		return ""
	}
	return r.Hits[0].Document.Skill
}

// Match scores every document in the catalog against query and returns
// the ranked hits. Scoring: each of the owning skill's trigger phrases
// found in the query contributes twice its word count, so a verbatim
// trigger always outranks bare description overlap; each distinct query
// token found in the document's description or title contributes one.
// Ties prefer skill-category documents, then shorter descriptions, then
// declaration order.
func Match(c *catalog.Catalog, query string, limit int) Result {
	if limit <= 0 {
		limit = DefaultLimit
	}
	res := Result{Query: query}

	q := strings.ToLower(query)
	qTokens := tokenize(q)
	if len(qTokens) == 0 {
		return res
	}

	// Trigger scores are per skill; every document of the skill inherits
	// its skill's trigger score.
	triggerScore := make(map[string]int, c.Len())
	for _, s := range c.Skills() {
		score := 0
		for _, phrase := range s.Triggers {
			p := strings.ToLower(strings.TrimSpace(phrase))
			if p == "" {
				continue
			}
			if containsPhrase(q, p) {
				score += 2 * len(tokenize(p))
			}
		}
		triggerScore[s.Name] = score
	}

	type scored struct {
		hit   Hit
		order int
	}
	var hits []scored
	for i, d := range c.Documents() {
		score := triggerScore[d.Skill] + overlap(qTokens, d.Description+" "+d.Title)
		if score <= 0 {
			continue
		}
		hits = append(hits, scored{hit: Hit{Document: d, Score: score}, order: i})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.hit.Score != b.hit.Score {
			return a.hit.Score > b.hit.Score
		}
		ar, br := categoryRank(a.hit.Document.Category), categoryRank(b.hit.Document.Category)
		if ar != br {
			return ar < br
		}
		if la, lb := len(a.hit.Document.Description), len(b.hit.Document.Description); la != lb {
			return la < lb
		}
		return a.order < b.order
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	for _, h := range hits {
		res.Hits = append(res.Hits, h.hit)
	}
	return res
}

// categoryRank orders documents for tie-breaking: skill entry points
// beat supporting material.
func categoryRank(category string) int {
	switch category {
	case models.CategorySkill:
		return 0
	case models.CategoryCommand:
		return 1
	case models.CategoryAgent:
		return 2
	case models.CategoryReference:
		return 3
	default: // handbook and anything unknown
		return 4
	}
}

// containsPhrase reports whether phrase occurs in q on token
// boundaries, so "frame" does not match "mainframe".
func containsPhrase(q, phrase string) bool {
	for start := 0; ; {
		i := strings.Index(q[start:], phrase)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(phrase)
		beforeOK := i == 0
		if !beforeOK {
			r, _ := utf8.DecodeLastRuneInString(q[:i])
			beforeOK = !isTokenRune(r)
		}
		afterOK := end == len(q)
		if !afterOK {
			r, _ := utf8.DecodeRuneInString(q[end:])
			afterOK = !isTokenRune(r)
		}
		if beforeOK && afterOK {
			return true
		}
		start = i + 1
	}
}

// overlap counts the distinct query tokens present in text.
func overlap(qTokens []string, text string) int {
	tokens := tokenize(strings.ToLower(text))
	if len(tokens) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	seen := make(map[string]struct{}, len(qTokens))
	n := 0
	for _, t := range qTokens {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return !isTokenRune(r) })
}

func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}
