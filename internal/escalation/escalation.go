// Package escalation annotates match results with neighbor-skill
// suggestions. Escalation conditions are free text judged by the
// consuming host; Raido orders them as a hint but never evaluates them
// into a decision and never forces a handoff.
package escalation

import (
	"sort"
	"strings"
	"unicode"

	"github.com/starford/raido/internal/catalog"
)

// Hint is one candidate handoff target.
type Hint struct {
	Skill     string `json:"skill"`
	Condition string `json:"condition,omitempty"`
	// Overlap counts query keywords appearing in the condition text. It
	// is advisory ordering only; a zero-overlap neighbor is still listed.
	Overlap int `json:"overlap"`
}

// Suggestion is a non-binding recommendation to consult a neighboring
// skill instead of (or in addition to) the matched one.
type Suggestion struct {
	From  string `json:"from"`
	Hints []Hint `json:"hints"`
}

// Route scans the matched skill's neighbor edges and returns a
// suggestion, or nil when the skill is unknown or has no neighbors.
// Hints keep declaration order except that higher query-overlap moves a
// neighbor up.
func Route(c *catalog.Catalog, skillName, query string) *Suggestion {
	s, err := c.Skill(skillName)
	if err != nil || len(s.Neighbors) == 0 {
		return nil
	}

	qTokens := tokenize(strings.ToLower(query))

	hints := make([]Hint, 0, len(s.Neighbors))
	for _, n := range s.Neighbors {
		hints = append(hints, Hint{
			Skill:     n.Skill,
			Condition: n.Condition,
			Overlap:   overlap(qTokens, n.Condition),
		})
	}
	sort.SliceStable(hints, func(i, j int) bool { return hints[i].Overlap > hints[j].Overlap })

	return &Suggestion{From: s.Name, Hints: hints}
}

func overlap(qTokens []string, text string) int {
	tokens := tokenize(strings.ToLower(text))
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

// tokenize uses the same rune classes as query matching so condition
// overlap and trigger matching agree on what a word is.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_')
	})
}
