package correlate

import (
	"strings"

	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

// Matcher evaluates messages against a configured alert term list and
// ignore term list. Matching is whole-word and case-insensitive. The
// matcher is pure: Stamp always re-derives and overwrites the result.
type Matcher struct {
	terms  []string
	ignore []string
}

// NewMatcher builds a matcher from the configured terms. Terms are
// upper-cased once here; duplicates in the alert list are kept so each
// occurrence produces its own matched entry.
func NewMatcher(t core.Terms) *Matcher {
	m := &Matcher{}
	for _, term := range t.Terms {
		if term = strings.ToUpper(strings.TrimSpace(term)); term != "" {
			m.terms = append(m.terms, term)
		}
	}
	for _, term := range t.Ignore {
		if term = strings.ToUpper(strings.TrimSpace(term)); term != "" {
			m.ignore = append(m.ignore, term)
		}
	}
	return m
}

// Match evaluates the message's searchable surface. Any single ignore
// term present anywhere suppresses all alert matches for the message.
func (m *Matcher) Match(msg *core.Message) (matched bool, matchedTerms []string) {
	if len(m.terms) == 0 {
		return false, nil
	}
	surface := searchSurface(msg)
	if surface == "" {
		return false, nil
	}

	for _, term := range m.ignore {
		if containsWord(surface, term) {
			return false, nil
		}
	}

	for _, term := range m.terms {
		if containsWord(surface, term) {
			matchedTerms = append(matchedTerms, term)
		}
	}
	return len(matchedTerms) > 0, matchedTerms
}

// Stamp runs Match and writes the result onto the message, fully
// replacing any prior stamp.
func (m *Matcher) Stamp(msg *core.Message) {
	msg.Matched, msg.MatchedTerms = m.Match(msg)
}

// searchSurface concatenates every text-bearing field of the message,
// upper-cased: free text, structured payload text, decoded description,
// and each label/value pair of the libacars payload.
func searchSurface(msg *core.Message) string {
	var b strings.Builder
	appendField := func(s string) {
		if s == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}

	appendField(msg.Text)
	appendField(msg.Data)
	appendField(msg.DecodedText)
	for _, lv := range msg.Libacars {
		appendField(lv.Label)
		appendField(lv.Value)
	}
	return strings.ToUpper(b.String())
}

// containsWord reports whether term occurs in surface on whole-word
// boundaries. A term never matches as a substring of a longer
// alphanumeric token. Both inputs must already be upper-cased.
func containsWord(surface, term string) bool {
	if term == "" {
		return false
	}
	for start := 0; ; {
		i := strings.Index(surface[start:], term)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(term)
		if (i == 0 || !isWordChar(surface[i-1])) &&
			(end == len(surface) || !isWordChar(surface[end])) {
			return true
		}
		start = i + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}
