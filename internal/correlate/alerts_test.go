package correlate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

func TestMatcherMatch(t *testing.T) {
	tests := []struct {
		name      string
		terms     core.Terms
		msg       *core.Message
		want      bool
		wantTerms []string
	}{
		{
			name:  "simple match in text",
			terms: core.Terms{Terms: []string{"emergency"}},
			msg:   &core.Message{Text: "DECLARING EMERGENCY FUEL"},
			want:  true, wantTerms: []string{"EMERGENCY"},
		},
		{
			name:  "case-insensitive",
			terms: core.Terms{Terms: []string{"MedLink"}},
			msg:   &core.Message{Text: "request medlink consult"},
			want:  true, wantTerms: []string{"MEDLINK"},
		},
		{
			name:  "no substring match inside longer token",
			terms: core.Terms{Terms: []string{"MED"}},
			msg:   &core.Message{Text: "MEDLINK REQUESTED"},
			want:  false,
		},
		{
			name:  "word boundary at punctuation",
			terms: core.Terms{Terms: []string{"MAYDAY"}},
			msg:   &core.Message{Text: "MAYDAY/MAYDAY"},
			want:  true, wantTerms: []string{"MAYDAY"},
		},
		{
			name:  "ignore term suppresses everything",
			terms: core.Terms{Terms: []string{"EMERGENCY"}, Ignore: []string{"TEST"}},
			msg:   &core.Message{Text: "EMERGENCY DRILL TEST ONLY"},
			want:  false,
		},
		{
			name:  "ignore term in decoded text suppresses text match",
			terms: core.Terms{Terms: []string{"EMERGENCY"}, Ignore: []string{"DRILL"}},
			msg:   &core.Message{Text: "EMERGENCY", DecodedText: "drill exercise"},
			want:  false,
		},
		{
			name:  "duplicate configured terms each produce an entry",
			terms: core.Terms{Terms: []string{"FIRE", "FIRE"}},
			msg:   &core.Message{Text: "FIRE WARNING"},
			want:  true, wantTerms: []string{"FIRE", "FIRE"},
		},
		{
			name:  "match in libacars label value pair",
			terms: core.Terms{Terms: []string{"DIVERT"}},
			msg: &core.Message{Libacars: []core.LabelValue{
				{Label: "Reason", Value: "DIVERT TO KSLC"},
			}},
			want: true, wantTerms: []string{"DIVERT"},
		},
		{
			name:  "match in structured data payload",
			terms: core.Terms{Terms: []string{"SQUAWK"}},
			msg:   &core.Message{Data: "SQUAWK 7700"},
			want:  true, wantTerms: []string{"SQUAWK"},
		},
		{
			name:  "empty term configuration",
			terms: core.Terms{},
			msg:   &core.Message{Text: "EMERGENCY"},
			want:  false,
		},
		{
			name:  "empty searchable surface",
			terms: core.Terms{Terms: []string{"EMERGENCY"}},
			msg:   &core.Message{},
			want:  false,
		},
		{
			name:  "multiple distinct terms",
			terms: core.Terms{Terms: []string{"FIRE", "SMOKE", "FUEL"}},
			msg:   &core.Message{Text: "SMOKE IN CABIN FIRE SUSPECTED"},
			want:  true, wantTerms: []string{"FIRE", "SMOKE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(tt.terms)
			matched, matchedTerms := m.Match(tt.msg)
			assert.Equal(t, tt.want, matched)
			assert.Equal(t, tt.wantTerms, matchedTerms)
		})
	}
}

func TestMatcherStampOverwrites(t *testing.T) {
	msg := &core.Message{Text: "ENGINE FIRE"}

	NewMatcher(core.Terms{Terms: []string{"FIRE"}}).Stamp(msg)
	assert.True(t, msg.Matched)
	assert.Equal(t, []string{"FIRE"}, msg.MatchedTerms)

	// A matcher without the term fully overwrites the prior stamp.
	NewMatcher(core.Terms{Terms: []string{"SMOKE"}}).Stamp(msg)
	assert.False(t, msg.Matched)
	assert.Empty(t, msg.MatchedTerms)
}

func TestMatcherIdempotent(t *testing.T) {
	m := NewMatcher(core.Terms{Terms: []string{"FIRE"}})
	msg := &core.Message{Text: "ENGINE FIRE"}

	m.Stamp(msg)
	m.Stamp(msg)
	m.Stamp(msg)

	assert.True(t, msg.Matched)
	assert.Equal(t, []string{"FIRE"}, msg.MatchedTerms)
}
