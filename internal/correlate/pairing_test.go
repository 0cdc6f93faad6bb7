package correlate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

type mapLookup map[string]*core.MessageGroup

func (m mapLookup) GroupByIdentifier(id string) (*core.MessageGroup, bool) {
	g, ok := m[id]
	return g, ok
}

func groupWithMessages(key string, msgs, alerts int) *core.MessageGroup {
	g := &core.MessageGroup{Key: key}
	for i := 0; i < msgs; i++ {
		g.Messages = append(g.Messages, &core.Message{Matched: i < alerts})
	}
	g.AlertCount = alerts
	g.HasAlerts = alerts > 0
	return g
}

func TestPair(t *testing.T) {
	hexGroup := groupWithMessages("A1B2C3", 3, 1)
	flightGroup := groupWithMessages("UAL123", 2, 0)
	tailGroup := groupWithMessages("N123UA", 5, 2)

	lookup := mapLookup{
		"A1B2C3": hexGroup,
		"UAL123": flightGroup,
		"N123UA": tailGroup,
	}

	tests := []struct {
		name  string
		entry core.PositionEntry
		check func(t *testing.T, p core.PairedAircraft)
	}{
		{
			name:  "hex wins over flight and tail",
			entry: core.PositionEntry{Hex: "a1b2c3", Flight: "UAL123", Tail: "N123UA"},
			check: func(t *testing.T, p core.PairedAircraft) {
				assert.Equal(t, core.MatchHex, p.Strategy)
				assert.Equal(t, "A1B2C3", p.GroupKey)
				assert.True(t, p.HasMessages)
				assert.Equal(t, 3, p.MessageCount)
				assert.True(t, p.HasAlerts)
				assert.Equal(t, 1, p.AlertCount)
			},
		},
		{
			name:  "flight wins over tail when hex misses",
			entry: core.PositionEntry{Hex: "FFFFFF", Flight: " UAL123 ", Tail: "N123UA"},
			check: func(t *testing.T, p core.PairedAircraft) {
				assert.Equal(t, core.MatchFlight, p.Strategy)
				assert.Equal(t, "UAL123", p.GroupKey)
				assert.Equal(t, 2, p.MessageCount)
				assert.False(t, p.HasAlerts)
			},
		},
		{
			name:  "tail match",
			entry: core.PositionEntry{Hex: "FFFFFF", Tail: "n123ua"},
			check: func(t *testing.T, p core.PairedAircraft) {
				assert.Equal(t, core.MatchTail, p.Strategy)
				assert.Equal(t, "N123UA", p.GroupKey)
				assert.Equal(t, 5, p.MessageCount)
				assert.Equal(t, 2, p.AlertCount)
			},
		},
		{
			name:  "no match",
			entry: core.PositionEntry{Hex: "FFFFFF", Flight: "DAL456"},
			check: func(t *testing.T, p core.PairedAircraft) {
				assert.Equal(t, core.MatchNone, p.Strategy)
				assert.Empty(t, p.GroupKey)
				assert.False(t, p.HasMessages)
				assert.Zero(t, p.MessageCount)
				assert.False(t, p.HasAlerts)
				assert.Zero(t, p.AlertCount)
			},
		},
		{
			name:  "whitespace-only flight is absent and never matches",
			entry: core.PositionEntry{Hex: "FFFFFF", Flight: "   "},
			check: func(t *testing.T, p core.PairedAircraft) {
				assert.Equal(t, core.MatchNone, p.Strategy)
			},
		},
		{
			name:  "short type code preferred over long form",
			entry: core.PositionEntry{Hex: "FFFFFF", TypeCode: "B738", TypeLong: "Boeing 737-800"},
			check: func(t *testing.T, p core.PairedAircraft) {
				assert.Equal(t, "B738", p.TypeDesignator)
			},
		},
		{
			name:  "long type form used when short is absent",
			entry: core.PositionEntry{Hex: "FFFFFF", TypeLong: "Boeing 737-800"},
			check: func(t *testing.T, p core.PairedAircraft) {
				assert.Equal(t, "Boeing 737-800", p.TypeDesignator)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Pair(tt.entry, lookup))
		})
	}
}

func TestPair_CopiesFeedAttributes(t *testing.T) {
	entry := core.PositionEntry{
		Hex: "a1b2c3", Flight: "UAL123", Tail: "N123UA", TypeCode: "B738",
		Lat: fptr(37.6), Lon: fptr(-122.4), AltBaro: fptr(35000),
		GS: fptr(450), Track: fptr(270), Category: "A3", DBFlags: 1,
	}
	group := groupWithMessages("A1B2C3", 3, 1)
	lookup := mapLookup{"A1B2C3": group}

	want := core.PairedAircraft{
		PositionEntry:  entry,
		TypeDesignator: "B738",
		Strategy:       core.MatchHex,
		GroupKey:       "A1B2C3",
		HasMessages:    true,
		MessageCount:   3,
		HasAlerts:      true,
		AlertCount:     1,
	}

	if diff := cmp.Diff(want, Pair(entry, lookup)); diff != "" {
		t.Errorf("paired aircraft mismatch (-want +got):\n%s", diff)
	}
}
