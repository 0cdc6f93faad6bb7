package correlate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

func newTestStore() *Store {
	return NewStore(NewMatcher(core.Terms{Terms: []string{"EMERGENCY"}, Ignore: []string{"TEST"}}), nil)
}

func tailMsg(uid, tail string, ts float64, text string) *core.Message {
	return &core.Message{UID: uid, Timestamp: ts, StationID: "ST1", Tail: tail, Text: text}
}

func TestStoreIngestGrouping(t *testing.T) {
	s := newTestStore()

	r1 := s.Ingest(tailMsg("u1", "N123UA", 1000, "first"))
	assert.Equal(t, ActionAppended, r1.Action)
	assert.Equal(t, "N123UA", r1.GroupKey)

	r2 := s.Ingest(tailMsg("u2", "n123ua ", 1001, "second"))
	assert.Equal(t, ActionAppended, r2.Action)
	assert.Equal(t, "N123UA", r2.GroupKey)

	assert.Equal(t, 1, s.Len())
	g, ok := s.GroupByIdentifier("N123UA")
	require.True(t, ok)
	assert.Len(t, g.Messages, 2)
	assert.Equal(t, 1001.0, g.LastUpdated)
}

func TestStoreIngestIdentifierUnion(t *testing.T) {
	s := newTestStore()

	s.Ingest(tailMsg("u1", "N123UA", 1000, "by tail"))
	m := tailMsg("u2", "N123UA", 1001, "reveals more")
	m.Flight = "UAL123"
	m.ICAOHex = "a1b2c3"
	s.Ingest(m)

	// Later messages can be found by any revealed identifier.
	m3 := &core.Message{UID: "u3", Timestamp: 1002, StationID: "ST1", ICAOHex: "A1B2C3", Text: "by hex"}
	r := s.Ingest(m3)
	assert.Equal(t, "N123UA", r.GroupKey)
	assert.Equal(t, 1, s.Len())

	g, ok := s.GroupByIdentifier("UAL123")
	require.True(t, ok)
	assert.Equal(t, core.Identifiers{Hex: "A1B2C3", Flight: "UAL123", Tail: "N123UA"}, g.IDs)
}

func TestStoreIngestDuplicate(t *testing.T) {
	s := newTestStore()

	s.Ingest(tailMsg("u1", "N123UA", 1000, "same text"))
	r := s.Ingest(tailMsg("u2", "N123UA", 1001, "same text"))
	assert.Equal(t, ActionDuplicate, r.Action)

	g, ok := s.GroupByIdentifier("N123UA")
	require.True(t, ok)
	assert.Len(t, g.Messages, 1)
	assert.Equal(t, 1, g.Messages[0].Duplicates)

	// A duplicate never changes the message count, only the counter.
	s.Ingest(tailMsg("u3", "N123UA", 1002, "same text"))
	assert.Len(t, g.Messages, 1)
	assert.Equal(t, 2, g.Messages[0].Duplicates)
}

func TestStoreIngestContinuationMerges(t *testing.T) {
	s := newTestStore()

	m1 := tailMsg("u1", "N123UA", 1000, "HELLO ")
	m1.Msgno = "A00A"
	s.Ingest(m1)

	m2 := tailMsg("u2", "N123UA", 1002, "WORLD")
	m2.Msgno = "A01A"
	r := s.Ingest(m2)
	assert.Equal(t, ActionMerged, r.Action)

	g, ok := s.GroupByIdentifier("N123UA")
	require.True(t, ok)
	require.Len(t, g.Messages, 1)
	assert.Equal(t, "HELLO WORLD", g.Messages[0].Text)
	assert.Equal(t, "A00A A01A", g.Messages[0].MsgnoParts)
	assert.Equal(t, 1002.0, g.LastUpdated)
}

func TestStoreIngestAlertStamp(t *testing.T) {
	s := newTestStore()

	r := s.Ingest(tailMsg("u1", "N123UA", 1000, "DECLARING EMERGENCY"))
	assert.True(t, r.Matched)

	g, ok := s.GroupByIdentifier("N123UA")
	require.True(t, ok)
	assert.True(t, g.HasAlerts)
	assert.Equal(t, 1, g.AlertCount)

	// The ignore term suppresses the match globally.
	r = s.Ingest(tailMsg("u2", "N123UA", 1001, "EMERGENCY DRILL TEST ONLY"))
	assert.False(t, r.Matched)
	assert.Equal(t, 1, g.AlertCount)
}

func TestStoreIngestUnidentifiedFallback(t *testing.T) {
	s := newTestStore()

	m := &core.Message{UID: "orphan-uid", Timestamp: 1000, StationID: "ST1", Text: "no identity"}
	r := s.Ingest(m)
	assert.Equal(t, ActionAppended, r.Action)
	assert.Equal(t, "orphan-uid", r.GroupKey)
	assert.Equal(t, 1, s.Len())
}

func TestStoreLastUpdatedNeverDecreases(t *testing.T) {
	s := newTestStore()

	s.Ingest(tailMsg("u1", "N123UA", 2000, "newer"))
	s.Ingest(tailMsg("u2", "N123UA", 1500, "older arrives late"))

	g, ok := s.GroupByIdentifier("N123UA")
	require.True(t, ok)
	assert.Equal(t, 2000.0, g.LastUpdated)
}

func snapshotFor(hexes ...string) *core.PositionSnapshot {
	snap := &core.PositionSnapshot{Now: 5000}
	for _, h := range hexes {
		snap.Aircraft = append(snap.Aircraft, core.PositionEntry{Hex: h})
	}
	return snap
}

func storeWithGroups(t *testing.T, groups map[string]float64) *Store {
	t.Helper()
	s := newTestStore()
	for hex, ts := range groups {
		m := &core.Message{UID: "u-" + hex, Timestamp: ts, StationID: "ST1", ICAOHex: hex, Text: "msg " + hex}
		s.Ingest(m)
	}
	return s
}

func TestCullNoopUnderBudget(t *testing.T) {
	s := storeWithGroups(t, map[string]float64{"AAA": 1000, "BBB": 2000})
	dropped := s.Cull(3, nil)
	assert.Zero(t, dropped)
	assert.Equal(t, 2, s.Len())
}

func TestCullProtectsPairedRetainsNewestUnpaired(t *testing.T) {
	// Scenario: two paired groups plus three unpaired, budget 3.
	// The paired pair survives on protection, O3 is the newest
	// unpaired, O1 and O2 drop.
	s := storeWithGroups(t, map[string]float64{
		"U":  1000,
		"D":  2000,
		"O1": 500,
		"O2": 800,
		"O3": 1500,
	})

	dropped := s.Cull(3, snapshotFor("U", "D"))
	assert.Equal(t, 2, dropped)
	assert.Equal(t, 3, s.Len())

	for _, want := range []string{"U", "D", "O3"} {
		_, ok := s.GroupByIdentifier(want)
		assert.True(t, ok, "expected group %s retained", want)
	}
	for _, gone := range []string{"O1", "O2"} {
		_, ok := s.GroupByIdentifier(gone)
		assert.False(t, ok, "expected group %s dropped", gone)
	}
}

func TestCullOverflowKeepsEverything(t *testing.T) {
	// More paired groups than the budget allows: the limit is
	// intentionally violated and nothing drops.
	s := storeWithGroups(t, map[string]float64{"AAA": 1000, "BBB": 2000, "CCC": 1500})

	dropped := s.Cull(1, snapshotFor("AAA", "BBB"))
	assert.Zero(t, dropped)
	assert.Equal(t, 3, s.Len())
}

func TestCullZeroBudgetWithPaired(t *testing.T) {
	s := storeWithGroups(t, map[string]float64{"AAA": 1000})

	dropped := s.Cull(0, snapshotFor("AAA"))
	assert.Zero(t, dropped)
	assert.Equal(t, 1, s.Len())
}

func TestCullNilSnapshotOldestFirst(t *testing.T) {
	s := storeWithGroups(t, map[string]float64{"AAA": 1000, "BBB": 3000, "CCC": 2000})

	dropped := s.Cull(2, nil)
	assert.Equal(t, 1, dropped)

	_, ok := s.GroupByIdentifier("AAA")
	assert.False(t, ok)
	_, ok = s.GroupByIdentifier("BBB")
	assert.True(t, ok)
	_, ok = s.GroupByIdentifier("CCC")
	assert.True(t, ok)
}

func TestCullBudgetConsumedByPaired(t *testing.T) {
	// Paired groups fill the whole budget, every unpaired group drops.
	s := storeWithGroups(t, map[string]float64{"AAA": 1000, "BBB": 2000, "CCC": 3000})

	dropped := s.Cull(2, snapshotFor("AAA", "BBB"))
	assert.Equal(t, 1, dropped)

	_, ok := s.GroupByIdentifier("CCC")
	assert.False(t, ok)
}

func TestCullRebuildsIndex(t *testing.T) {
	s := storeWithGroups(t, map[string]float64{"AAA": 1000, "BBB": 2000})
	s.Cull(1, nil)

	// The dropped group's identifiers no longer resolve; new messages
	// for it create a fresh group.
	r := s.Ingest(&core.Message{UID: "u-new", Timestamp: 3000, StationID: "ST1", ICAOHex: "AAA", Text: "back"})
	assert.Equal(t, ActionAppended, r.Action)
	assert.Equal(t, 2, s.Len())
}

func TestPairAll(t *testing.T) {
	s := storeWithGroups(t, map[string]float64{"AAA": 1000})

	paired := s.PairAll(&core.PositionSnapshot{
		Now: 5000,
		Aircraft: []core.PositionEntry{
			{Hex: "AAA"},
			{Hex: "ZZZ"},
		},
	})
	require.Len(t, paired, 2)
	assert.Equal(t, core.MatchHex, paired[0].Strategy)
	assert.Equal(t, core.MatchNone, paired[1].Strategy)

	assert.Nil(t, s.PairAll(nil))
}

func TestGroupsOrderedNewestFirst(t *testing.T) {
	s := storeWithGroups(t, map[string]float64{"AAA": 1000, "BBB": 3000, "CCC": 2000})

	groups := s.Groups()
	require.Len(t, groups, 3)
	assert.Equal(t, "BBB", groups[0].Key)
	assert.Equal(t, "CCC", groups[1].Key)
	assert.Equal(t, "AAA", groups[2].Key)
}
