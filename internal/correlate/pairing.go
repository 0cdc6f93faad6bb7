package correlate

import (
	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

// GroupLookup resolves a normalized identifier to its owning group.
type GroupLookup interface {
	GroupByIdentifier(id string) (*core.MessageGroup, bool)
}

// pairing strategies in priority order. First hit wins; evaluation
// short-circuits so a hex match shadows flight and tail matches.
var strategies = []struct {
	tag  core.MatchStrategy
	pick func(ids core.Identifiers) string
}{
	{core.MatchHex, func(ids core.Identifiers) string { return ids.Hex }},
	{core.MatchFlight, func(ids core.Identifiers) string { return ids.Flight }},
	{core.MatchTail, func(ids core.Identifiers) string { return ids.Tail }},
}

// Pair joins one position feed entry with at most one message group.
// All raw feed attributes are copied through; the derived message
// fields stay zero when no group matches.
func Pair(entry core.PositionEntry, groups GroupLookup) core.PairedAircraft {
	paired := core.PairedAircraft{
		PositionEntry:  entry,
		TypeDesignator: typeDesignator(entry),
		Strategy:       core.MatchNone,
	}

	ids := IdentifiersFromPosition(entry)
	for _, s := range strategies {
		id := s.pick(ids)
		if id == "" {
			continue
		}
		group, ok := groups.GroupByIdentifier(id)
		if !ok {
			continue
		}
		paired.Strategy = s.tag
		paired.GroupKey = group.Key
		paired.HasMessages = len(group.Messages) > 0
		paired.MessageCount = len(group.Messages)
		paired.HasAlerts = group.HasAlerts
		paired.AlertCount = group.AlertCount
		break
	}
	return paired
}

// typeDesignator prefers the short-form type code over the long form.
func typeDesignator(entry core.PositionEntry) string {
	if entry.TypeCode != "" {
		return entry.TypeCode
	}
	return entry.TypeLong
}
