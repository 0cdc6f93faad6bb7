package correlate

import (
	"strings"

	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

// NormalizeIdentifier trims whitespace and upper-cases an identifier.
// Returns "" for empty or whitespace-only input, which callers treat as
// absent: an absent identifier can never match.
func NormalizeIdentifier(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// IdentifiersFromMessage extracts the normalized identifier set a
// message reveals.
func IdentifiersFromMessage(m *core.Message) core.Identifiers {
	return core.Identifiers{
		Hex:    NormalizeIdentifier(m.ICAOHex),
		Flight: NormalizeIdentifier(m.Flight),
		Tail:   NormalizeIdentifier(m.Tail),
	}
}

// IdentifiersFromPosition extracts the normalized identifier set of a
// position feed entry.
func IdentifiersFromPosition(e core.PositionEntry) core.Identifiers {
	return core.Identifiers{
		Hex:    NormalizeIdentifier(e.Hex),
		Flight: NormalizeIdentifier(e.Flight),
		Tail:   NormalizeIdentifier(e.Tail),
	}
}
