package correlate

import (
	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

// IsDuplicate reports whether incoming is an exact repeat of existing
// over the fixed dedup field set: the payload fields (text, data,
// decoded description, structured payload), the four airport/time
// fields, and the three navigation fields. Fields outside this set
// (timestamps, uid, msgno) do not participate.
//
// A field is equal when both sides are absent or both hold identical
// values; present-vs-absent is a mismatch. When true the caller
// increments existing.Duplicates and must not append incoming as a new
// entry.
func IsDuplicate(existing, incoming *core.Message) bool {
	if existing.Text != incoming.Text {
		return false
	}
	if existing.Data != incoming.Data {
		return false
	}
	if existing.DecodedText != incoming.DecodedText {
		return false
	}
	if !libacarsEqual(existing.Libacars, incoming.Libacars) {
		return false
	}
	if existing.Depa != incoming.Depa ||
		existing.Dsta != incoming.Dsta ||
		existing.Eta != incoming.Eta ||
		existing.Gtout != incoming.Gtout {
		return false
	}
	if !floatPtrEqual(existing.Latitude, incoming.Latitude) ||
		!floatPtrEqual(existing.Longitude, incoming.Longitude) ||
		!floatPtrEqual(existing.Altitude, incoming.Altitude) {
		return false
	}
	return true
}

func libacarsEqual(a, b []core.LabelValue) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
