package correlate

import (
	"strconv"
	"strings"

	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

// continuationWindow is the correlation window in seconds. Fragments
// arriving this far apart (or out of temporal order) are independent
// messages even when station and msgno coincide.
const continuationWindow = 8.0

// RedecodeFunc re-derives the decoded description and structured
// payload from merged text. Returning an error leaves the previous
// payload untouched.
type RedecodeFunc func(text string) (decoded string, libacars []core.LabelValue, err error)

// IsContinuation reports whether incoming is a fragment of existing.
// Both must come from the same station, carry a non-empty 4-character
// msgno, and arrive within the correlation window. The msgno pair must
// match the AzzA pattern (characters 0 and 3 equal across both numbers,
// e.g. A00A then A01A) or, failing that, the AAAz pattern (first three
// characters equal, e.g. AAA1 then AAA2).
func IsContinuation(existing, incoming *core.Message) bool {
	if existing.StationID != incoming.StationID {
		return false
	}
	if len(existing.Msgno) != 4 || len(incoming.Msgno) != 4 {
		return false
	}
	dt := incoming.Timestamp - existing.Timestamp
	if dt < 0 || dt >= continuationWindow {
		return false
	}
	if existing.Msgno[0] == incoming.Msgno[0] && existing.Msgno[3] == incoming.Msgno[3] {
		return true
	}
	return existing.Msgno[:3] == incoming.Msgno[:3]
}

// Merge folds incoming into existing in place. The timestamp advances,
// text is concatenated, the parts list gains the incoming msgno (or a
// repetition-suffix bump when that msgno was already seen), and the
// structured payload is re-derived from the merged text. A re-decode
// failure keeps the previous payload; the merge still completes.
func Merge(existing, incoming *core.Message, redecode RedecodeFunc) {
	existing.Timestamp = incoming.Timestamp

	switch {
	case existing.Text != "" && incoming.Text != "":
		existing.Text += incoming.Text
	case incoming.Text != "":
		existing.Text = incoming.Text
	}

	if existing.MsgnoParts == "" {
		existing.MsgnoParts = existing.Msgno
	}
	existing.MsgnoParts = appendPart(existing.MsgnoParts, incoming.Msgno)

	if redecode != nil && existing.Text != "" {
		decoded, libacars, err := redecode(existing.Text)
		if err == nil {
			existing.DecodedText = decoded
			existing.Libacars = libacars
		}
	}
}

// appendPart adds msgno to a space-separated parts list. A msgno whose
// token is already present gets a repetition suffix instead of a new
// token: M01A, then M01Ax2, then M01Ax3. Tokens with a malformed suffix
// (non-numeric after the x) are left alone and the msgno is appended as
// a fresh token.
func appendPart(parts, msgno string) string {
	if msgno == "" {
		return parts
	}

	tokens := strings.Fields(parts)
	for i, tok := range tokens {
		base, count, ok := splitRepetition(tok)
		if !ok || base != msgno {
			continue
		}
		tokens[i] = msgno + "x" + strconv.Itoa(count+1)
		return strings.Join(tokens, " ")
	}

	tokens = append(tokens, msgno)
	return strings.Join(tokens, " ")
}

// splitRepetition decomposes a parts token into its 4-character msgno
// and repetition count. A bare token counts once. Returns ok=false for
// tokens that are not a 4-character msgno with an optional well-formed
// numeric suffix.
func splitRepetition(tok string) (base string, count int, ok bool) {
	if len(tok) == 4 {
		return tok, 1, true
	}
	if len(tok) < 6 || tok[4] != 'x' {
		return "", 0, false
	}
	n, err := strconv.Atoi(tok[5:])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return tok[:4], n, true
}
