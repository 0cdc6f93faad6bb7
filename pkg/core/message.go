package core

// LinkType identifies the decoder/radio link a message arrived on.
type LinkType string

// Known datalink types.
const (
	LinkACARS LinkType = "ACARS"
	LinkVDLM2 LinkType = "VDL-M2"
	LinkHFDL  LinkType = "HFDL"
	LinkIMSL  LinkType = "IMS-L"
	LinkIRDM  LinkType = "IRDM"
)

// LabelValue is one entry of the decoder-specific structured payload.
type LabelValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Message is one decoded datalink transmission.
type Message struct {
	UID       string   `json:"uid"`
	Timestamp float64  `json:"timestamp"`
	StationID string   `json:"station_id"`
	Link      LinkType `json:"link,omitempty"`

	Freq      float64 `json:"freq,omitempty"`
	Level     float64 `json:"level,omitempty"`
	Error     int     `json:"error,omitempty"`
	Label     string  `json:"label,omitempty"`
	LabelType string  `json:"label_type,omitempty"`
	Mode      string  `json:"mode,omitempty"`
	BlockID   string  `json:"block_id,omitempty"`
	Ack       string  `json:"ack,omitempty"`

	// Msgno is the 4-character multi-part sequence identifier.
	// MsgnoParts is the space-separated list of constituent message
	// numbers accumulated by reassembly, e.g. "M01A M02Ax2".
	Msgno      string `json:"msgno,omitempty"`
	MsgnoParts string `json:"msgno_parts,omitempty"`

	Tail     string `json:"tail,omitempty"`
	Flight   string `json:"flight,omitempty"`
	ICAOHex  string `json:"icao_hex,omitempty"`
	ToAddr   int    `json:"toaddr,omitempty"`
	FromAddr int    `json:"fromaddr,omitempty"`

	Text        string       `json:"text,omitempty"`
	Data        string       `json:"data,omitempty"`
	DecodedText string       `json:"decoded_msg,omitempty"`
	Libacars    []LabelValue `json:"libacars,omitempty"`

	Depa  string `json:"depa,omitempty"`
	Dsta  string `json:"dsta,omitempty"`
	Eta   string `json:"eta,omitempty"`
	Gtout string `json:"gtout,omitempty"`
	Gtin  string `json:"gtin,omitempty"`
	Wloff string `json:"wloff,omitempty"`
	Wlin  string `json:"wlin,omitempty"`

	Latitude  *float64 `json:"lat,omitempty"`
	Longitude *float64 `json:"lon,omitempty"`
	Altitude  *float64 `json:"alt,omitempty"`

	IsResponse bool `json:"is_response,omitempty"`
	IsOnground bool `json:"is_onground,omitempty"`

	// Duplicates counts exact repeats folded into this entry.
	Duplicates int `json:"duplicates,omitempty"`

	// Matched and MatchedTerms are the alert stamp. Re-running the
	// matcher fully overwrites both, it never accumulates.
	Matched      bool     `json:"matched,omitempty"`
	MatchedTerms []string `json:"matched_text,omitempty"`
}

// Identifiers is the set of identifier spaces a message can reveal.
type Identifiers struct {
	Hex    string `json:"hex,omitempty"`
	Flight string `json:"flight,omitempty"`
	Tail   string `json:"tail,omitempty"`
}

// Empty reports whether no identifier is known.
func (i Identifiers) Empty() bool {
	return i.Hex == "" && i.Flight == "" && i.Tail == ""
}

// MessageGroup is one aircraft's (or station's) session: the identifiers
// seen so far and the ordered message list, newest-observed last.
type MessageGroup struct {
	Key         string      `json:"key"`
	IDs         Identifiers `json:"ids"`
	Messages    []*Message  `json:"messages"`
	HasAlerts   bool        `json:"has_alerts,omitempty"`
	AlertCount  int         `json:"num_alerts,omitempty"`
	LastUpdated float64     `json:"last_updated"`
}

// Terms is the alert configuration. Both lists are case-insensitive and
// owned by configuration; the correlation core never mutates them.
type Terms struct {
	Terms  []string `json:"terms"`
	Ignore []string `json:"ignore"`
}
