package core

// PositionEntry is one live aircraft record from the position feed
// (tar1090 aircraft.json shape). Consumed read-only.
type PositionEntry struct {
	Hex      string   `json:"hex"`
	Flight   string   `json:"flight,omitempty"`
	Tail     string   `json:"r,omitempty"`
	TypeCode string   `json:"t,omitempty"`
	TypeLong string   `json:"type,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	AltBaro  *float64 `json:"alt_baro,omitempty"`
	GS       *float64 `json:"gs,omitempty"`
	Track    *float64 `json:"track,omitempty"`
	Category string   `json:"category,omitempty"`
	DBFlags  int      `json:"dbFlags,omitempty"`
}

// PositionSnapshot is the full position feed at one point in time.
// Treated as an immutable value for the duration of one pairing or
// culling pass.
type PositionSnapshot struct {
	Now      float64         `json:"now"`
	Aircraft []PositionEntry `json:"aircraft"`
}

// MatchStrategy tags which identifier space paired a position entry to
// a message group.
type MatchStrategy string

// Pairing strategies in priority order.
const (
	MatchHex    MatchStrategy = "hex"
	MatchFlight MatchStrategy = "flight"
	MatchTail   MatchStrategy = "tail"
	MatchNone   MatchStrategy = "none"
)

// PairedAircraft joins one position entry with at most one message
// group. Derived and ephemeral, never stored.
type PairedAircraft struct {
	PositionEntry

	// TypeDesignator prefers the short-form type code over the
	// long-form one when both are present.
	TypeDesignator string        `json:"type_designator,omitempty"`
	Strategy       MatchStrategy `json:"strategy"`
	GroupKey       string        `json:"group_key,omitempty"`
	HasMessages    bool          `json:"has_messages"`
	MessageCount   int           `json:"message_count"`
	HasAlerts      bool          `json:"has_alerts"`
	AlertCount     int           `json:"alert_count"`

	// Range/bearing from the receiver site, when station coordinates
	// are configured and the entry has a position.
	RangeKm    *float64 `json:"range_km,omitempty"`
	BearingDeg *float64 `json:"bearing_deg,omitempty"`
}
