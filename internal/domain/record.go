package domain

import "encoding/json"

// Severity is the injury outcome of a collision.
type Severity string

const (
	SeverityFatality       Severity = "Fatality"
	SeverityInjury         Severity = "Injury"
	SeverityPropertyDamage Severity = "Property Damage Only"
)

// CollisionType is the keyword-derived collision category.
type CollisionType string

const (
	CollisionRearEnd          CollisionType = "Rear-end"
	CollisionSideswipe        CollisionType = "Sideswipe"
	CollisionStationaryObject CollisionType = "Stationary Object"
	CollisionBroadside        CollisionType = "Broadside"
	CollisionOther            CollisionType = "Other"
)

// Record shapes reported in logs, metrics, and message headers.
const (
	ShapeForm        = "form"
	ShapePassthrough = "passthrough"
)

// RawRecord is one undecoded input document and its 0-based position in the input.
type RawRecord struct {
	Index int
	Value json.RawMessage
}

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lon float64
}

// NormalizedRecord is the canonical output schema consumed by the map and
// analytics views. Lat and Lon are null when no geocoding tier succeeded.
type NormalizedRecord struct {
	ID            string        `json:"id"`
	Date          string        `json:"date"`
	Time          string        `json:"time"`
	Manufacturer  string        `json:"manufacturer"`
	Location      string        `json:"location"`
	City          string        `json:"city"`
	CollisionType CollisionType `json:"collision_type"`
	Severity      Severity      `json:"severity"`
	ControlState  string        `json:"control_state"`
	Description   string        `json:"description"`
	Lat           *float64      `json:"lat"`
	Lon           *float64      `json:"lon"`
}

// Record is the result of normalizing one RawRecord. Exactly one of
// Normalized or Raw is meaningful: form-shape inputs produce Normalized,
// everything else is carried through verbatim in Raw.
type Record struct {
	ID         string
	Normalized *NormalizedRecord
	Raw        json.RawMessage
}

// Shape reports whether the record was normalized or passed through.
func (r Record) Shape() string {
	if r.Normalized != nil {
		return ShapeForm
	}
	return ShapePassthrough
}

// MarshalJSON emits the normalized record, or the original bytes for pass-through records.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.Normalized != nil {
		return json.Marshal(r.Normalized)
	}
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}
