// Package domain models autonomous-vehicle collision reports and the rules
// that normalize them.
//
// # Input Shapes
//
// Report dumps arrive as a JSON array, a single JSON object, or a run of
// objects written back to back with no separator ("{...}{...}"). LoadRecords
// tries the whole buffer as one JSON value first and only falls back to the
// StreamDecoder when that fails. The stream decoder stops quietly at the
// first undecodable byte; whatever was decoded before it is kept.
//
// Each record is one of:
//
//	Form shape: the sectioned report layout, detected by a "form_type" or
//	"section_1_manufacturer" key. Fields are read from
//	section_1_manufacturer, section_2_vehicle_1, section_4_injury_property,
//	and section_5_accident_details.
//
//	Legacy shape: anything else. Already in the output schema, emitted verbatim.
//
// # Classification
//
// Severity:
//
//	Fatality if any listed person is deceased, else Injury if any is
//	injured, else Property Damage Only.
//
// Collision type is keyword-driven over the narrative plus the property
// damage description, first match wins:
//
//	"rear-end", "rear end"             -> Rear-end
//	"side-swipe", "sideswipe", "brush" -> Sideswipe
//	"stationary object", "parked"      -> Stationary Object
//	"broadside", "t-bone"              -> Broadside
//	otherwise                          -> Other
//
// # Geocoding Tiers
//
// Resolver tries, in order: the address with directional and parking-lot
// prefixes removed; a "<street1> and <street2>, <city>, <state>" query when
// the address names an intersection; and "<city>, <state>" with up to
// ±0.008° of random jitter. Every geocoder query waits DefaultPacing first.
// A miss on every tier leaves lat/lon null and the record is still emitted.
//
// # IDs
//
// Output ids are "report-<n>" with n the 1-based input position, so they are
// unique and increasing regardless of classification or geocoding outcome.
package domain
