package domain

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Form-shape section keys.
const (
	keyFormType       = "form_type"
	keyManufacturer   = "section_1_manufacturer"
	keyVehicle1       = "section_2_vehicle_1"
	keyInjuryProperty = "section_4_injury_property"
	keyAccident       = "section_5_accident_details"
)

// DefaultState is used when a report carries no location state.
const DefaultState = "CA"

// minGeocodeLength is the location length, in characters, a report must
// exceed before it is sent to the resolver.
const minGeocodeLength = 5

// LocationResolver resolves an address to coordinates. *Resolver implements it.
type LocationResolver interface {
	Resolve(ctx context.Context, address, city, state string) (Coordinates, bool)
}

// Normalizer converts raw report documents into NormalizedRecords.
type Normalizer struct {
	resolver     LocationResolver
	rules        []CollisionRule
	defaultState string
	logger       *slog.Logger
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithCollisionRules replaces the collision keyword table.
func WithCollisionRules(rules []CollisionRule) NormalizerOption {
	return func(n *Normalizer) {
		n.rules = rules
	}
}

// WithDefaultState sets the state assumed for reports without one.
func WithDefaultState(state string) NormalizerOption {
	return func(n *Normalizer) {
		if state != "" {
			n.defaultState = state
		}
	}
}

// NewNormalizer creates a Normalizer. Pass a nil resolver to skip geocoding.
func NewNormalizer(resolver LocationResolver, logger *slog.Logger, opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		resolver:     resolver,
		rules:        DefaultRules().CollisionRules,
		defaultState: DefaultState,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ReportID returns the output id for the record at the 0-based index.
func ReportID(index int) string {
	return "report-" + strconv.Itoa(index+1)
}

// IsFormShape reports whether a decoded document uses the sectioned
// accident-report layout.
func IsFormShape(doc map[string]any) bool {
	_, hasType := doc[keyFormType]
	_, hasManufacturer := doc[keyManufacturer]
	return hasType || hasManufacturer
}

// Normalize converts one raw record. Form-shape documents are extracted,
// classified, and geocoded; anything else, including non-objects, is
// passed through unchanged. Missing fields fall back to defaults and never
// fail the record.
func (n *Normalizer) Normalize(ctx context.Context, raw RawRecord) Record {
	id := ReportID(raw.Index)

	var doc map[string]any
	if err := json.Unmarshal(raw.Value, &doc); err != nil || doc == nil || !IsFormShape(doc) {
		return Record{ID: id, Raw: raw.Value}
	}

	rec, state := n.extract(doc)
	rec.ID = id

	if utf8.RuneCountInString(rec.Location) > minGeocodeLength && n.resolver != nil {
		n.logger.Debug("geocoding", "id", id, "location", rec.Location)
		if c, ok := n.resolver.Resolve(ctx, rec.Location, rec.City, state); ok {
			lat, lon := c.Lat, c.Lon
			rec.Lat, rec.Lon = &lat, &lon
		} else {
			n.logger.Info("location unresolved", "id", id, "location", rec.Location)
		}
	}

	return Record{ID: id, Normalized: &rec}
}

// extract reads the form sections into a NormalizedRecord without
// coordinates, and returns the effective state for geocoding.
func (n *Normalizer) extract(doc map[string]any) (NormalizedRecord, string) {
	manufacturer := section(doc, keyManufacturer)
	vehicle := section(doc, keyVehicle1)
	injury := section(doc, keyInjuryProperty)
	accident := section(doc, keyAccident)

	narrative := stringField(accident, "narrative_summary", "")

	address := stringField(vehicle, "location_address", "")
	city := stringField(vehicle, "location_city", "")
	state := stringField(vehicle, "location_state", "")
	if strings.TrimSpace(state) == "" {
		state = n.defaultState
	}
	if city == "" && strings.Contains(narrative, "San Francisco") {
		city = "San Francisco"
	}

	return NormalizedRecord{
		Date:          stringField(vehicle, "date_of_accident", ""),
		Time:          stringField(vehicle, "time_of_accident_local", ""),
		Manufacturer:  stringField(manufacturer, "manufacturer_name", "Unknown"),
		Location:      JoinLocation(address, city, state),
		City:          city,
		CollisionType: ClassifyCollision(n.rules, narrative, stringField(injury, "property_damage_description", "")),
		Severity:      ClassifySeverity(persons(injury)),
		ControlState:  stringField(accident, "mode", "Unknown"),
		Description:   narrative,
	}, state
}

// JoinLocation assembles "address, city, state", skipping empty parts and
// trimming stray separators from both ends.
func JoinLocation(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Trim(strings.Join(kept, ", "), ", ")
}

func persons(injury map[string]any) []Person {
	list, _ := injury["persons"].([]any)
	out := make([]Person, 0, len(list))
	for _, item := range list {
		p, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Person{Deceased: truthy(p["deceased"]), Injured: truthy(p["injured"])})
	}
	return out
}

// section returns the nested object at key, or nil when absent or not an object.
func section(doc map[string]any, key string) map[string]any {
	m, _ := doc[key].(map[string]any)
	return m
}

// stringField reads a scalar field as text. Missing, null, and structured
// values yield def.
func stringField(m map[string]any, key, def string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return def
	}
}

// truthy follows loose JSON truthiness: false, 0, "", null, and empty
// containers are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
