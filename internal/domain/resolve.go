package domain

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultPacing is the pause before every geocoder query. Nominatim's usage
// policy allows at most one request per second.
const DefaultPacing = 1100 * time.Millisecond

// cityJitter bounds the random offset, in degrees, added to city-level
// fallbacks so unresolved reports don't stack on one point (~1 km).
const cityJitter = 0.008

// Tiers reported to a ResolveRecorder.
const (
	TierAddress      = "address"
	TierIntersection = "intersection"
	TierCity         = "city"
	TierMock         = "mock"
	TierNone         = "none"
)

// intersectionRe matches "<street1> at|near|and <street2>".
var intersectionRe = regexp.MustCompile(`([A-Za-z0-9 .-]+)\s+(?:at|near|and)\s+([A-Za-z0-9 .-]+)`)

// ResolveRecorder observes which tier produced each resolution.
type ResolveRecorder interface {
	ObserveResolution(tier string)
}

// Resolver turns a report address into coordinates using three tiers:
// the cleaned address, an extracted street intersection, and finally the
// city centre with jitter. A Resolver is not safe for concurrent use.
type Resolver struct {
	geocoder Geocoder
	logger   *slog.Logger
	clock    clockwork.Clock
	pacing   time.Duration
	rng      *rand.Rand
	mock     bool
	prefixes []string
	recorder ResolveRecorder
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithClock sets the clock used for pacing.
func WithClock(c clockwork.Clock) ResolverOption {
	return func(r *Resolver) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithPacing sets the delay before each geocoder query. Zero disables it.
func WithPacing(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.pacing = d
	}
}

// WithRand sets the random source used for jitter and mock coordinates.
func WithRand(rng *rand.Rand) ResolverOption {
	return func(r *Resolver) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// WithMock makes the resolver answer with synthetic coordinates and never
// call the geocoder. Offline testing only.
func WithMock(enabled bool) ResolverOption {
	return func(r *Resolver) {
		r.mock = enabled
	}
}

// WithPrefixes replaces the address prefixes stripped before the first tier.
func WithPrefixes(prefixes []string) ResolverOption {
	return func(r *Resolver) {
		r.prefixes = prefixes
	}
}

// WithRecorder registers an observer for the winning tier of each call.
func WithRecorder(rec ResolveRecorder) ResolverOption {
	return func(r *Resolver) {
		r.recorder = rec
	}
}

// NewResolver creates a Resolver backed by geocoder. A nil geocoder resolves
// nothing unless mock mode is enabled.
func NewResolver(geocoder Geocoder, logger *slog.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		geocoder: geocoder,
		logger:   logger,
		clock:    clockwork.NewRealClock(),
		pacing:   DefaultPacing,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // jitter, not crypto
		prefixes: DefaultRules().Prefixes,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns coordinates for the address, or false when every tier
// missed. A miss is a normal outcome; collaborator errors are logged and
// treated as "no result" for the tier that raised them.
func (r *Resolver) Resolve(ctx context.Context, address, city, state string) (Coordinates, bool) {
	if r.mock {
		r.record(TierMock)
		return r.mockCoordinates(address, city), true
	}
	if r.geocoder == nil {
		r.record(TierNone)
		return Coordinates{}, false
	}

	cleaned := StripPrefixes(address, r.prefixes)
	if c, ok := r.query(ctx, cleaned); ok {
		r.record(TierAddress)
		return c, true
	}

	if q, ok := IntersectionQuery(cleaned, city, state); ok {
		if c, ok := r.query(ctx, q); ok {
			r.logger.Debug("resolved via intersection", "query", q)
			r.record(TierIntersection)
			return c, true
		}
	}

	r.logger.Debug("falling back to city", "city", city, "state", state)
	if c, ok := r.query(ctx, city+", "+state); ok {
		c.Lat += r.jitter()
		c.Lon += r.jitter()
		r.record(TierCity)
		return c, true
	}

	r.record(TierNone)
	return Coordinates{}, false
}

// query waits out the pacing delay and performs one geocoder lookup.
func (r *Resolver) query(ctx context.Context, q string) (Coordinates, bool) {
	if !r.pace(ctx) {
		return Coordinates{}, false
	}

	result, err := r.geocoder.Search(ctx, q)
	if err != nil {
		r.logger.Warn("geocoding failed", "query", q, "error", err)
		return Coordinates{}, false
	}
	if !result.Found {
		return Coordinates{}, false
	}
	return Coordinates{Lat: result.Lat, Lon: result.Lon}, true
}

func (r *Resolver) pace(ctx context.Context) bool {
	if r.pacing <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-r.clock.After(r.pacing):
		return true
	}
}

func (r *Resolver) jitter() float64 {
	return (r.rng.Float64()*2 - 1) * cityJitter
}

// mockCoordinates scatters San Francisco reports around the city centre and
// everything else across a wide box over California.
func (r *Resolver) mockCoordinates(address, city string) Coordinates {
	if strings.Contains(address, "San Francisco") || city == "San Francisco" {
		return Coordinates{
			Lat: 37.7749 + r.uniform(0.02),
			Lon: -122.4194 + r.uniform(0.02),
		}
	}
	return Coordinates{
		Lat: 37.0 + r.uniform(2),
		Lon: -120.0 + r.uniform(2),
	}
}

func (r *Resolver) uniform(spread float64) float64 {
	return (r.rng.Float64()*2 - 1) * spread
}

func (r *Resolver) record(tier string) {
	if r.recorder != nil {
		r.recorder.ObserveResolution(tier)
	}
}

// StripPrefixes removes known directional and parking-lot prefixes from the
// start of an address, case-insensitively. Prefixes are checked once each,
// in order, against the progressively cleaned string.
func StripPrefixes(address string, prefixes []string) string {
	cleaned := address
	for _, p := range prefixes {
		if p == "" || len(cleaned) < len(p) {
			continue
		}
		if strings.EqualFold(cleaned[:len(p)], p) {
			cleaned = strings.TrimSpace(cleaned[len(p):])
		}
	}
	return cleaned
}

// IntersectionQuery extracts two street names joined by "at", "near", or
// "and" and formats them as "<street1> and <street2>, <city>, <state>".
// Anything after the first comma of the second street is dropped.
func IntersectionQuery(address, city, state string) (string, bool) {
	m := intersectionRe.FindStringSubmatch(address)
	if m == nil {
		return "", false
	}
	street1 := strings.TrimSpace(m[1])
	street2, _, _ := strings.Cut(m[2], ",")
	street2 = strings.TrimSpace(street2)
	return street1 + " and " + street2 + ", " + city + ", " + state, true
}
