package nominatim

import (
	"context"
	"time"

	"github.com/couchcryptid/collision-data-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// PacedGeocoder waits a fixed interval before every call to the wrapped
// geocoder. Placed under CachedGeocoder, only lookups that reach the
// service are delayed.
type PacedGeocoder struct {
	inner    domain.Geocoder
	interval time.Duration
	clock    clockwork.Clock
}

// NewPacedGeocoder creates a pacing decorator. A nil clock uses the real one.
func NewPacedGeocoder(inner domain.Geocoder, interval time.Duration, clock clockwork.Clock) *PacedGeocoder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PacedGeocoder{inner: inner, interval: interval, clock: clock}
}

func (p *PacedGeocoder) Search(ctx context.Context, query string) (domain.GeocodingResult, error) {
	if p.interval > 0 {
		select {
		case <-ctx.Done():
			return domain.GeocodingResult{}, ctx.Err()
		case <-p.clock.After(p.interval):
		}
	}
	return p.inner.Search(ctx, query)
}
