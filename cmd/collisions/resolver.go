package main

import (
	"github.com/couchcryptid/collision-data-etl/internal/adapter/nominatim"
	"github.com/couchcryptid/collision-data-etl/internal/domain"
)

// newResolver builds the geocoding chain: cache, then pacing, then Nominatim,
// or nothing in mock mode. Pacing sits below the cache so hits return
// immediately.
func (c *commandContext) newResolver() *domain.Resolver {
	metrics := processMetrics()

	var geocoder domain.Geocoder
	if c.cfg.GeocodeMock {
		c.logger.Info("mock geocoding enabled")
	} else {
		client := nominatim.NewClient(c.cfg.NominatimURL, c.cfg.NominatimUserAgent, c.cfg.GeocodeTimeout, metrics, c.logger)
		paced := nominatim.NewPacedGeocoder(client, c.cfg.GeocodePacing, nil)
		geocoder = nominatim.NewCachedGeocoder(paced, c.cfg.GeocodeCacheSize, metrics)
		c.logger.Info("nominatim geocoding enabled",
			"url", c.cfg.NominatimURL,
			"cache_size", c.cfg.GeocodeCacheSize,
			"pacing", c.cfg.GeocodePacing,
		)
	}

	return domain.NewResolver(geocoder, c.logger,
		domain.WithPacing(0),
		domain.WithMock(c.cfg.GeocodeMock),
		domain.WithPrefixes(c.rules.Prefixes),
		domain.WithRecorder(metrics),
	)
}
