// Package geoip maps client IPs to country codes for view analytics.
package geoip

import (
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// UnknownCountry is recorded for views whose origin cannot be resolved.
const UnknownCountry = "unknown"

// CountryResolver tags a client IP with an ISO country code. Lookups never
// fail; anything unresolvable is UnknownCountry.
type CountryResolver interface {
	Country(ip string) string
}

// Disabled resolves every lookup to UnknownCountry. Used when no database
// is configured.
type Disabled struct{}

func (Disabled) Country(string) string { return UnknownCountry }

// Resolver provides country lookups backed by a MaxMind GeoIP2 database.
type Resolver struct {
	reader *geoip2.Reader
}

// NewResolver opens the GeoIP database at the given path. An empty path
// yields a Disabled resolver.
func NewResolver(path string) (CountryResolver, error) {
	if strings.TrimSpace(path) == "" {
		return Disabled{}, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return Disabled{}, fmt.Errorf("geoip: open database: %w", err)
	}
	return &Resolver{reader: reader}, nil
}

// Country returns the ISO country code for the IP, or UnknownCountry.
func (r *Resolver) Country(ip string) string {
	if r == nil || r.reader == nil {
		return UnknownCountry
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return UnknownCountry
	}
	record, err := r.reader.Country(parsed)
	if err != nil || record == nil || record.Country.IsoCode == "" {
		return UnknownCountry
	}
	return record.Country.IsoCode
}

// Close closes the underlying database reader.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
