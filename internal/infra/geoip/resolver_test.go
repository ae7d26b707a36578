package geoip

import "testing"

func TestCountryDefaultsToUnknown(t *testing.T) {
	if got := (Disabled{}).Country("8.8.8.8"); got != UnknownCountry {
		t.Fatalf("Disabled.Country() = %q, want %q", got, UnknownCountry)
	}

	var r *Resolver
	if got := r.Country("8.8.8.8"); got != UnknownCountry {
		t.Fatalf("nil resolver Country() = %q, want %q", got, UnknownCountry)
	}
	if got := (&Resolver{}).Country("not-an-ip"); got != UnknownCountry {
		t.Fatalf("Country(invalid ip) = %q, want %q", got, UnknownCountry)
	}
}

func TestNewResolverWithoutDatabase(t *testing.T) {
	res, err := NewResolver("  ")
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	if _, ok := res.(Disabled); !ok {
		t.Fatalf("NewResolver(\"\") = %T, want Disabled", res)
	}
}
