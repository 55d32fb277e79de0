// Package geo resolves client IPs to country names.
package geo

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// Unknown is recorded when a country cannot be determined.
const Unknown = "Unknown"

// ErrInvalidIP is returned for addresses that do not parse.
var ErrInvalidIP = errors.New("invalid ip address")

// Locator looks up the country of an IP address.
type Locator interface {
	Country(ctx context.Context, ip string) (string, error)
}

// GeoIP2 reads a MaxMind country or city database.
type GeoIP2 struct {
	reader *geoip2.Reader
}

// Open loads the database at path.
func Open(path string) (*GeoIP2, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database %s: %w", path, err)
	}

	return &GeoIP2{reader: reader}, nil
}

func (g *GeoIP2) Country(_ context.Context, ip string) (string, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidIP, ip)
	}

	record, err := g.reader.Country(parsed)
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", ip, err)
	}

	if name := record.Country.Names["en"]; name != "" {
		return name, nil
	}

	return Unknown, nil
}

// Shutdown closes the database.
func (g *GeoIP2) Shutdown() error {
	return g.reader.Close()
}

// Static answers every lookup with the same country.
type Static string

func (s Static) Country(context.Context, string) (string, error) {
	return string(s), nil
}

// Lookup returns the country for ip, or Unknown when the locator fails.
// The error is returned so callers can log it.
func Lookup(ctx context.Context, l Locator, ip string) (string, error) {
	if l == nil {
		return Unknown, nil
	}

	country, err := l.Country(ctx, ip)
	if err != nil {
		return Unknown, err
	}

	if country == "" {
		return Unknown, nil
	}

	return country, nil
}
