package providers

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"github.com/9seconds/csvgeo/geolib"
)

type maxmindReader interface {
	City(net.IP) (*geoip2.City, error)
	Close() error
}

type maxmindProvider struct {
	db maxmindReader
}

func (m maxmindProvider) Name() string {
	return NameMaxmind
}

func (m maxmindProvider) Lookup(ctx context.Context, ip string) (geolib.Location, error) {
	result := geolib.Location{}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	addr := net.ParseIP(ip)
	if addr == nil {
		return result, geolib.NewLookupError(geolib.FailureParse, ErrInvalidIP)
	}

	record, err := m.db.City(addr)
	if err != nil {
		return result, geolib.NewLookupError(geolib.FailureParse,
			fmt.Errorf("cannot lookup a database: %w", err))
	}

	if record.Location.Latitude == 0 && record.Location.Longitude == 0 {
		return result, geolib.NewLookupError(geolib.FailureParse, ErrNoLocation)
	}

	result.Latitude = formatCoordinate(record.Location.Latitude, 64)
	result.Longitude = formatCoordinate(record.Location.Longitude, 64)

	return result, nil
}

func (m maxmindProvider) Close() error {
	return m.db.Close()
}

// NewMaxmind opens a MaxMind City database (GeoLite2 or GeoIP2) from
// db_path parameter.
func NewMaxmind(parameters map[string]string) (geolib.Provider, error) {
	path := parameters["db_path"]
	if path == "" {
		return nil, ErrDatabasePathIsRequired
	}

	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open maxmind database: %w", err)
	}

	return maxmindProvider{db: db}, nil
}
