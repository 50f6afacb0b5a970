package providers

import (
	"context"
	"fmt"
	"net"

	"github.com/ip2location/ip2location-go/v9"

	"github.com/9seconds/csvgeo/geolib"
)

type ip2locationReader interface {
	Get_all(string) (ip2location.IP2Locationrecord, error) // nolint: revive, stylecheck
	Close()
}

type ip2locationProvider struct {
	db ip2locationReader
}

func (i ip2locationProvider) Name() string {
	return NameIP2Location
}

func (i ip2locationProvider) Lookup(ctx context.Context, ip string) (geolib.Location, error) {
	result := geolib.Location{}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if net.ParseIP(ip) == nil {
		return result, geolib.NewLookupError(geolib.FailureParse, ErrInvalidIP)
	}

	record, err := i.db.Get_all(ip)
	if err != nil {
		return result, geolib.NewLookupError(geolib.FailureParse,
			fmt.Errorf("cannot lookup a database: %w", err))
	}

	if record.Latitude == 0 && record.Longitude == 0 {
		return result, geolib.NewLookupError(geolib.FailureParse, ErrNoLocation)
	}

	result.Latitude = formatCoordinate(float64(record.Latitude), 32)
	result.Longitude = formatCoordinate(float64(record.Longitude), 32)

	return result, nil
}

func (i ip2locationProvider) Close() error {
	i.db.Close()

	return nil
}

// NewIP2Location opens IP2Location BIN database from db_path
// parameter. Only DB5 and higher have coordinates.
func NewIP2Location(parameters map[string]string) (geolib.Provider, error) {
	path := parameters["db_path"]
	if path == "" {
		return nil, ErrDatabasePathIsRequired
	}

	db, err := ip2location.OpenDB(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open ip2location database: %w", err)
	}

	return ip2locationProvider{db: db}, nil
}
