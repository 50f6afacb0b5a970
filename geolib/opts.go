package geolib

import "time"

const (
	DefaultIPColumn = "lastip"
	DefaultThrottle = 200 * time.Millisecond
	DefaultWorkers  = 1

	ColumnLatitude  = "latitude"
	ColumnLongitude = "longitude"
)

type Opts struct {
	// IPColumn is a name of the column with IP addresses. It is
	// matched case-insensitively, surrounding whitespaces are ignored.
	IPColumn string

	// Throttle is a pause after each attempted lookup. Negative value
	// disables it.
	Throttle time.Duration

	// Workers is a number of concurrent lookups within a single run.
	// Rows are written in the original order anyway.
	Workers int
}

func (o Opts) ipColumn() string {
	if o.IPColumn != "" {
		return o.IPColumn
	}

	return DefaultIPColumn
}

func (o Opts) throttle() time.Duration {
	switch {
	case o.Throttle < 0:
		return 0
	case o.Throttle == 0:
		return DefaultThrottle
	}

	return o.Throttle
}

func (o Opts) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}

	return DefaultWorkers
}
