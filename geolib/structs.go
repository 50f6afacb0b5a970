package geolib

import "strings"

type Location struct {
	Latitude  string
	Longitude string
}

func (l Location) OK() bool {
	return l.Latitude != "" && l.Longitude != ""
}

// ParseLocation converts "<latitude>,<longitude>" into a Location.
func ParseLocation(loc string) (Location, error) {
	parts := strings.Split(loc, ",")
	if len(parts) != 2 {
		return Location{}, ErrBadLocation
	}

	rv := Location{
		Latitude:  strings.TrimSpace(parts[0]),
		Longitude: strings.TrimSpace(parts[1]),
	}

	if !rv.OK() {
		return Location{}, ErrBadLocation
	}

	return rv, nil
}

type RunCounters struct {
	Processed uint64 `json:"processed"`
	Success   uint64 `json:"success"`
	Failed    uint64 `json:"failed"`
}
