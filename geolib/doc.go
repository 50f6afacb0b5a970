// This package provides a set of structs and functions which are used
// to enrich CSV files with geographic coordinates of IP addresses.
//
// geolib is core of the csvgeo project. The rest of the application is
// an example on how to use this library: how to configure providers,
// how to wire logging, how to serve it over HTTP or run it against
// local files.
//
// Processor is a main entity of the geolib. It reads a CSV stream,
// finds a column with IP addresses, asks a Provider for a location of
// each address and writes the same rows with latitude and longitude
// columns appended. Lookup failures never fail a run: such rows get
// empty coordinates and are counted in RunCounters.
//
// Processor can be served over HTTP, see NewHTTPHandler.
package geolib
