// csvgeo is a service which adds geographic coordinates of IP
// addresses to CSV files.
//
// You upload a CSV with a lastip column and get the same file back with
// latitude and longitude columns appended to each row. Coordinates are
// taken from ipinfo.io or from offline MaxMind or IP2Location
// databases.
//
// Tool itself is organized into 3 logical parts:
//
// Geolib
//
// geolib is a main package of the application. It contains Processor
// which reads CSV, resolves IP addresses and writes enriched CSV, an
// HTTP handler with an upload form and a rate-limited HTTP client for
// online providers.
//
// Providers
//
// This package has a set of provider implementations: ipinfo, maxmind
// and ip2location.
//
// Csvgeo
//
// A main package wires both geolib and providers. Resulting binary can
// either run an HTTP server (serve command) or process a local file
// (process command).
package main
