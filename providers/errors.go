package providers

import "errors"

var (
	// ErrDatabasePathIsRequired is returned if you are trying to
	// initialize an offline provider without a path to its database.
	ErrDatabasePathIsRequired = errors.New("database path is required")

	// ErrInvalidIP is returned if a value of the cell is not an IP
	// address.
	ErrInvalidIP = errors.New("invalid IP address")

	// ErrNoLocation is returned if provider knows nothing about
	// coordinates of the IP address.
	ErrNoLocation = errors.New("location is unknown")
)
