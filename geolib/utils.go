package geolib

import (
	"io"
	"strings"
)

func flushResponse(body io.ReadCloser) {
	io.Copy(io.Discard, body) // nolint: errcheck
	body.Close()
}

// CheckFilename verifies that a name of the file looks like CSV.
func CheckFilename(name string) error {
	if !strings.HasSuffix(name, ".csv") {
		return ErrNotCSV
	}

	return nil
}
