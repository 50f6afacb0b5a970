package providers

import (
	"io"
	"strconv"
)

func flushResponse(resp io.ReadCloser) {
	io.Copy(io.Discard, resp) // nolint: errcheck
	resp.Close()
}

func formatCoordinate(value float64, bitSize int) string {
	return strconv.FormatFloat(value, 'f', 4, bitSize)
}
