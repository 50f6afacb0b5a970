package providers

const (
	// Identifier for ipinfo.io.
	NameIPInfo = "ipinfo"

	// Identifier for MaxMind GeoLite2/GeoIP2 City databases.
	NameMaxmind = "maxmind"

	// Identifier for IP2Location BIN databases.
	NameIP2Location = "ip2location"
)
