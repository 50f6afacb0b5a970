package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/hjson/hjson-go"
	"github.com/qri-io/jsonschema"

	"github.com/9seconds/csvgeo/geolib"
	"github.com/9seconds/csvgeo/providers"
)

const (
	DefaultListen                             = "127.0.0.1:8080"
	DefaultProviderName                       = providers.NameIPInfo
	DefaultHTTPTimeout                        = 10 * time.Second
	DefaultRateLimitInterval                  = 100 * time.Millisecond
	DefaultRateLimitBurst                     = 10
	DefaultRetryAttempts                      = 1
	DefaultCircuitBreakerOpenThreshold        = 20
	DefaultCircuitBreakerHalfOpenTimeout      = 5 * time.Second
	DefaultCircuitBreakerResetFailuresTimeout = 20 * time.Second
)

var configJSONSchema = func() *jsonschema.Schema {
	data := `{
        "type": "object",
        "additionalProperties": false,
        "properties": {
            "listen": {"type": "string", "minLength": 1},
            "ip_column": {"type": "string", "minLength": 1},
            "throttle": {"type": "string", "minLength": 1},
            "workers": {"type": "integer", "minimum": 1},
            "max_upload_size": {"type": "integer", "minimum": 1},
            "provider": {
                "type": "object",
                "additionalProperties": false,
                "properties": {
                    "name": {
                        "type": "string",
                        "enum": ["ipinfo", "maxmind", "ip2location"]
                    },
                    "rate_limit_interval": {"type": "string", "minLength": 1},
                    "rate_limit_burst": {"type": "integer", "minimum": 1},
                    "http_timeout": {"type": "string", "minLength": 1},
                    "retry_attempts": {"type": "integer", "minimum": 1},
                    "circuit_breaker_open_threshold": {"type": "integer", "minimum": 1},
                    "circuit_breaker_half_open_timeout": {"type": "string", "minLength": 1},
                    "circuit_breaker_reset_failures_timeout": {"type": "string", "minLength": 1},
                    "specific_parameters": {
                        "type": "object",
                        "additionalProperties": {"type": "string"}
                    }
                }
            }
        }
    }`

	rv := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(data), rv); err != nil {
		panic(err)
	}

	return rv
}()

type duration struct {
	time.Duration

	set bool
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v interface{}

	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cannot unmarshal duration: %w", err)
	}

	vv, ok := v.(string)
	if !ok {
		return fmt.Errorf("incorrect duration: %v", v)
	}

	dur, err := time.ParseDuration(vv)
	if err != nil {
		return fmt.Errorf("cannot parse duration: %w", err)
	}

	if dur < 0 {
		return fmt.Errorf("duration cannot be negative: %s", vv)
	}

	d.Duration = dur
	d.set = true

	return nil
}

func (d duration) Get(defaultValue time.Duration) time.Duration {
	if d.set {
		return d.Duration
	}

	return defaultValue
}

type config struct {
	Listen        string         `json:"listen"`
	IPColumn      string         `json:"ip_column"`
	Throttle      duration       `json:"throttle"`
	Workers       uint           `json:"workers"`
	MaxUploadSize uint           `json:"max_upload_size"`
	Provider      configProvider `json:"provider"`
}

func (c config) GetListen() string {
	if c.Listen != "" {
		return c.Listen
	}

	return DefaultListen
}

func (c config) GetIPColumn() string {
	if c.IPColumn != "" {
		return c.IPColumn
	}

	return geolib.DefaultIPColumn
}

// GetThrottle returns 0 if user has explicitly disabled a pause between
// lookups.
func (c config) GetThrottle() time.Duration {
	return c.Throttle.Get(geolib.DefaultThrottle)
}

func (c config) GetWorkers() int {
	if c.Workers == 0 {
		return geolib.DefaultWorkers
	}

	return int(c.Workers)
}

func (c config) GetMaxUploadSize() int64 {
	if c.MaxUploadSize == 0 {
		return geolib.DefaultMaxUploadSize
	}

	return int64(c.MaxUploadSize)
}

func (c config) GetProvider() configProvider {
	return c.Provider
}

type configProvider struct {
	Name                               string            `json:"name"`
	RateLimitInterval                  duration          `json:"rate_limit_interval"`
	RateLimitBurst                     uint              `json:"rate_limit_burst"`
	HTTPTimeout                        duration          `json:"http_timeout"`
	RetryAttempts                      uint              `json:"retry_attempts"`
	CircuitBreakerOpenThreshold        uint32            `json:"circuit_breaker_open_threshold"`
	CircuitBreakerHalfOpenTimeout      duration          `json:"circuit_breaker_half_open_timeout"`
	CircuitBreakerResetFailuresTimeout duration          `json:"circuit_breaker_reset_failures_timeout"`
	SpecificParameters                 map[string]string `json:"specific_parameters"`
}

func (c configProvider) GetName() string {
	if c.Name != "" {
		return c.Name
	}

	return DefaultProviderName
}

func (c configProvider) GetRateLimitInterval() time.Duration {
	return c.RateLimitInterval.Get(DefaultRateLimitInterval)
}

func (c configProvider) GetRateLimitBurst() int {
	if c.RateLimitBurst == 0 {
		return DefaultRateLimitBurst
	}

	return int(c.RateLimitBurst)
}

func (c configProvider) GetHTTPTimeout() time.Duration {
	return c.HTTPTimeout.Get(DefaultHTTPTimeout)
}

func (c configProvider) GetRetryAttempts() uint {
	if c.RetryAttempts == 0 {
		return DefaultRetryAttempts
	}

	return c.RetryAttempts
}

func (c configProvider) GetCircuitBreakerOpenThreshold() uint32 {
	if c.CircuitBreakerOpenThreshold == 0 {
		return DefaultCircuitBreakerOpenThreshold
	}

	return c.CircuitBreakerOpenThreshold
}

func (c configProvider) GetCircuitBreakerHalfOpenTimeout() time.Duration {
	return c.CircuitBreakerHalfOpenTimeout.Get(DefaultCircuitBreakerHalfOpenTimeout)
}

func (c configProvider) GetCircuitBreakerResetFailuresTimeout() time.Duration {
	return c.CircuitBreakerResetFailuresTimeout.Get(DefaultCircuitBreakerResetFailuresTimeout)
}

func (c configProvider) GetSpecificParameters() map[string]string {
	rv := make(map[string]string, len(c.SpecificParameters))

	for k, v := range c.SpecificParameters {
		rv[k] = v
	}

	return rv
}

func parseConfig(reader io.Reader) (*config, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if strings.TrimSpace(string(content)) == "" {
		content = []byte("{}")
	}

	rawMap := map[string]interface{}{}

	if err := hjson.Unmarshal(content, &rawMap); err != nil {
		return nil, fmt.Errorf("cannot parse hjson: %w", err)
	}

	rawBytes, err := json.Marshal(rawMap)
	if err != nil {
		return nil, fmt.Errorf("cannot convert config to json: %w", err)
	}

	errs, err := configJSONSchema.ValidateBytes(context.Background(), rawBytes)
	if err != nil {
		return nil, fmt.Errorf("cannot validate config: %w", err)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %w", errs[0])
	}

	conf := &config{}
	if err := json.Unmarshal(rawBytes, conf); err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}

	if _, _, err := net.SplitHostPort(conf.GetListen()); err != nil {
		return nil, fmt.Errorf("incorrect host:port for listen: %w", err)
	}

	return conf, nil
}
