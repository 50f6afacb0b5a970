package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/9seconds/csvgeo/geolib"
	"github.com/9seconds/csvgeo/providers"
)

const envIPInfoToken = "CSVGEO_IPINFO_TOKEN"

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

// loadEnvFile populates environment from .env file. A missing file is
// not an error, variables which are already set are not overridden.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot load env file %s: %w", path, err)
	}

	return nil
}

func makeProvider(conf configProvider) (geolib.Provider, error) {
	params := conf.GetSpecificParameters()

	switch conf.GetName() {
	case providers.NameIPInfo:
		if params["auth_token"] == "" {
			params["auth_token"] = os.Getenv(envIPInfoToken)
		}

		return providers.NewIPInfo(makeNewHTTPClient(conf), params), nil
	case providers.NameMaxmind:
		prov, err := providers.NewMaxmind(params)
		if err != nil {
			return nil, fmt.Errorf("cannot create maxmind provider: %w", err)
		}

		return prov, nil
	case providers.NameIP2Location:
		prov, err := providers.NewIP2Location(params)
		if err != nil {
			return nil, fmt.Errorf("cannot create ip2location provider: %w", err)
		}

		return prov, nil
	}

	return nil, fmt.Errorf("unsupported provider name: %s", conf.GetName())
}

func makeNewHTTPClient(conf configProvider) geolib.HTTPClient {
	httpClient := &http.Client{
		Timeout: conf.GetHTTPTimeout(),
	}

	return geolib.NewHTTPClient(httpClient,
		"csvgeo/"+version,
		conf.GetRateLimitInterval(),
		conf.GetRateLimitBurst(),
		conf.GetCircuitBreakerOpenThreshold(),
		conf.GetCircuitBreakerHalfOpenTimeout(),
		conf.GetCircuitBreakerResetFailuresTimeout(),
		conf.GetRetryAttempts())
}

func makeOpts(conf *config) geolib.Opts {
	throttle := conf.GetThrottle()
	if throttle == 0 {
		throttle = -1
	}

	return geolib.Opts{
		IPColumn: conf.GetIPColumn(),
		Throttle: throttle,
		Workers:  conf.GetWorkers(),
	}
}

func closeProvider(provider geolib.Provider) error {
	if closer, ok := provider.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
