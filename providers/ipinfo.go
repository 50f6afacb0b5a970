package providers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/9seconds/csvgeo/geolib"
)

const ipinfoBaseURL = "https://ipinfo.io/"

type ipinfoResponse struct {
	Loc *string `json:"loc"`
}

type ipinfoProvider struct {
	authToken string
	client    geolib.HTTPClient
}

func (i ipinfoProvider) Name() string {
	return NameIPInfo
}

func (i ipinfoProvider) Lookup(ctx context.Context, ip string) (geolib.Location, error) {
	result := geolib.Location{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.lookupURL(ip), nil)
	if err != nil {
		return result, geolib.NewLookupError(geolib.FailureParse,
			fmt.Errorf("cannot build a request: %w", err))
	}

	req.Header.Set("Accept", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		var statusErr *geolib.HTTPStatusError

		switch {
		case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests:
			return result, geolib.NewLookupError(geolib.FailureRateLimited, err)
		case errors.As(err, &statusErr):
			return result, geolib.NewLookupError(geolib.FailureStatus, err)
		}

		return result, geolib.NewLookupError(geolib.FailureNetwork,
			fmt.Errorf("cannot send a request: %w", err))
	}

	defer flushResponse(resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return result, geolib.NewLookupError(geolib.FailureStatus,
			fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	jsonResponse := ipinfoResponse{}
	jsonDecoder := json.NewDecoder(bufio.NewReader(resp.Body))

	if err := jsonDecoder.Decode(&jsonResponse); err != nil {
		return result, geolib.NewLookupError(geolib.FailureParse,
			fmt.Errorf("cannot parse a response: %w", err))
	}

	if jsonResponse.Loc == nil {
		return result, geolib.NewLookupError(geolib.FailureParse, ErrNoLocation)
	}

	result, err = geolib.ParseLocation(*jsonResponse.Loc)
	if err != nil {
		return result, geolib.NewLookupError(geolib.FailureParse, err)
	}

	return result, nil
}

func (i ipinfoProvider) lookupURL(ip string) string {
	rv := ipinfoBaseURL + url.PathEscape(ip) + "/json"

	if i.authToken != "" {
		rv += "?" + url.Values{"token": []string{i.authToken}}.Encode()
	}

	return rv
}

// NewIPInfo creates a provider for https://ipinfo.io. An optional
// auth_token parameter is sent as a token query parameter.
func NewIPInfo(client geolib.HTTPClient, parameters map[string]string) geolib.Provider {
	return ipinfoProvider{
		authToken: parameters["auth_token"],
		client:    client,
	}
}
