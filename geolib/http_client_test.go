package geolib_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mccutchen/go-httpbin/httpbin"
	"github.com/stretchr/testify/suite"

	"github.com/9seconds/csvgeo/geolib"
)

type HTTPClientTestSuite struct {
	suite.Suite

	httpbinEndpoint *httptest.Server
	c               geolib.HTTPClient
}

func (suite *HTTPClientTestSuite) SetupSuite() {
	suite.httpbinEndpoint = httptest.NewServer(httpbin.NewHTTPBin().Handler())
}

func (suite *HTTPClientTestSuite) TearDownSuite() {
	suite.httpbinEndpoint.Close()
}

func (suite *HTTPClientTestSuite) SetupTest() {
	suite.c = geolib.NewHTTPClient(suite.httpbinEndpoint.Client(),
		"test",
		100*time.Millisecond,
		1,
		5,
		time.Minute,
		time.Minute,
		1)
}

func (suite *HTTPClientTestSuite) TestRateLimiter() {
	now := time.Now()
	wg := &sync.WaitGroup{}

	wg.Add(10)

	for i := 0; i < 10; i++ {
		go func() {
			defer wg.Done()

			req, _ := http.NewRequest(http.MethodGet, suite.httpbinEndpoint.URL+"/get", nil)
			resp, err := suite.c.Do(req)

			suite.NoError(err)
			suite.Equal(http.StatusOK, resp.StatusCode)
			resp.Body.Close()
		}()
	}

	wg.Wait()

	suite.True(time.Since(now) > 800*time.Millisecond)
	suite.WithinDuration(now, time.Now(), 12*100*time.Millisecond)
}

func (suite *HTTPClientTestSuite) TestUserAgent() {
	req, _ := http.NewRequest(http.MethodGet, suite.httpbinEndpoint.URL+"/user-agent", nil)
	resp, err := suite.c.Do(req)

	suite.Require().NoError(err)

	defer resp.Body.Close()

	data := &bytes.Buffer{}
	data.ReadFrom(resp.Body) // nolint: errcheck

	suite.Contains(data.String(), `"test"`)
}

func (suite *HTTPClientTestSuite) TestBadStatus() {
	req, _ := http.NewRequest(http.MethodGet, suite.httpbinEndpoint.URL+"/status/500", nil)
	_, err := suite.c.Do(req)

	var statusErr *geolib.HTTPStatusError

	suite.True(errors.As(err, &statusErr))
	suite.Equal(http.StatusInternalServerError, statusErr.StatusCode)
}

func (suite *HTTPClientTestSuite) TestTooManyRequests() {
	req, _ := http.NewRequest(http.MethodGet, suite.httpbinEndpoint.URL+"/status/429", nil)
	_, err := suite.c.Do(req)

	var statusErr *geolib.HTTPStatusError

	suite.True(errors.As(err, &statusErr))
	suite.Equal(http.StatusTooManyRequests, statusErr.StatusCode)
	suite.True(statusErr.Temporary())
}

func (suite *HTTPClientTestSuite) TestCannotDial() {
	req, _ := http.NewRequest(http.MethodGet, suite.httpbinEndpoint.URL+"1"+"/status/500", nil)
	_, err := suite.c.Do(req)

	suite.Error(err)
}

func TestHTTPClient(t *testing.T) {
	suite.Run(t, &HTTPClientTestSuite{})
}

type HTTPClientRetryTestSuite struct {
	suite.Suite

	hits       int32
	statusCode int32
	delay      int64
	endpoint   *httptest.Server
}

func (suite *HTTPClientRetryTestSuite) SetupTest() {
	atomic.StoreInt32(&suite.hits, 0)
	atomic.StoreInt32(&suite.statusCode, http.StatusOK)
	atomic.StoreInt64(&suite.delay, 0)

	suite.endpoint = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&suite.hits, 1)
		time.Sleep(time.Duration(atomic.LoadInt64(&suite.delay)))
		w.WriteHeader(int(atomic.LoadInt32(&suite.statusCode)))
	}))
}

func (suite *HTTPClientRetryTestSuite) TearDownTest() {
	suite.endpoint.Close()
}

func (suite *HTTPClientRetryTestSuite) Client(openThreshold uint32, attempts uint) geolib.HTTPClient {
	return geolib.NewHTTPClient(suite.endpoint.Client(),
		"test",
		time.Millisecond,
		100,
		openThreshold,
		time.Minute,
		time.Minute,
		attempts)
}

func (suite *HTTPClientRetryTestSuite) Do(client geolib.HTTPClient) error {
	req, _ := http.NewRequest(http.MethodGet, suite.endpoint.URL, nil)

	resp, err := client.Do(req)
	if err == nil {
		resp.Body.Close()
	}

	return err
}

func (suite *HTTPClientRetryTestSuite) TestNoRetriesByDefault() {
	atomic.StoreInt32(&suite.statusCode, http.StatusServiceUnavailable)

	suite.Error(suite.Do(suite.Client(100, 0)))
	suite.EqualValues(1, atomic.LoadInt32(&suite.hits))
}

func (suite *HTTPClientRetryTestSuite) TestRetryServerErrors() {
	atomic.StoreInt32(&suite.statusCode, http.StatusServiceUnavailable)

	err := suite.Do(suite.Client(100, 3))

	var statusErr *geolib.HTTPStatusError

	suite.True(errors.As(err, &statusErr))
	suite.Equal(http.StatusServiceUnavailable, statusErr.StatusCode)
	suite.EqualValues(3, atomic.LoadInt32(&suite.hits))
}

func (suite *HTTPClientRetryTestSuite) TestRetryRateLimited() {
	atomic.StoreInt32(&suite.statusCode, http.StatusTooManyRequests)

	suite.Error(suite.Do(suite.Client(100, 2)))
	suite.EqualValues(2, atomic.LoadInt32(&suite.hits))
}

func (suite *HTTPClientRetryTestSuite) TestClientErrorsAreNotRetried() {
	atomic.StoreInt32(&suite.statusCode, http.StatusNotFound)

	suite.Error(suite.Do(suite.Client(100, 3)))
	suite.EqualValues(1, atomic.LoadInt32(&suite.hits))
}

func (suite *HTTPClientRetryTestSuite) TestOk() {
	suite.NoError(suite.Do(suite.Client(100, 3)))
	suite.EqualValues(1, atomic.LoadInt32(&suite.hits))
}

func (suite *HTTPClientRetryTestSuite) TestCircuitBreakerOpens() {
	client := suite.Client(2, 1)

	atomic.StoreInt32(&suite.statusCode, http.StatusInternalServerError)

	suite.Error(suite.Do(client))
	suite.Error(suite.Do(client))

	atomic.StoreInt32(&suite.statusCode, http.StatusOK)

	suite.True(errors.Is(suite.Do(client), geolib.ErrCircuitBreakerOpened))
	suite.EqualValues(2, atomic.LoadInt32(&suite.hits))
}

func (suite *HTTPClientRetryTestSuite) TestClientErrorsDoNotOpenCircuitBreaker() {
	client := suite.Client(2, 1)

	atomic.StoreInt32(&suite.statusCode, http.StatusNotFound)

	for i := 0; i < 3; i++ {
		err := suite.Do(client)

		var statusErr *geolib.HTTPStatusError

		suite.True(errors.As(err, &statusErr))
		suite.Equal(http.StatusNotFound, statusErr.StatusCode)
	}

	atomic.StoreInt32(&suite.statusCode, http.StatusOK)

	suite.NoError(suite.Do(client))
	suite.EqualValues(4, atomic.LoadInt32(&suite.hits))
}

func (suite *HTTPClientRetryTestSuite) TestTimeoutCoversRetries() {
	atomic.StoreInt32(&suite.statusCode, http.StatusServiceUnavailable)
	atomic.StoreInt64(&suite.delay, int64(200*time.Millisecond))

	client := geolib.NewHTTPClient(&http.Client{
		Transport: suite.endpoint.Client().Transport,
		Timeout:   500 * time.Millisecond,
	},
		"test",
		time.Millisecond,
		100,
		100,
		time.Minute,
		time.Minute,
		10)

	started := time.Now()

	suite.Error(suite.Do(client))
	suite.Less(time.Since(started), 900*time.Millisecond)
	suite.Less(atomic.LoadInt32(&suite.hits), int32(4))
}

func (suite *HTTPClientRetryTestSuite) TestBodyIsReadableAfterTimeoutIsSet() {
	client := geolib.NewHTTPClient(&http.Client{
		Transport: suite.endpoint.Client().Transport,
		Timeout:   time.Second,
	},
		"test",
		time.Millisecond,
		100,
		100,
		time.Minute,
		time.Minute,
		1)

	req, _ := http.NewRequest(http.MethodGet, suite.endpoint.URL, nil)
	resp, err := client.Do(req)

	suite.Require().NoError(err)

	data := &bytes.Buffer{}
	_, err = data.ReadFrom(resp.Body)

	suite.NoError(err)
	suite.NoError(resp.Body.Close())
}

func TestHTTPClientRetry(t *testing.T) {
	suite.Run(t, &HTTPClientRetryTestSuite{})
}
