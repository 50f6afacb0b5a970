package geolib_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/9seconds/csvgeo/geolib"
)

type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) Lookup(ctx context.Context, ip string) (geolib.Location, error) {
	args := m.Called(ctx, ip)

	return args.Get(0).(geolib.Location), args.Error(1)
}

func (m *ProviderMock) Name() string {
	return m.Called().String(0)
}

type LoggerMock struct {
	mock.Mock
}

func (m *LoggerMock) LookupError(ip string, row int, err error) {
	m.Called(ip, row, err)
}

func (m *LoggerMock) RateLimited(ip string, row int) {
	m.Called(ip, row)
}

func (m *LoggerMock) Progress(processed uint64) {
	m.Called(processed)
}

func (m *LoggerMock) Complete(counters geolib.RunCounters) {
	m.Called(counters)
}
